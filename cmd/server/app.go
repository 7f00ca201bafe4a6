package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/go-commandes/auth"
	"github.com/diewo77/go-commandes/httpx"
	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/internal/config"
	"github.com/diewo77/go-commandes/internal/db"
	"github.com/diewo77/go-commandes/internal/handlers"
	"github.com/diewo77/go-commandes/internal/media"
	"github.com/diewo77/go-commandes/internal/middleware"
	"github.com/diewo77/go-commandes/internal/observability"
	"github.com/diewo77/go-commandes/internal/session"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	db       *gorm.DB
	log      *slog.Logger
	registry *session.Registry
	handler  http.Handler
}

// NewApp wires the stores, the per-user workspaces and every route.
func NewApp(dbConn *gorm.DB, cfg config.Config, images media.ImageStore, log *slog.Logger) *App {
	inst := observability.Default()
	store := catalog.NewGormStore(dbConn)
	registry := session.NewRegistry(func() *catalog.Workspace {
		return catalog.NewWorkspace(store,
			catalog.WithLogger(log),
			catalog.WithRetries(cfg.SyncRetries),
			catalog.WithInstruments(inst),
		)
	})

	users := db.NewUsers(dbConn)
	auth.SetUserVerifier(users.Exists)

	app := &App{
		mux:      http.NewServeMux(),
		db:       dbConn,
		log:      log,
		registry: registry,
	}
	app.setupRoutes(users, images, cfg.Storage.MaxBytes)
	app.handler = observability.ServerTiming(
		middleware.Logging(log)(
			middleware.Recover(log)(
				middleware.Prefs(
					auth.Middleware(app.mux)))))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes(users *db.Users, images media.ImageStore, maxImage int64) {
	a.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.HandleFunc("GET /{$}", a.home)

	handlers.NewAuthHandler(users, a.registry).Register(a.mux)
	handlers.NewDataHandler(a.registry).Register(a.mux)
	handlers.NewCategoryHandler(a.registry).Register(a.mux)
	handlers.NewDishHandler(a.registry, images, maxImage).Register(a.mux)
	handlers.NewRecipeHandler(a.registry).Register(a.mux)
	handlers.NewArticleHandler(a.registry).Register(a.mux)
	handlers.NewReservationHandler(a.registry).Register(a.mux)
	handlers.NewOrderHandler(a.registry).Register(a.mux)
}

// healthz checks the database with SELECT 1.
func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
		a.log.WarnContext(r.Context(), "health check failed", "err", err)
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "workspaces": fmt.Sprint(a.registry.Len())})
}

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/api/data", http.StatusSeeOther)
}

// newImageStore picks the dish image backend.
func newImageStore(ctx context.Context, cfg config.StorageConfig) (media.ImageStore, error) {
	switch cfg.Backend {
	case "", "inline":
		return media.NewInlineStore(cfg.MaxBytes), nil
	case "s3":
		return media.NewS3Store(ctx, media.S3Config{
			Endpoint:      cfg.Endpoint,
			Region:        cfg.Region,
			AccessKey:     cfg.AccessKey,
			SecretKey:     cfg.SecretKey,
			Bucket:        cfg.Bucket,
			PublicBaseURL: cfg.PublicBaseURL,
			MaxBytes:      cfg.MaxBytes,
		})
	default:
		return nil, fmt.Errorf("unknown IMAGE_STORAGE %q", cfg.Backend)
	}
}
