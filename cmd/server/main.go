package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/diewo77/go-commandes/auth"
	"github.com/diewo77/go-commandes/internal/config"
	"github.com/diewo77/go-commandes/internal/db"
	"github.com/diewo77/go-commandes/internal/logger"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
	createUserFlag  = flag.String("create-user", "", "Create a user given as email:password and exit")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.DatabaseDSN, cfg.DBDebug)
	if err != nil {
		fatal(log, "database connection failed", err)
	}
	if err := db.Migrate(dbConn, cfg.DatabaseDSN, cfg.Migrations); err != nil {
		fatal(log, "migration failed", err)
	}
	if *migrateOnlyFlag {
		log.Info("migrations completed")
		return
	}

	if cfg.Seed || *seedOnlyFlag {
		if err := db.Seed(ctx, dbConn); err != nil {
			fatal(log, "seeding failed", err)
		}
		log.Info("seed completed")
	}
	if *seedOnlyFlag {
		return
	}

	if *createUserFlag != "" {
		email, password, ok := strings.Cut(*createUserFlag, ":")
		if !ok {
			fatal(log, "invalid -create-user", errors.New("expected email:password"))
		}
		u, err := db.NewUsers(dbConn).Create(ctx, email, "", password)
		if err != nil {
			fatal(log, "user creation failed", err)
		}
		log.Info("user created", "user_id", u.ID, "email", u.Email)
		return
	}

	auth.Configure(cfg.SessionSecret, cfg.SessionTTL)
	images, err := newImageStore(ctx, cfg.Storage)
	if err != nil {
		fatal(log, "image storage setup failed", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      NewApp(dbConn, cfg, images, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "images", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", "err", err)
	}
	log.Info("server stopped gracefully")
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
