package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/go-commandes/auth"
	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/internal/csvimport"
	"github.com/diewo77/go-commandes/internal/db"
	"github.com/diewo77/go-commandes/internal/media"
	"github.com/diewo77/go-commandes/internal/middleware"
	"github.com/diewo77/go-commandes/internal/models"
	"github.com/diewo77/go-commandes/internal/orders"
	"github.com/diewo77/go-commandes/internal/session"
)

type testEnv struct {
	t      *testing.T
	gdb    *gorm.DB
	reg    *session.Registry
	h      http.Handler
	user   models.User
	cookie *http.Cookie
}

type storeWrapper func(catalog.Store) catalog.Store

func newEnv(t *testing.T, wraps ...storeWrapper) *testEnv {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	gdb, err := db.Connect(ctx, dsn, false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, dsn, false))
	require.NoError(t, db.Seed(ctx, gdb))

	users := db.NewUsers(gdb)
	u, err := users.Create(ctx, "chef@example.com", "Chef", "s3cret")
	require.NoError(t, err)

	var store catalog.Store = catalog.NewGormStore(gdb)
	for _, w := range wraps {
		store = w(store)
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := session.NewRegistry(func() *catalog.Workspace {
		return catalog.NewWorkspace(store, catalog.WithLogger(quiet), catalog.WithRetries(1))
	})

	mux := http.NewServeMux()
	NewAuthHandler(users, reg).Register(mux)
	NewDataHandler(reg).Register(mux)
	NewCategoryHandler(reg).Register(mux)
	NewDishHandler(reg, media.NewInlineStore(1<<10), 1<<10).Register(mux)
	NewRecipeHandler(reg).Register(mux)
	NewArticleHandler(reg).Register(mux)
	NewReservationHandler(reg).Register(mux)
	NewOrderHandler(reg).Register(mux)

	rec := httptest.NewRecorder()
	require.NoError(t, auth.CreateSession(rec, u.ID))
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	return &testEnv{t: t, gdb: gdb, reg: reg, h: auth.Middleware(middleware.Prefs(mux)), user: u, cookie: cookie}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(e.cookie)
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(path, field, filename string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(e.t, err)
	_, err = fw.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(e.cookie)
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) addArticle(name string, ht float64) models.Article {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/articles", map[string]any{"productName": name, "priceHT": ht, "tvaRate": 5.5})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeAs[envelope[models.Article]](e.t, rec).Data
}

func (e *testEnv) addDish(name string) models.Dish {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/dishes", map[string]any{"name": name})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeAs[envelope[models.Dish]](e.t, rec).Data
}

func TestLoginJSON(t *testing.T) {
	e := newEnv(t)
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		e.h.ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"email":"chef@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	eb := decodeAs[errorBody](t, rec)
	assert.Equal(t, "invalid_credentials", eb.Error)
	assert.Equal(t, "Email ou mot de passe incorrect.", eb.Message)
	assert.Equal(t, 0, e.reg.Len())

	rec = post(`{"email":"chef@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Données chargées", decodeAs[envelope[models.User]](t, rec).Message)
	assert.Equal(t, 1, e.reg.Len())
	var sess *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			sess = c
		}
	}
	require.NotNil(t, sess)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(sess)
	me := httptest.NewRecorder()
	e.h.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "chef@example.com", decodeAs[models.User](t, me).Email)
}

func TestLoginFormRendersError(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=chef%40example.com&password=nope"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password.")
}

func TestLogoutDropsWorkspace(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/data", nil).Code)
	assert.Equal(t, 1, e.reg.Len())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(e.cookie)
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 0, e.reg.Len())
}

func TestAPIRequiresSession(t *testing.T) {
	e := newEnv(t)
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDataAndExport(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/api/data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeAs[dataResponse](t, rec)
	assert.Len(t, data.Categories, 3)
	assert.False(t, data.LoadedAt.IsZero())

	rec = e.do(http.MethodPost, "/api/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Données chargées", decodeAs[envelope[dataResponse]](t, rec).Message)

	rec = e.do(http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "restaurant-data-")
	var backup map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &backup))
	for _, k := range []string{"categories", "dishes", "articles", "recipes", "reservations"} {
		assert.Contains(t, backup, k)
	}
}

func TestCategories(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decodeAs[[]categoryView](t, rec)
	require.Len(t, cats, 3)
	assert.Equal(t, "🍰", cats[2].Icon)

	rec = e.do(http.MethodPost, "/api/categories", map[string]string{"name": "Dessert"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "category_exists", decodeAs[errorBody](t, rec).Error)

	rec = e.do(http.MethodPost, "/api/categories", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	dish := e.addDish("Mousse")
	rec = e.do(http.MethodPatch, fmt.Sprintf("/api/dishes/%d", dish.ID), map[string]string{"category": "Dessert"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodDelete, "/api/categories/Dessert", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fallback := decodeAs[envelope[map[string]string]](t, rec).Data["fallback"]
	assert.Equal(t, "Entrée", fallback)

	var stored models.Dish
	require.NoError(t, e.gdb.First(&stored, dish.ID).Error)
	assert.Equal(t, fallback, stored.Category)

	require.Equal(t, http.StatusOK, e.do(http.MethodDelete, "/api/categories/Plat", nil).Code)
	rec = e.do(http.MethodDelete, "/api/categories/Entr%C3%A9e", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "last_category", decodeAs[errorBody](t, rec).Error)
}

func TestArticles(t *testing.T) {
	e := newEnv(t)
	a := e.addArticle("Tomate", 10)
	assert.InDelta(t, 10.55, a.PriceTTC, 1e-9)
	e.addArticle("Basilic", 2)

	rec := e.do(http.MethodGet, "/api/articles?q=TOM", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decodeAs[[]models.Article](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, "Tomate", found[0].ProductName)

	path := fmt.Sprintf("/api/articles/%d", a.ID)
	rec = e.do(http.MethodPatch, path, map[string]float64{"priceTTC": 21.1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 20, decodeAs[envelope[models.Article]](t, rec).Data.PriceHT, 1e-9)

	rec = e.do(http.MethodPatch, path, map[string]float64{"priceHT": 1, "priceTTC": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "conflicting_prices", decodeAs[errorBody](t, rec).Error)

	rec = e.do(http.MethodPatch, path, map[string]float64{"tvaRate": 150})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	eb := decodeAs[errorBody](t, rec)
	assert.Equal(t, "validation_failed", eb.Error)
	assert.Equal(t, "Hors limites", eb.Details["tvaRate"])

	rec = e.do(http.MethodPatch, path, map[string]any{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decodeAs[errorBody](t, rec).Error)

	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/articles/abc", nil).Code)
}

func TestImportArticles(t *testing.T) {
	e := newEnv(t)
	csv := "Référence;Produit;Fournisseur;Prix HT;TVA;Unité\nR1;Farine;Moulin;1,20;5,5;kg\nR2;Beurre;Laiterie;8;5,5;kg\n"
	rec := e.upload("/api/articles/import", "file", "articles.csv", []byte(csv))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decodeAs[envelope[[]models.Article]](t, rec)
	assert.Len(t, env.Data, 2)
	assert.Equal(t, "2 articles importés", env.Message)

	var n int64
	e.gdb.Model(&models.Article{}).Count(&n)
	assert.Equal(t, int64(2), n)

	rec = e.upload("/api/articles/import", "file", "empty.csv", []byte("Produit\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "import_empty", decodeAs[errorBody](t, rec).Error)
}

func TestImportArticlesTooLarge(t *testing.T) {
	e := newEnv(t)
	row := "R1;Farine;Moulin;1,20;5,5;kg\n"
	csv := "Référence;Produit;Fournisseur;Prix HT;TVA;Unité\n" + strings.Repeat(row, csvimport.MaxSize/len(row)+1)
	rec := e.upload("/api/articles/import", "file", "big.csv", []byte(csv))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "import_too_large", decodeAs[errorBody](t, rec).Error)

	var n int64
	e.gdb.Model(&models.Article{}).Count(&n)
	assert.Zero(t, n)
}

func TestOrdersFlow(t *testing.T) {
	e := newEnv(t)
	tomato := e.addArticle("Tomate", 10)
	dish := e.addDish("Ratatouille")
	assert.Equal(t, "Plat", dish.Category)

	rec := e.do(http.MethodPost, fmt.Sprintf("/api/dishes/%d/ingredients", dish.ID), map[string]any{"articleId": tomato.ID, "quantity": 0.2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	line := decodeAs[envelope[models.RecipeLine]](t, rec).Data

	rec = e.do(http.MethodPost, "/api/reservations", map[string]any{"date": "2026-10-19", "clients": 10, "dish": "Ratatouille"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decodeAs[envelope[models.Reservation]](t, rec).Data

	rec = e.do(http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	got := decodeAs[orderResponse](t, rec)
	require.Len(t, got.Lines, 1)
	assert.InDelta(t, 2.0, got.Lines[0].Quantity, 1e-9)
	assert.InDelta(t, 21.1, got.Total, 1e-9)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.AddCookie(e.cookie)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	e.h.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	// Renaming the dish keeps the reservation attached.
	rec = e.do(http.MethodPatch, fmt.Sprintf("/api/dishes/%d", dish.ID), map[string]string{"name": "Tian"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(http.MethodGet, "/api/reservations", nil)
	assert.Equal(t, "Tian", decodeAs[[]models.Reservation](t, rec)[0].Dish)

	rec = e.do(http.MethodPatch, fmt.Sprintf("/api/recipes/%d", line.ID), map[string]float64{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(http.MethodPatch, fmt.Sprintf("/api/reservations/%d", res.ID), map[string]string{"date": "19/10/2026"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Date invalide (AAAA-MM-JJ)", decodeAs[errorBody](t, rec).Details["date"])

	rec = e.do(http.MethodPatch, fmt.Sprintf("/api/reservations/%d", res.ID), map[string]int{"clients": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(http.MethodGet, "/api/orders", nil)
	assert.Empty(t, decodeAs[orderResponse](t, rec).Lines)

	rec = e.do(http.MethodGet, "/api/orders.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestDishCostAndSheet(t *testing.T) {
	e := newEnv(t)
	a := e.addArticle("Chocolat", 20)
	dish := e.addDish("Mousse au chocolat")
	rec := e.do(http.MethodPost, fmt.Sprintf("/api/dishes/%d/ingredients", dish.ID), map[string]any{"articleId": a.ID, "quantity": 0.05})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/dishes/%d/cost?servings=4", dish.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeAs[orders.Cost](t, rec)
	assert.Equal(t, 4, c.Servings)
	require.Len(t, c.Ingredients, 1)
	assert.InDelta(t, 0.2, c.Ingredients[0].Quantity, 1e-9)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/dishes/%d/cost?servings=0", dish.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/dishes/%d/sheet", dish.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "recette_Mousse_au_chocolat_10pers.html")
	assert.Contains(t, rec.Body.String(), "Chocolat")

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/dishes/999/cost", nil).Code)
}

func TestDishImageUpload(t *testing.T) {
	e := newEnv(t)
	dish := e.addDish("Tarte")
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

	rec := e.upload(fmt.Sprintf("/api/dishes/%d/image", dish.ID), "image", "tarte.png", png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(decodeAs[envelope[models.Dish]](t, rec).Data.RecipeImage, "data:image/png;base64,"))

	rec = e.upload(fmt.Sprintf("/api/dishes/%d/image", dish.ID), "image", "notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = e.upload(fmt.Sprintf("/api/dishes/%d/image", dish.ID), "image", "big.png", append(png, make([]byte, 2<<10)...))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDishValidation(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodPost, "/api/dishes", map[string]string{"category": "Inconnue"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_category", decodeAs[errorBody](t, rec).Error)

	rec = e.do(http.MethodPost, "/api/dishes", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.DefaultDishName, decodeAs[envelope[models.Dish]](t, rec).Data.Name)
}

// failingCategories rejects every category write.
type failingCategories struct{ catalog.Store }

func (failingCategories) CreateCategory(context.Context, *models.Category) error {
	return errors.New("connection reset")
}

func TestSyncFailureReportsAndReloads(t *testing.T) {
	e := newEnv(t, func(s catalog.Store) catalog.Store { return failingCategories{s} })
	start := time.Now()
	rec := e.do(http.MethodPost, "/api/categories", map[string]string{"name": "Boisson"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	eb := decodeAs[errorBody](t, rec)
	assert.Equal(t, "sync_failed", eb.Error)
	assert.Equal(t, "Erreur de synchronisation, données rechargées", eb.Message)

	rec = e.do(http.MethodGet, "/api/data", nil)
	data := decodeAs[dataResponse](t, rec)
	assert.Len(t, data.Categories, 3)
	assert.False(t, data.LoadedAt.Before(start.Add(-time.Second)))
}
