package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-commandes/httpx"
	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/internal/export"
	"github.com/diewo77/go-commandes/internal/media"
	"github.com/diewo77/go-commandes/internal/orders"
	"github.com/diewo77/go-commandes/validation"
)

type DishHandler struct {
	ws       Workspaces
	images   media.ImageStore
	maxImage int64
}

// NewDishHandler serves dishes; uploads larger than maxImage bytes are refused.
func NewDishHandler(ws Workspaces, images media.ImageStore, maxImage int64) *DishHandler {
	return &DishHandler{ws: ws, images: images, maxImage: maxImage}
}

func (h *DishHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/dishes", protect(h.list))
	mux.Handle("POST /api/dishes", protect(h.create))
	mux.Handle("PATCH /api/dishes/{id}", protect(h.update))
	mux.Handle("DELETE /api/dishes/{id}", protect(h.delete))
	mux.Handle("POST /api/dishes/{id}/image", protect(h.uploadImage))
	mux.Handle("GET /api/dishes/{id}/cost", protect(h.cost))
	mux.Handle("GET /api/dishes/{id}/sheet", protect(h.sheet))
	mux.Handle("POST /api/dishes/{id}/ingredients", protect(h.addIngredient))
}

func (h *DishHandler) list(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, ws.Dishes())
}

// create adds a dish. Fields missing from the body take the creation defaults.
func (h *DishHandler) create(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	var p catalog.DishPatch
	if !decode(w, r, &p) {
		return
	}
	d := ws.NewDish()
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.RecipeText != nil {
		d.RecipeText = *p.RecipeText
	}
	if p.RecipeImage != nil {
		d.RecipeImage = *p.RecipeImage
	}
	d, err := ws.AddDish(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, d, "saved")
}

func (h *DishHandler) update(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p catalog.DishPatch
	if !decode(w, r, &p) {
		return
	}
	d, err := ws.UpdateDish(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, d, "saved")
}

func (h *DishHandler) delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := ws.DeleteDish(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nil, "deleted")
}

// uploadImage stores the multipart "image" field and points the dish at it.
func (h *DishHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := ws.Dish(id); err != nil {
		writeError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImage+1<<20)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, media.ErrTooLarge)
			return
		}
		invalid(w, r, validation.Violations{"image": "required"})
		return
	}
	defer file.Close()

	url, err := h.images.Put(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := ws.UpdateDish(r.Context(), id, catalog.DishPatch{RecipeImage: &url})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, d, "saved")
}

// servings reads ?servings=, defaulting to orders.DefaultServings.
func servings(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("servings"))
	if raw == "" {
		return orders.DefaultServings, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		invalid(w, r, validation.Violations{"servings": "must_be_positive"})
		return 0, false
	}
	return n, true
}

func (h *DishHandler) cost(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	n, ok := servings(w, r)
	if !ok {
		return
	}
	c, err := ws.DishCost(id, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// sheet downloads the HTML recipe sheet scaled to ?servings=.
func (h *DishHandler) sheet(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	n, ok := servings(w, r)
	if !ok {
		return
	}
	d, err := ws.Dish(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := ws.DishCost(id, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := export.RecipeSheet(lang(r), d, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Attachment(w, export.RecipeSheetFilename(d.Name, n), "text/html; charset=utf-8", body)
}

// addIngredient appends a recipe line to the dish. Without an articleId the
// first article is used.
func (h *DishHandler) addIngredient(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p catalog.RecipePatch
	if !decode(w, r, &p) {
		return
	}
	line := ws.NewRecipeLine(id)
	if p.ArticleID != nil {
		line.ArticleID = p.ArticleID
	}
	if p.Quantity != nil {
		line.Quantity = *p.Quantity
	}
	v := make(validation.Violations)
	validation.NonNegativeFloat("quantity", line.Quantity, v)
	if invalid(w, r, v) {
		return
	}
	line, err := ws.AddIngredient(r.Context(), line)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, line, "saved")
}
