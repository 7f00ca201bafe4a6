package handlers

import (
	"net/http"

	"github.com/diewo77/go-commandes/httpx"
	"github.com/diewo77/go-commandes/internal/models"
)

type CategoryHandler struct {
	ws Workspaces
}

func NewCategoryHandler(ws Workspaces) *CategoryHandler { return &CategoryHandler{ws: ws} }

func (h *CategoryHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/categories", protect(h.list))
	mux.Handle("POST /api/categories", protect(h.create))
	mux.Handle("DELETE /api/categories/{name}", protect(h.delete))
}

type categoryView struct {
	models.Category
	Icon string `json:"icon"`
}

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	cats := ws.Categories()
	out := make([]categoryView, len(cats))
	for i, c := range cats {
		out[i] = categoryView{Category: c, Icon: models.CategoryIcon(c.Name)}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &body) {
		return
	}
	c, err := ws.AddCategory(r.Context(), body.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, categoryView{Category: c, Icon: models.CategoryIcon(c.Name)}, "category_added")
}

func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	fallback, err := ws.DeleteCategory(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, map[string]string{"fallback": fallback}, "category_deleted")
}
