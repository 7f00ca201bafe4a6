package handlers

import (
	"net/http"

	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/validation"
)

type RecipeHandler struct {
	ws Workspaces
}

func NewRecipeHandler(ws Workspaces) *RecipeHandler { return &RecipeHandler{ws: ws} }

func (h *RecipeHandler) Register(mux *http.ServeMux) {
	mux.Handle("PATCH /api/recipes/{id}", protect(h.update))
	mux.Handle("DELETE /api/recipes/{id}", protect(h.delete))
}

func (h *RecipeHandler) update(w http.ResponseWriter, r *http.Request) {
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
	v := make(validation.Violations)
	if p.Quantity != nil {
		validation.NonNegativeFloat("quantity", *p.Quantity, v)
	}
	if invalid(w, r, v) {
		return
	}
	line, err := ws.UpdateRecipe(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, line, "saved")
}

func (h *RecipeHandler) delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := ws.DeleteRecipe(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nil, "deleted")
}
