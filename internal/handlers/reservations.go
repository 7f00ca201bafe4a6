package handlers

import (
	"net/http"

	"github.com/diewo77/go-commandes/httpx"
	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/validation"
)

type ReservationHandler struct {
	ws Workspaces
}

func NewReservationHandler(ws Workspaces) *ReservationHandler {
	return &ReservationHandler{ws: ws}
}

func (h *ReservationHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/reservations", protect(h.list))
	mux.Handle("POST /api/reservations", protect(h.create))
	mux.Handle("PATCH /api/reservations/{id}", protect(h.update))
	mux.Handle("DELETE /api/reservations/{id}", protect(h.delete))
}

func validateReservation(p catalog.ReservationPatch) validation.Violations {
	v := make(validation.Violations)
	if p.Date != nil {
		validation.Date("date", *p.Date, v)
	}
	if p.Clients != nil {
		validation.NonNegativeInt("clients", *p.Clients, v)
	}
	return v
}

func (h *ReservationHandler) list(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, ws.Reservations())
}

// create adds a reservation; by default today, no guests, first dish.
func (h *ReservationHandler) create(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	var p catalog.ReservationPatch
	if !decode(w, r, &p) {
		return
	}
	if invalid(w, r, validateReservation(p)) {
		return
	}
	res := ws.NewReservation()
	if p.Date != nil {
		res.Date = *p.Date
	}
	if p.Clients != nil {
		res.Clients = *p.Clients
	}
	if p.Dish != nil {
		res.Dish = *p.Dish
	}
	res, err := ws.AddReservation(r.Context(), res)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, res, "saved")
}

func (h *ReservationHandler) update(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p catalog.ReservationPatch
	if !decode(w, r, &p) {
		return
	}
	if invalid(w, r, validateReservation(p)) {
		return
	}
	res, err := ws.UpdateReservation(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, res, "saved")
}

func (h *ReservationHandler) delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := ws.DeleteReservation(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nil, "deleted")
}
