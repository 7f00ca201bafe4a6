package catalog

import (
	"context"

	"github.com/diewo77/go-commandes/internal/models"
)

// DateLayout is the format of reservation dates.
const DateLayout = "2006-01-02"

// ReservationPatch lists the reservation fields to change. Nil means unchanged.
type ReservationPatch struct {
	Date    *string `json:"date"`
	Clients *int    `json:"clients"`
	Dish    *string `json:"dish"`
}

// NewReservation returns a reservation for today with no guests on the first dish.
func (w *Workspace) NewReservation() models.Reservation {
	w.mu.Lock()
	defer w.mu.Unlock()
	r := models.Reservation{Date: w.now().Format(DateLayout)}
	if len(w.snap.Dishes) > 0 {
		r.Dish = w.snap.Dishes[0].Name
	}
	return r
}

// Reservations returns the cached reservations.
func (w *Workspace) Reservations() []models.Reservation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Reservation{}, w.snap.Reservations...)
}

// AddReservation stores r and appends it to the cache. The dish name is not
// checked; unknown dishes are ignored by the order aggregation.
func (w *Workspace) AddReservation(ctx context.Context, r models.Reservation) (models.Reservation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r.ID = 0
	if err := w.write(ctx, "add_reservation", func(ctx context.Context) error {
		return w.store.CreateReservation(ctx, &r)
	}); err != nil {
		return models.Reservation{}, err
	}
	w.snap.Reservations = append(w.snap.Reservations, r)
	return r, nil
}

func (w *Workspace) UpdateReservation(ctx context.Context, id uint, p ReservationPatch) (models.Reservation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.reservationIndex(id)
	if i < 0 {
		return models.Reservation{}, ErrNotFound
	}
	r := w.snap.Reservations[i]
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Clients != nil {
		r.Clients = *p.Clients
	}
	if p.Dish != nil {
		r.Dish = *p.Dish
	}
	w.snap.Reservations[i] = r
	if err := w.write(ctx, "update_reservation", func(ctx context.Context) error {
		return w.store.UpdateReservation(ctx, r)
	}); err != nil {
		return models.Reservation{}, err
	}
	return r, nil
}

func (w *Workspace) DeleteReservation(ctx context.Context, id uint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.reservationIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	w.snap.Reservations = append(w.snap.Reservations[:i], w.snap.Reservations[i+1:]...)
	return w.write(ctx, "delete_reservation", func(ctx context.Context) error {
		return w.store.DeleteReservation(ctx, id)
	})
}
