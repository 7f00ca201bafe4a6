package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/diewo77/go-commandes/internal/observability"
	"github.com/diewo77/go-commandes/internal/orders"
)

// Workspace is an in-memory copy of the catalog that writes every change
// through to a Store. Operations are serialized; each one finishes its remote
// round trip before the next starts.
//
// Creates go to the store first so the store assigns ids. Updates and deletes
// are applied locally, then written. A write that still fails after the
// configured retries triggers a full reload and a *SyncError.
type Workspace struct {
	mu       sync.Mutex
	store    Store
	snap     Snapshot
	loadedAt time.Time

	log     *slog.Logger
	inst    *observability.Instruments
	retries int
	now     func() time.Time
}

// Option configures a Workspace.
type Option func(*Workspace)

func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.log = l
		}
	}
}

// WithRetries sets how many extra attempts a failed write gets.
func WithRetries(n int) Option {
	return func(w *Workspace) {
		if n >= 0 {
			w.retries = n
		}
	}
}

func WithInstruments(in *observability.Instruments) Option {
	return func(w *Workspace) {
		if in != nil {
			w.inst = in
		}
	}
}

// WithClock overrides time.Now, used for default reservation dates.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWorkspace returns an empty workspace; call Load before use.
func NewWorkspace(store Store, opts ...Option) *Workspace {
	w := &Workspace{
		store:   store,
		log:     slog.Default(),
		retries: 1,
		now:     time.Now,
	}
	for _, o := range opts {
		o(w)
	}
	if w.inst == nil {
		w.inst = observability.Default()
	}
	return w
}

// Load replaces the cache with the store's content.
func (w *Workspace) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloadLocked(ctx)
}

func (w *Workspace) reloadLocked(ctx context.Context) error {
	snap, err := w.store.LoadAll(ctx)
	w.inst.RecordReload(ctx, err == nil)
	if err != nil {
		w.log.Error("catalog load failed", "error", err)
		return err
	}
	w.snap = snap
	w.loadedAt = w.now()
	w.log.Debug("catalog loaded",
		"categories", len(snap.Categories),
		"dishes", len(snap.Dishes),
		"articles", len(snap.Articles),
		"recipes", len(snap.Recipes),
		"reservations", len(snap.Reservations),
	)
	return nil
}

// LoadedAt is the time of the last successful load.
func (w *Workspace) LoadedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadedAt
}

// Snapshot returns a copy of the cached catalog.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap.Clone()
}

// Orders aggregates the cached reservations into a purchase order.
func (w *Workspace) Orders() []orders.Line {
	w.mu.Lock()
	defer w.mu.Unlock()
	return orders.Aggregate(w.inputLocked())
}

// DishCost scales the recipe of a dish to servings.
func (w *Workspace) DishCost(dishID uint, servings int) (orders.Cost, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.dishIndex(dishID)
	if i < 0 {
		return orders.Cost{}, ErrNotFound
	}
	return orders.DishCost(w.snap.Dishes[i], orders.NewIndex(w.inputLocked()), servings), nil
}

func (w *Workspace) inputLocked() orders.Input {
	return orders.Input{
		Reservations: w.snap.Reservations,
		Dishes:       w.snap.Dishes,
		Recipes:      w.snap.Recipes,
		Articles:     w.snap.Articles,
	}
}

// write runs fn against the store, retrying on failure. When every attempt
// fails the cache is reloaded, even when ctx is already cancelled, and a
// *SyncError is returned. Callers hold mu.
func (w *Workspace) write(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := w.inst.StartSync(ctx, op)

	var err error
	attempts := 0
	for attempts <= w.retries {
		attempts++
		if err = fn(ctx); err == nil {
			outcome := observability.OutcomeOK
			if attempts > 1 {
				outcome = observability.OutcomeRetried
			}
			w.inst.RecordSync(ctx, op, outcome, time.Since(start))
			observability.EndSpan(span, nil)
			return nil
		}
		w.log.Warn("catalog write failed", "op", op, "attempt", attempts, "error", err)
		observability.AttemptFailed(span, attempts, err)
		if ctx.Err() != nil || errors.Is(err, ErrNotFound) {
			break
		}
	}

	syncErr := &SyncError{Op: op, Err: err}
	outcome := observability.OutcomeReloaded
	if rerr := w.reloadLocked(context.WithoutCancel(ctx)); rerr != nil {
		syncErr.ReloadErr = rerr
		outcome = observability.OutcomeFailed
	} else {
		syncErr.Reloaded = true
	}
	w.inst.RecordSync(ctx, op, outcome, time.Since(start))
	w.log.Error("catalog write abandoned", "op", op, "attempts", attempts, "reloaded", syncErr.Reloaded, "error", err)
	observability.EndSpan(span, syncErr)
	return syncErr
}
