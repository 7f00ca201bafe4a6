package catalog

import (
	"context"
	"strings"

	"github.com/diewo77/go-commandes/internal/models"
)

// DishPatch lists the dish fields to change. Nil means unchanged.
type DishPatch struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	RecipeText  *string `json:"recipeText"`
	RecipeImage *string `json:"recipeImage"`
}

// NewDish returns a dish with the default name, in the "Plat" category when
// it exists and in the first category otherwise.
func (w *Workspace) NewDish() models.Dish {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := models.Dish{Name: models.DefaultDishName, Category: models.DefaultCategory}
	if w.categoryIndex(d.Category) < 0 && len(w.snap.Categories) > 0 {
		d.Category = w.snap.Categories[0].Name
	}
	return d
}

// Dish returns a cached dish by id.
func (w *Workspace) Dish(id uint) (models.Dish, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.dishIndex(id)
	if i < 0 {
		return models.Dish{}, ErrNotFound
	}
	return w.snap.Dishes[i], nil
}

func (w *Workspace) Dishes() []models.Dish {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Dish{}, w.snap.Dishes...)
}

// AddDish stores d. Its category must exist.
func (w *Workspace) AddDish(ctx context.Context, d models.Dish) (models.Dish, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d.ID = 0
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return models.Dish{}, ErrInvalidName
	}
	if w.categoryIndex(d.Category) < 0 {
		return models.Dish{}, ErrUnknownCategory
	}
	if err := w.write(ctx, "add_dish", func(ctx context.Context) error {
		return w.store.CreateDish(ctx, &d)
	}); err != nil {
		return models.Dish{}, err
	}
	w.snap.Dishes = append(w.snap.Dishes, d)
	return d, nil
}

// UpdateDish applies p. A rename is propagated to every reservation naming
// the old dish name, and to no other reservation.
func (w *Workspace) UpdateDish(ctx context.Context, id uint, p DishPatch) (models.Dish, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.dishIndex(id)
	if i < 0 {
		return models.Dish{}, ErrNotFound
	}
	d := w.snap.Dishes[i]
	oldName := d.Name
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return models.Dish{}, ErrInvalidName
		}
		d.Name = name
	}
	if p.Category != nil {
		if w.categoryIndex(*p.Category) < 0 {
			return models.Dish{}, ErrUnknownCategory
		}
		d.Category = *p.Category
	}
	if p.RecipeText != nil {
		d.RecipeText = *p.RecipeText
	}
	if p.RecipeImage != nil {
		d.RecipeImage = *p.RecipeImage
	}

	if d.Name != oldName {
		for j := range w.snap.Reservations {
			if w.snap.Reservations[j].Dish == oldName {
				w.snap.Reservations[j].Dish = d.Name
			}
		}
	}
	w.snap.Dishes[i] = d
	if err := w.write(ctx, "update_dish", func(ctx context.Context) error {
		return w.store.UpdateDish(ctx, d, oldName)
	}); err != nil {
		return models.Dish{}, err
	}
	return d, nil
}

// DeleteDish removes the dish and its recipe lines. Reservations naming it
// are kept and simply stop contributing to the order.
func (w *Workspace) DeleteDish(ctx context.Context, id uint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.dishIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	w.snap.Dishes = append(w.snap.Dishes[:i], w.snap.Dishes[i+1:]...)
	kept := w.snap.Recipes[:0]
	for _, r := range w.snap.Recipes {
		if r.DishID != id {
			kept = append(kept, r)
		}
	}
	w.snap.Recipes = kept
	return w.write(ctx, "delete_dish", func(ctx context.Context) error {
		return w.store.DeleteDish(ctx, id)
	})
}
