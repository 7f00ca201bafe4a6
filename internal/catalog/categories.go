package catalog

import (
	"context"
	"strings"

	"github.com/diewo77/go-commandes/internal/models"
)

func (w *Workspace) Categories() []models.Category {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Category{}, w.snap.Categories...)
}

// AddCategory stores a category named after the trimmed name.
func (w *Workspace) AddCategory(ctx context.Context, name string) (models.Category, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, ErrInvalidName
	}
	if w.categoryIndex(name) >= 0 {
		return models.Category{}, ErrDuplicateCategory
	}
	c := models.Category{Name: name}
	if err := w.write(ctx, "add_category", func(ctx context.Context) error {
		return w.store.CreateCategory(ctx, &c)
	}); err != nil {
		return models.Category{}, err
	}
	w.snap.Categories = append(w.snap.Categories, c)
	return c, nil
}

// DeleteCategory removes a category and moves its dishes to the first
// remaining category, whose name is returned. The last category cannot be
// deleted.
func (w *Workspace) DeleteCategory(ctx context.Context, name string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.categoryIndex(name)
	if i < 0 {
		return "", ErrNotFound
	}
	if len(w.snap.Categories) <= 1 {
		return "", ErrLastCategory
	}
	w.snap.Categories = append(w.snap.Categories[:i], w.snap.Categories[i+1:]...)
	fallback := w.snap.Categories[0].Name
	for j := range w.snap.Dishes {
		if w.snap.Dishes[j].Category == name {
			w.snap.Dishes[j].Category = fallback
		}
	}
	if err := w.write(ctx, "delete_category", func(ctx context.Context) error {
		return w.store.DeleteCategory(ctx, name, fallback)
	}); err != nil {
		return "", err
	}
	return fallback, nil
}
