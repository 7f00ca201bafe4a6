package catalog

import (
	"context"

	"github.com/diewo77/go-commandes/internal/models"
)

// RecipePatch lists the recipe line fields to change. Nil means unchanged.
type RecipePatch struct {
	ArticleID *uint    `json:"articleId"`
	Quantity  *float64 `json:"quantity"`
}

// NewRecipeLine returns a zero-quantity line on the first article, if any.
func (w *Workspace) NewRecipeLine(dishID uint) models.RecipeLine {
	w.mu.Lock()
	defer w.mu.Unlock()
	r := models.RecipeLine{DishID: dishID}
	if len(w.snap.Articles) > 0 {
		id := w.snap.Articles[0].ID
		r.ArticleID = &id
	}
	return r
}

// RecipeLines returns the cached lines of a dish.
func (w *Workspace) RecipeLines(dishID uint) []models.RecipeLine {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := []models.RecipeLine{}
	for _, r := range cloneRecipes(w.snap.Recipes) {
		if r.DishID == dishID {
			out = append(out, r)
		}
	}
	return out
}

// AddIngredient stores r. Its dish must exist, and so must its article when set.
func (w *Workspace) AddIngredient(ctx context.Context, r models.RecipeLine) (models.RecipeLine, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r.ID = 0
	if w.dishIndex(r.DishID) < 0 {
		return models.RecipeLine{}, ErrNotFound
	}
	if r.ArticleID != nil && w.articleIndex(*r.ArticleID) < 0 {
		return models.RecipeLine{}, ErrNotFound
	}
	if err := w.write(ctx, "add_ingredient", func(ctx context.Context) error {
		return w.store.CreateRecipe(ctx, &r)
	}); err != nil {
		return models.RecipeLine{}, err
	}
	w.snap.Recipes = append(w.snap.Recipes, r)
	return r, nil
}

func (w *Workspace) UpdateRecipe(ctx context.Context, id uint, p RecipePatch) (models.RecipeLine, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.recipeIndex(id)
	if i < 0 {
		return models.RecipeLine{}, ErrNotFound
	}
	r := w.snap.Recipes[i]
	if p.ArticleID != nil {
		if w.articleIndex(*p.ArticleID) < 0 {
			return models.RecipeLine{}, ErrNotFound
		}
		aid := *p.ArticleID
		r.ArticleID = &aid
	}
	if p.Quantity != nil {
		r.Quantity = *p.Quantity
	}
	w.snap.Recipes[i] = r
	if err := w.write(ctx, "update_recipe", func(ctx context.Context) error {
		return w.store.UpdateRecipe(ctx, r)
	}); err != nil {
		return models.RecipeLine{}, err
	}
	return r, nil
}

func (w *Workspace) DeleteRecipe(ctx context.Context, id uint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.recipeIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	w.snap.Recipes = append(w.snap.Recipes[:i], w.snap.Recipes[i+1:]...)
	return w.write(ctx, "delete_recipe", func(ctx context.Context) error {
		return w.store.DeleteRecipe(ctx, id)
	})
}
