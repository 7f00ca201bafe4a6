package catalog

import (
	"context"

	"github.com/diewo77/go-commandes/internal/models"
)

// Snapshot is the full content of the five catalog tables, each ordered by id.
type Snapshot struct {
	Categories   []models.Category    `json:"categories"`
	Dishes       []models.Dish        `json:"dishes"`
	Articles     []models.Article     `json:"articles"`
	Recipes      []models.RecipeLine  `json:"recipes"`
	Reservations []models.Reservation `json:"reservations"`
}

// Clone returns a copy that shares no slice with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Categories:   append([]models.Category{}, s.Categories...),
		Dishes:       append([]models.Dish{}, s.Dishes...),
		Articles:     append([]models.Article{}, s.Articles...),
		Recipes:      cloneRecipes(s.Recipes),
		Reservations: append([]models.Reservation{}, s.Reservations...),
	}
}

func cloneRecipes(in []models.RecipeLine) []models.RecipeLine {
	out := make([]models.RecipeLine, len(in))
	for i, r := range in {
		if r.ArticleID != nil {
			id := *r.ArticleID
			r.ArticleID = &id
		}
		out[i] = r
	}
	return out
}

// Store is the remote relational store mirrored by a Workspace. Rows are keyed
// by numeric id, except categories which are keyed by name. Create methods set
// the id on their argument.
type Store interface {
	LoadAll(ctx context.Context) (Snapshot, error)

	CreateCategory(ctx context.Context, c *models.Category) error
	// DeleteCategory moves the category's dishes to fallback, then removes it.
	DeleteCategory(ctx context.Context, name, fallback string) error

	CreateDish(ctx context.Context, d *models.Dish) error
	// UpdateDish writes every field of d. When oldName differs from d.Name,
	// reservations naming oldName are renamed too.
	UpdateDish(ctx context.Context, d models.Dish, oldName string) error
	// DeleteDish removes the dish and its recipe lines.
	DeleteDish(ctx context.Context, id uint) error

	CreateArticle(ctx context.Context, a *models.Article) error
	// CreateArticles inserts all rows or none.
	CreateArticles(ctx context.Context, as []models.Article) error
	UpdateArticle(ctx context.Context, a models.Article) error
	// DeleteArticle removes the article and the recipe lines using it.
	DeleteArticle(ctx context.Context, id uint) error

	CreateRecipe(ctx context.Context, r *models.RecipeLine) error
	UpdateRecipe(ctx context.Context, r models.RecipeLine) error
	DeleteRecipe(ctx context.Context, id uint) error

	CreateReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservation(ctx context.Context, r models.Reservation) error
	DeleteReservation(ctx context.Context, id uint) error
}
