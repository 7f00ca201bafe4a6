// Package export renders the catalog as downloadable files: a JSON backup,
// per-dish recipe sheets and a printable purchase order.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/internal/models"
	"github.com/diewo77/go-commandes/internal/orders"
	"github.com/diewo77/go-commandes/view"
)

// Backup is the layout of the JSON backup file.
type Backup struct {
	Reservations []models.Reservation `json:"reservations"`
	Dishes       []models.Dish        `json:"dishes"`
	Articles     []models.Article     `json:"articles"`
	Recipes      []models.RecipeLine  `json:"recipes"`
	Categories   []string             `json:"categories"`
}

// NewBackup copies a snapshot into the backup layout.
func NewBackup(s catalog.Snapshot) Backup {
	b := Backup{
		Reservations: s.Reservations,
		Dishes:       s.Dishes,
		Articles:     s.Articles,
		Recipes:      s.Recipes,
		Categories:   make([]string, 0, len(s.Categories)),
	}
	for _, c := range s.Categories {
		b.Categories = append(b.Categories, c.Name)
	}
	return b
}

// BackupJSON returns the indented JSON backup of s.
func BackupJSON(s catalog.Snapshot) ([]byte, error) {
	return json.MarshalIndent(NewBackup(s), "", "  ")
}

// BackupFilename is restaurant-data-YYYY-MM-DD.json.
func BackupFilename(now time.Time) string {
	return "restaurant-data-" + now.Format("2006-01-02") + ".json"
}

var spaces = regexp.MustCompile(`\s+`)

// RecipeSheetFilename is recette_<name>_<n>pers.html with whitespace runs
// replaced by underscores.
func RecipeSheetFilename(dishName string, servings int) string {
	return fmt.Sprintf("recette_%s_%dpers.html", spaces.ReplaceAllString(dishName, "_"), servings)
}

// RecipeSheet renders the standalone HTML sheet of a dish.
func RecipeSheet(lang string, dish models.Dish, cost orders.Cost) ([]byte, error) {
	var buf bytes.Buffer
	err := view.RenderTo(&buf, lang, "recipe_sheet.html", map[string]any{
		"Category":   dish.Category,
		"RecipeText": dish.RecipeText,
		"Cost":       cost,
	})
	if err != nil {
		return nil, fmt.Errorf("export: recipe sheet: %w", err)
	}
	return buf.Bytes(), nil
}
