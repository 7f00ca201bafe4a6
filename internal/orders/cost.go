package orders

import (
	"github.com/diewo77/go-commandes/internal/models"
	"github.com/diewo77/go-commandes/internal/pricing"
)

// DefaultServings is the guest count used for recipe sheets when none is given.
const DefaultServings = 10

// Margin is the safety margin applied on the "+10%" cost tiers.
const Margin = 1.10

// Ingredient is a recipe line scaled to a number of servings.
type Ingredient struct {
	ArticleID   uint    `json:"articleId"`
	ProductName string  `json:"productName"`
	Supplier    string  `json:"supplier"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	CostHT      float64 `json:"costHT"`
	CostTTC     float64 `json:"costTTC"`
}

// Cost summarizes what a dish costs for a number of servings.
type Cost struct {
	DishID       uint         `json:"dishId"`
	Dish         string       `json:"dish"`
	Servings     int          `json:"servings"`
	Ingredients  []Ingredient `json:"ingredients"`
	TotalHT      float64      `json:"totalHT"`
	TotalTTC     float64      `json:"totalTTC"`
	PerPersonHT  float64      `json:"perPersonHT"`
	PerPersonTTC float64      `json:"perPersonTTC"`
	MarginHT     float64      `json:"marginHT"`
	MarginTTC    float64      `json:"marginTTC"`
}

// DishCost scales the recipe of dish to servings. Lines without a known
// article are skipped. servings < 1 falls back to DefaultServings.
func DishCost(dish models.Dish, ix *Index, servings int) Cost {
	if servings < 1 {
		servings = DefaultServings
	}
	c := Cost{DishID: dish.ID, Dish: dish.Name, Servings: servings, Ingredients: []Ingredient{}}
	var ht, ttc float64
	for _, rl := range ix.Lines(dish.ID) {
		a, ok := ix.Article(rl.ArticleID)
		if !ok {
			continue
		}
		q := rl.Quantity * float64(servings)
		ing := Ingredient{
			ArticleID:   a.ID,
			ProductName: a.ProductName,
			Supplier:    a.Supplier,
			Quantity:    q,
			Unit:        a.Unit,
			CostHT:      q * a.PriceHT,
			CostTTC:     q * a.PriceTTC,
		}
		ht += ing.CostHT
		ttc += ing.CostTTC
		c.Ingredients = append(c.Ingredients, ing)
	}
	c.TotalHT = pricing.Round2(ht)
	c.TotalTTC = pricing.Round2(ttc)
	c.PerPersonHT = pricing.Round2(ht / float64(servings))
	c.PerPersonTTC = pricing.Round2(ttc / float64(servings))
	c.MarginHT = pricing.Round2(ht * Margin)
	c.MarginTTC = pricing.Round2(ttc * Margin)
	return c
}
