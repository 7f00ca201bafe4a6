// Package orders turns reservations and recipes into a purchase order.
package orders

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/diewo77/go-commandes/internal/models"
	"github.com/diewo77/go-commandes/internal/pricing"
)

// Line is one article to buy. It is derived and never stored.
type Line struct {
	ArticleID   uint    `json:"articleId"`
	ProductName string  `json:"productName"`
	Supplier    string  `json:"supplier"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	PriceHT     float64 `json:"priceHT"`
	PriceTTC    float64 `json:"priceTTC"`
	VATRate     float64 `json:"tvaRate"`
	TotalCost   float64 `json:"totalCost"`
}

// Input bundles the collections the aggregation reads.
type Input struct {
	Reservations []models.Reservation
	Dishes       []models.Dish
	Recipes      []models.RecipeLine
	Articles     []models.Article
}

// Index gives constant-time lookups over an Input.
type Index struct {
	dishByName  map[string]uint
	linesByDish map[uint][]models.RecipeLine
	articleByID map[uint]models.Article
}

// NewIndex builds the lookup tables. When two dishes share a name the first
// one wins.
func NewIndex(in Input) *Index {
	ix := &Index{
		dishByName:  make(map[string]uint, len(in.Dishes)),
		linesByDish: make(map[uint][]models.RecipeLine),
		articleByID: make(map[uint]models.Article, len(in.Articles)),
	}
	for _, d := range in.Dishes {
		if _, ok := ix.dishByName[d.Name]; !ok {
			ix.dishByName[d.Name] = d.ID
		}
	}
	for _, r := range in.Recipes {
		ix.linesByDish[r.DishID] = append(ix.linesByDish[r.DishID], r)
	}
	for _, a := range in.Articles {
		ix.articleByID[a.ID] = a
	}
	return ix
}

// Article resolves an article id.
func (ix *Index) Article(id *uint) (models.Article, bool) {
	if id == nil {
		return models.Article{}, false
	}
	a, ok := ix.articleByID[*id]
	return a, ok
}

// Lines returns the recipe lines of a dish.
func (ix *Index) Lines(dishID uint) []models.RecipeLine { return ix.linesByDish[dishID] }

// Aggregate computes the purchase order for in. Reservations naming an
// unknown dish and recipe lines pointing at an unknown article are skipped.
// Articles whose accumulated quantity is zero are left out. The result is
// sorted by product name using French collation.
func Aggregate(in Input) []Line {
	ix := NewIndex(in)
	qty := make(map[uint]float64)
	var order []uint
	for _, res := range in.Reservations {
		dishID, ok := ix.dishByName[res.Dish]
		if !ok {
			continue
		}
		for _, rl := range ix.Lines(dishID) {
			a, ok := ix.Article(rl.ArticleID)
			if !ok {
				continue
			}
			contrib := rl.Quantity * float64(res.Clients)
			if contrib == 0 {
				continue
			}
			if _, seen := qty[a.ID]; !seen {
				order = append(order, a.ID)
			}
			qty[a.ID] += contrib
		}
	}

	lines := make([]Line, 0, len(order))
	for _, id := range order {
		q := qty[id]
		if q == 0 {
			continue
		}
		a := ix.articleByID[id]
		lines = append(lines, Line{
			ArticleID:   a.ID,
			ProductName: a.ProductName,
			Supplier:    a.Supplier,
			Quantity:    q,
			Unit:        a.Unit,
			PriceHT:     a.PriceHT,
			PriceTTC:    a.PriceTTC,
			VATRate:     a.VATRate,
			TotalCost:   q * a.PriceTTC,
		})
	}
	SortByProduct(lines)
	return lines
}

// SortByProduct orders lines by product name with French collation rules.
func SortByProduct(lines []Line) {
	c := collate.New(language.French)
	sort.SliceStable(lines, func(i, j int) bool {
		return c.CompareString(lines[i].ProductName, lines[j].ProductName) < 0
	})
}

// Total is the grand total of the order, rounded to cents.
func Total(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.TotalCost
	}
	return pricing.Round2(sum)
}
