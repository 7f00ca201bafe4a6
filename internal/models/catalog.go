package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category groups dishes on the menu. Categories are addressed by name.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:120;not null" json:"name"`
}

// Article is a product bought from a supplier.
// PriceTTC is kept equal to PriceHT*(1+VATRate/100) rounded to cents.
type Article struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Reference   string  `gorm:"size:120" json:"reference"`
	ProductName string  `gorm:"size:255;not null" json:"productName"`
	Supplier    string  `gorm:"size:255" json:"supplier"`
	PriceHT     float64 `gorm:"column:price_ht;not null;default:0" json:"priceHT"`
	PriceTTC    float64 `gorm:"column:price_ttc;not null;default:0" json:"priceTTC"`
	VATRate     float64 `gorm:"column:tva_rate;not null" json:"tvaRate"`
	Unit        string  `gorm:"size:32;not null" json:"unit"`
}

// Dish is a menu item. Category holds the category name.
type Dish struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null;index" json:"name"`
	Category    string `gorm:"size:120;not null" json:"category"`
	RecipeText  string `gorm:"type:text" json:"recipeText"`
	RecipeImage string `gorm:"type:text" json:"recipeImage"`
}

// RecipeLine is the quantity of one article needed for a single guest of a dish.
// A nil ArticleID means no article has been picked yet.
type RecipeLine struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	DishID    uint    `gorm:"index;not null" json:"dishId"`
	ArticleID *uint   `gorm:"index" json:"articleId"`
	Quantity  float64 `gorm:"not null;default:0" json:"quantity"`
}

func (RecipeLine) TableName() string { return "recipes" }

// Reservation references its dish by name, not by id.
type Reservation struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Date    string `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Clients int    `gorm:"not null;default:0" json:"clients"`
	Dish    string `gorm:"size:255;index" json:"dish"`
}

// Creation defaults.
const (
	DefaultProductName = "Nouveau produit"
	DefaultSupplier    = "Fournisseur"
	DefaultVATRate     = 5.5
	DefaultUnit        = "kg"
	DefaultDishName    = "Nouveau plat"
	DefaultCategory    = "Plat"
)

// DefaultCategories are seeded on an empty database.
var DefaultCategories = []string{"Entrée", "Plat", "Dessert"}

var categoryIcons = []struct {
	key  string
	icon string
}{
	{"entree", "🥗"},
	{"plat", "🍽️"},
	{"dessert", "🍰"},
	{"accompagnement", "🥖"},
	{"boisson", "🥤"},
	{"aperitif", "🍸"},
}

// CategoryIcon returns a display icon for a category name.
func CategoryIcon(name string) string {
	key := foldAccents(strings.ToLower(name))
	for _, ci := range categoryIcons {
		if strings.Contains(key, ci.key) {
			return ci.icon
		}
	}
	return "🍴"
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
