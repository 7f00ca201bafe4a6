// Package i18n holds the French and English message catalogs.
package i18n

import (
	"context"
	"strings"
)

const DefaultLang = "fr"

type langKey struct{}

var messages = map[string]map[string]string{
	"fr": {
		"required":             "Requis",
		"must_be_positive":     "Doit être positif",
		"must_not_be_negative": "Ne peut pas être négatif",
		"out_of_range":         "Hors limites",
		"invalid_date":         "Date invalide (AAAA-MM-JJ)",
		"invalid_number":       "Nombre invalide",
		"invalid_credentials":  "Email ou mot de passe incorrect.",
		"unauthorized":         "Connexion requise",
		"not_found":            "Introuvable",
		"invalid_json":         "Requête invalide",
		"validation_failed":    "Données invalides",
		"data_loaded":          "Données chargées",
		"load_failed":          "Erreur de chargement",
		"sync_failed":          "Erreur de synchronisation, données rechargées",
		"saved":                "Enregistré",
		"deleted":              "Supprimé",
		"category_added":       "Catégorie ajoutée",
		"category_deleted":     "Catégorie supprimée",
		"category_exists":      "Cette catégorie existe déjà",
		"last_category":        "Vous devez garder au moins une catégorie",
		"unknown_category":     "Catégorie inconnue",
		"invalid_name":         "Le nom ne peut pas être vide",
		"conflicting_prices":   "Modifiez le prix HT ou le prix TTC, pas les deux",
		"articles_imported":    "articles importés",
		"import_failed":        "Erreur d'import",
		"import_empty":         "Le fichier est vide",
		"import_too_large":     "Fichier trop volumineux (4 Mo maximum)",
		"image_too_large":      "Image trop volumineuse",
		"image_unsupported":    "Format d'image non supporté",
		"login_title":          "Connexion",
		"email":                "Email",
		"password":             "Mot de passe",
		"sign_in":              "Se connecter",
		"recipe_sheet":         "Fiche recette",
		"servings":             "Nombre de personnes",
		"ingredients":          "Ingrédients",
		"product":              "Produit",
		"supplier":             "Fournisseur",
		"quantity":             "Quantité",
		"unit":                 "Unité",
		"preparation":          "Préparation",
		"cost":                 "Coût",
		"per_person":           "pers",
		"purchase_order":       "Bon de commande",
		"unit_price_ttc":       "Prix TTC",
		"total":                "Total",
		"grand_total":          "Total TTC",
		"generated_on":         "Généré le",
	},
	"en": {
		"required":             "Required",
		"must_be_positive":     "Must be positive",
		"must_not_be_negative": "Must not be negative",
		"out_of_range":         "Out of range",
		"invalid_date":         "Invalid date (YYYY-MM-DD)",
		"invalid_number":       "Invalid number",
		"invalid_credentials":  "Invalid email or password.",
		"unauthorized":         "Sign-in required",
		"not_found":            "Not found",
		"invalid_json":         "Invalid request",
		"validation_failed":    "Invalid data",
		"data_loaded":          "Data loaded",
		"load_failed":          "Loading failed",
		"sync_failed":          "Sync failed, data reloaded",
		"saved":                "Saved",
		"deleted":              "Deleted",
		"category_added":       "Category added",
		"category_deleted":     "Category deleted",
		"category_exists":      "This category already exists",
		"last_category":        "You must keep at least one category",
		"unknown_category":     "Unknown category",
		"invalid_name":         "Name must not be empty",
		"conflicting_prices":   "Edit either the HT or the TTC price, not both",
		"articles_imported":    "articles imported",
		"import_failed":        "Import failed",
		"import_empty":         "The file is empty",
		"import_too_large":     "File too large (4 MB maximum)",
		"image_too_large":      "Image too large",
		"image_unsupported":    "Unsupported image format",
		"login_title":          "Sign in",
		"email":                "Email",
		"password":             "Password",
		"sign_in":              "Sign in",
		"recipe_sheet":         "Recipe sheet",
		"servings":             "Servings",
		"ingredients":          "Ingredients",
		"product":              "Product",
		"supplier":             "Supplier",
		"quantity":             "Quantity",
		"unit":                 "Unit",
		"preparation":          "Preparation",
		"cost":                 "Cost",
		"per_person":           "person",
		"purchase_order":       "Purchase order",
		"unit_price_ttc":       "Price incl. VAT",
		"total":                "Total",
		"grand_total":          "Total incl. VAT",
		"generated_on":         "Generated on",
	},
}

// T translates code into lang. Unknown languages use French; unknown codes
// are returned unchanged.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// DetectLanguage picks "en" when the first Accept-Language entry is English
// and "fr" otherwise.
func DetectLanguage(acceptLanguage string) string {
	first := strings.TrimSpace(strings.Split(acceptLanguage, ",")[0])
	first = strings.ToLower(strings.SplitN(first, ";", 2)[0])
	if strings.HasPrefix(first, "en") {
		return "en"
	}
	return DefaultLang
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext returns the language stored by WithLang, or DefaultLang.
func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return DefaultLang
}
