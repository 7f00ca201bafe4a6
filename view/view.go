package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/go-commandes/auth"
	"github.com/diewo77/go-commandes/i18n"
	"github.com/diewo77/go-commandes/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	langResolver = func(r *http.Request) string { return i18n.LangFromContext(r.Context()) }
	tplCache     = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

// SetLangResolver allows the host app to provide a custom language resolver.
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

// Funcs returns the template helpers for lang.
func Funcs(lang string) template.FuncMap {
	return template.FuncMap{
		"t":     func(code string) string { return i18n.T(lang, code) },
		"lang":  func() string { return lang },
		"money": func(v float64) string { return formatDecimal(v, 2) + " €" },
		"qty":   func(v float64) string { return formatDecimal(v, 3) },
		"mul": func(a, b any) float64 {
			fa, oka := toFloat64(a)
			fb, okb := toFloat64(b)
			if !oka || !okb {
				return 0
			}
			return fa * fb
		},
		"add": func(a, b any) float64 {
			fa, oka := toFloat64(a)
			fb, okb := toFloat64(b)
			if !oka || !okb {
				return 0
			}
			return fa + fb
		},
		"icon": models.CategoryIcon,
		"year": func() int { return time.Now().Year() },
		// dict creates a map from key-value pairs for passing to sub-templates.
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// formatDecimal prints v with a French decimal comma.
func formatDecimal(v float64, places int) string {
	return strings.Replace(fmt.Sprintf("%.*f", places, v), ".", ",", 1)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func lookup(lang, name string) (*template.Template, error) {
	key := lang + "/" + name
	tplCache.RLock()
	t, ok := tplCache.m[key]
	tplCache.RUnlock()
	if ok {
		return t, nil
	}
	t, err := template.New(name).Funcs(Funcs(lang)).ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, err
	}
	tplCache.Lock()
	tplCache.m[key] = t
	tplCache.Unlock()
	return t, nil
}

// RenderTo executes template name into w using lang for translations.
func RenderTo(w io.Writer, lang, name string, data map[string]any) error {
	t, err := lookup(lang, name)
	if err != nil {
		return err
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	return t.Execute(w, data)
}

// Render executes template name as an HTML response.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return RenderTo(w, langResolver(r), name, data)
}

// ResetForTests clears the template cache.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
}
