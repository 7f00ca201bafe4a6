package view

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/go-commandes/i18n"
)

func TestRenderLoginFrench(t *testing.T) {
	ResetForTests()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()
	if err := Render(rr, req, "login.html", map[string]any{"Error": "Email ou mot de passe incorrect."}); err != nil {
		t.Fatalf("render: %v", err)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Connexion") {
		t.Fatalf("missing french title: %s", body)
	}
	if !strings.Contains(body, "Email ou mot de passe incorrect.") {
		t.Fatalf("missing error: %s", body)
	}
}

func TestRenderLoginEnglish(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req = req.WithContext(i18n.WithLang(req.Context(), "en"))
	rr := httptest.NewRecorder()
	if err := Render(rr, req, "login.html", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(rr.Body.String(), "Sign in") {
		t.Fatalf("missing english title: %s", rr.Body.String())
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTo(&buf, "fr", "nope.html", nil); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestFormatDecimal(t *testing.T) {
	if got := formatDecimal(2, 3); got != "2,000" {
		t.Fatalf("expected 2,000 got %s", got)
	}
	if got := Funcs("fr")["money"].(func(float64) string)(30); got != "30,00 €" {
		t.Fatalf("expected 30,00 € got %s", got)
	}
}
