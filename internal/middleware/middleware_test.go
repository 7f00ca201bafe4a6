package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func langEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(LangFrom(r)))
	})
}

func TestPrefsLanguageResolution(t *testing.T) {
	h := Prefs(langEcho())

	cases := []struct {
		name   string
		url    string
		cookie string
		accept string
		want   string
	}{
		{"default", "/", "", "", "fr"},
		{"accept language", "/", "", "en-US,en;q=0.9", "en"},
		{"cookie beats header", "/", "fr", "en-US", "fr"},
		{"query beats cookie", "/?lang=en", "fr", "", "en"},
		{"unsupported query ignored", "/?lang=de", "", "", "fr"},
		{"unsupported cookie falls back to header", "/", "xx", "en", "en"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, c.url, nil)
			if c.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "lang", Value: c.cookie})
			}
			if c.accept != "" {
				req.Header.Set("Accept-Language", c.accept)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, c.want, rec.Body.String())
		})
	}
}

func TestPrefsPersistsQueryLanguage(t *testing.T) {
	rec := httptest.NewRecorder()
	Prefs(langEcho()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
	cookies := rec.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, "lang", cookies[0].Name)
		assert.Equal(t, "en", cookies[0].Value)
	}
}

func TestLoggingAndRecover(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := Logging(log)(Recover(log)(boom))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.JSONEq(t, `{"error":"internal_error"}`, string(body))
	assert.Contains(t, buf.String(), "panic serving request")
	assert.Contains(t, buf.String(), "status=500")
}
