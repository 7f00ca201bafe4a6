package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONError(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONErrorMessage(rr, http.StatusConflict, "last_category", "keep one", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"last_category","message":"keep one"}`, rr.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Plat"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "Plat", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nom":"Plat"}`))
	assert.Error(t, DecodeJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
	assert.Error(t, DecodeJSON(req, &dst))
}

func TestAttachment(t *testing.T) {
	rr := httptest.NewRecorder()
	Attachment(rr, "recette_Boeuf_10pers.html", "text/html; charset=utf-8", []byte("<p>ok</p>"))
	assert.Equal(t, `attachment; filename=recette_Boeuf_10pers.html`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "<p>ok</p>", rr.Body.String())
}

func TestJSONWithETag(t *testing.T) {
	payload := map[string]any{"total": 30.0}
	rr := httptest.NewRecorder()
	JSONWithETag(rr, httptest.NewRequest(http.MethodGet, "/api/orders", nil), payload)
	require.Equal(t, http.StatusOK, rr.Code)
	tag := rr.Header().Get("ETag")
	require.NotEmpty(t, tag)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("If-None-Match", tag)
	rr = httptest.NewRecorder()
	JSONWithETag(rr, req, payload)
	assert.Equal(t, http.StatusNotModified, rr.Code)
	assert.Empty(t, rr.Body.String())
}
