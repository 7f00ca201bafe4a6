// Package handlers exposes the catalog workspace over JSON endpoints.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/go-commandes/auth"
	"github.com/diewo77/go-commandes/httpx"
	"github.com/diewo77/go-commandes/i18n"
	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/internal/csvimport"
	"github.com/diewo77/go-commandes/internal/media"
	"github.com/diewo77/go-commandes/internal/pricing"
	"github.com/diewo77/go-commandes/validation"
)

// Workspaces resolves the workspace of a signed-in user.
type Workspaces interface {
	Get(ctx context.Context, uid uint) (*catalog.Workspace, error)
}

// Sessions opens and closes workspaces around sign-in and sign-out.
type Sessions interface {
	Workspaces
	Open(ctx context.Context, uid uint) (*catalog.Workspace, error)
	Close(uid uint)
}

func lang(r *http.Request) string { return i18n.LangFromContext(r.Context()) }

func protect(f http.HandlerFunc) http.Handler { return auth.RequireAuth(f) }

// workspace writes an error response and returns false when the caller's
// workspace cannot be resolved.
func workspace(ws Workspaces, w http.ResponseWriter, r *http.Request) (*catalog.Workspace, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	s, err := ws.Get(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "workspace load failed", "user_id", uid, "err", err)
		httpx.JSONErrorMessage(w, http.StatusBadGateway, "load_failed", i18n.T(lang(r), "load_failed"), nil)
		return nil, false
	}
	return s, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONErrorMessage(w, http.StatusNotFound, "not_found", i18n.T(lang(r), "not_found"), nil)
		return 0, false
	}
	return uint(id), true
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), err.Error())
		return false
	}
	return true
}

// invalid writes v as a 400 with translated messages. It returns true when v
// holds violations.
func invalid(w http.ResponseWriter, r *http.Request, v validation.Violations) bool {
	if v.Empty() {
		return false
	}
	l := lang(r)
	details := make(map[string]string, len(v))
	for field, code := range v {
		details[field] = i18n.T(l, code)
	}
	httpx.JSONErrorMessage(w, http.StatusBadRequest, "validation_failed", i18n.T(l, "validation_failed"), details)
	return true
}

// respond writes data with a translated status message.
func respond(w http.ResponseWriter, r *http.Request, status int, data any, code string) {
	env := httpx.Envelope{Data: data}
	if code != "" {
		env.Message = i18n.T(lang(r), code)
	}
	httpx.JSON(w, status, env)
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	l := lang(r)
	var syncErr *catalog.SyncError
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.As(err, &syncErr):
		status, code = http.StatusBadGateway, "sync_failed"
	case errors.Is(err, catalog.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, catalog.ErrLastCategory):
		status, code = http.StatusConflict, "last_category"
	case errors.Is(err, catalog.ErrDuplicateCategory):
		status, code = http.StatusConflict, "category_exists"
	case errors.Is(err, catalog.ErrUnknownCategory):
		status, code = http.StatusBadRequest, "unknown_category"
	case errors.Is(err, catalog.ErrInvalidName):
		status, code = http.StatusBadRequest, "invalid_name"
	case errors.Is(err, pricing.ErrConflictingPrices):
		status, code = http.StatusBadRequest, "conflicting_prices"
	case errors.Is(err, media.ErrTooLarge):
		status, code = http.StatusRequestEntityTooLarge, "image_too_large"
	case errors.Is(err, media.ErrUnsupported):
		status, code = http.StatusUnsupportedMediaType, "image_unsupported"
	case errors.Is(err, csvimport.ErrEmptyFile):
		status, code = http.StatusBadRequest, "import_empty"
	case errors.Is(err, csvimport.ErrTooLarge):
		status, code = http.StatusRequestEntityTooLarge, "import_too_large"
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "code", code, "err", err)
	}
	msg := i18n.T(l, code)
	if code == "internal_error" {
		msg = ""
	}
	httpx.JSONErrorMessage(w, status, code, msg, nil)
}
