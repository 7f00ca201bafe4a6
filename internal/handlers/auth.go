package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/diewo77/go-commandes/auth"
	"github.com/diewo77/go-commandes/httpx"
	"github.com/diewo77/go-commandes/i18n"
	"github.com/diewo77/go-commandes/internal/db"
	"github.com/diewo77/go-commandes/internal/models"
	"github.com/diewo77/go-commandes/view"
)

// Accounts authenticates back office users.
type Accounts interface {
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	Get(ctx context.Context, id uint) (models.User, error)
}

type AuthHandler struct {
	accounts Accounts
	sessions Sessions
}

func NewAuthHandler(accounts Accounts, sessions Sessions) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", h.loginPage)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)
	mux.Handle("GET /api/me", protect(h.me))
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func isJSONBody(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/json"
}

func wantsJSON(r *http.Request) bool {
	return isJSONBody(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

func renderLogin(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	if err := view.Render(w, r, "login.html", data); err != nil {
		slog.ErrorContext(r.Context(), "render login", "err", err)
	}
}

func (h *AuthHandler) loginPage(w http.ResponseWriter, r *http.Request) {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		if _, err := h.accounts.Get(r.Context(), uid); err == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		auth.ClearSession(w)
	}
	renderLogin(w, r, http.StatusOK, nil)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if isJSONBody(r) {
		if err := httpx.DecodeJSON(r, &c); err != nil {
			httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), err.Error())
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		c.Email, c.Password = r.FormValue("email"), r.FormValue("password")
	}
	c.Email = strings.TrimSpace(c.Email)

	user, err := h.accounts.Authenticate(r.Context(), c.Email, c.Password)
	if err != nil {
		if !errors.Is(err, db.ErrInvalidCredentials) {
			slog.ErrorContext(r.Context(), "authenticate", "err", err)
		}
		msg := i18n.T(lang(r), "invalid_credentials")
		if wantsJSON(r) {
			httpx.JSONErrorMessage(w, http.StatusUnauthorized, "invalid_credentials", msg, nil)
			return
		}
		renderLogin(w, r, http.StatusUnauthorized, map[string]any{"Error": msg, "Email": c.Email})
		return
	}
	if err := auth.CreateSession(w, user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	msg := "data_loaded"
	if _, err := h.sessions.Open(r.Context(), user.ID); err != nil {
		// The workspace is opened again on the first API call.
		slog.WarnContext(r.Context(), "initial load failed", "user_id", user.ID, "err", err)
		msg = "load_failed"
	}
	slog.InfoContext(r.Context(), "user signed in", "user_id", user.ID)
	if wantsJSON(r) {
		respond(w, r, http.StatusOK, user, msg)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		h.sessions.Close(uid)
		slog.InfoContext(r.Context(), "user signed out", "user_id", uid)
	}
	auth.ClearSession(w)
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	user, err := h.accounts.Get(r.Context(), uid)
	if err != nil {
		httpx.JSONErrorMessage(w, http.StatusNotFound, "not_found", i18n.T(lang(r), "not_found"), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
