package session

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/core"
	"github.com/vidtube/backend/pkg/cookie"
)

// Handler exposes the session workflow over HTTP.
type Handler struct {
	sessions *Workflow
	tokens   *TokenService
	cookies  *cookie.Manager
}

// NewHandler creates the session HTTP handler.
func NewHandler(sessions *Workflow, tokens *TokenService, cookies *cookie.Manager) *Handler {
	return &Handler{sessions: sessions, tokens: tokens, cookies: cookies}
}

// Routes mounts the session endpoints. The auth middleware guards the
// operations that require an established identity.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.login)
	r.Post("/refresh-token", h.refresh)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/logout", h.logout)
		r.Post("/change-password", h.changePassword)
	})

	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, core.Validation("invalid request body"))
		return
	}

	result, err := h.sessions.Login(r.Context(), LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		core.WriteError(w, err)
		return
	}

	h.tokens.SetSessionCookies(w, h.cookies, result.Tokens)
	core.WriteJSON(w, http.StatusOK, map[string]any{
		"user":         result.User,
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	}, "user logged in successfully")
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	// The body is optional; the cookie carrier is checked first.
	_ = json.NewDecoder(r.Body).Decode(&req)

	raw := refreshTokenFromRequest(r, h.cookies, req.RefreshToken)

	pair, err := h.sessions.Refresh(r.Context(), raw)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	h.tokens.SetSessionCookies(w, h.cookies, pair)
	core.WriteJSON(w, http.StatusOK, pair, "access token refreshed")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		core.WriteError(w, core.Auth(core.ReasonMissingToken, "unauthorized request"))
		return
	}

	if err := h.sessions.Logout(r.Context(), userID); err != nil {
		core.WriteError(w, err)
		return
	}

	ClearSessionCookies(w, h.cookies)
	core.WriteJSON(w, http.StatusOK, struct{}{}, "user logged out successfully")
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		core.WriteError(w, core.Auth(core.ReasonMissingToken, "unauthorized request"))
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, core.Validation("invalid request body"))
		return
	}

	if err := h.sessions.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		core.WriteError(w, err)
		return
	}

	core.WriteJSON(w, http.StatusOK, struct{}{}, "password changed successfully")
}
