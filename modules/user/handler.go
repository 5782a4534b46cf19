package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidtube/backend/core"
)

// identity mirrors session.UserIDFromContext without importing the session
// package, which already depends on this one.
type identity func(r *http.Request) (bson.ObjectID, bool)

// Handler exposes account operations over HTTP.
type Handler struct {
	users    *Service
	identity identity
}

// NewHandler creates the account HTTP handler. identityFn extracts the
// authenticated user id placed on the request context by the auth middleware.
func NewHandler(users *Service, identityFn func(r *http.Request) (bson.ObjectID, bool)) *Handler {
	return &Handler{users: users, identity: identityFn}
}

// Routes mounts the account endpoints. Registration is public; everything
// else requires the auth middleware.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.register)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/current-user", h.currentUser)
		r.Patch("/update-account", h.updateAccount)
		r.Patch("/avatar", h.updateAvatar)
		r.Patch("/cover-image", h.updateCoverImage)
		r.Get("/c/{username}", h.channelProfile)
		r.Get("/history", h.watchHistory)
	})

	return r
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName       string `json:"fullName"`
		Email          string `json:"email"`
		Username       string `json:"username"`
		Password       string `json:"password"`
		AvatarPath     string `json:"avatarPath"`
		CoverImagePath string `json:"coverImagePath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, core.Validation("invalid request body"))
		return
	}

	created, err := h.users.Register(r.Context(), RegisterInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		AvatarPath:     req.AvatarPath,
		CoverImagePath: req.CoverImagePath,
	})
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.WriteJSON(w, http.StatusCreated, created, "user registered successfully")
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r)
	if !ok {
		core.WriteError(w, core.Auth(core.ReasonMissingToken, "unauthorized request"))
		return
	}

	current, err := h.users.CurrentUser(r.Context(), userID)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.WriteJSON(w, http.StatusOK, current, "current user fetched successfully")
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r)
	if !ok {
		core.WriteError(w, core.Auth(core.ReasonMissingToken, "unauthorized request"))
		return
	}

	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, core.Validation("invalid request body"))
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), userID, req.FullName, req.Email)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.WriteJSON(w, http.StatusOK, updated, "account updated successfully")
}

func (h *Handler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar")
}

func (h *Handler) updateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage")
}

func (h *Handler) updateImage(w http.ResponseWriter, r *http.Request, field string) {
	userID, ok := h.identity(r)
	if !ok {
		core.WriteError(w, core.Auth(core.ReasonMissingToken, "unauthorized request"))
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteError(w, core.Validation("invalid request body"))
		return
	}

	var (
		updated *Public
		err     error
	)
	if field == "avatar" {
		updated, err = h.users.UpdateAvatar(r.Context(), userID, req.Path)
	} else {
		updated, err = h.users.UpdateCoverImage(r.Context(), userID, req.Path)
	}
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.WriteJSON(w, http.StatusOK, updated, field+" updated successfully")
}

func (h *Handler) channelProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r)
	if !ok {
		core.WriteError(w, core.Auth(core.ReasonMissingToken, "unauthorized request"))
		return
	}

	profile, err := h.users.GetChannelProfile(r.Context(), chi.URLParam(r, "username"), userID)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.WriteJSON(w, http.StatusOK, profile, "channel profile fetched successfully")
}

func (h *Handler) watchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r)
	if !ok {
		core.WriteError(w, core.Auth(core.ReasonMissingToken, "unauthorized request"))
		return
	}

	history, err := h.users.GetWatchHistory(r.Context(), userID)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.WriteJSON(w, http.StatusOK, history, "watch history fetched successfully")
}
