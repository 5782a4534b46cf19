package subscription

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidtube/backend/core"
)

// Handler exposes the subscribe toggle over HTTP.
type Handler struct {
	subs     *Repository
	identity func(r *http.Request) (bson.ObjectID, bool)
}

// NewHandler creates the subscription HTTP handler.
func NewHandler(subs *Repository, identityFn func(r *http.Request) (bson.ObjectID, bool)) *Handler {
	return &Handler{subs: subs, identity: identityFn}
}

// Routes mounts the subscription endpoints; all require authentication.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth)
	r.Post("/c/{channelID}", h.toggle)
	return r
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r)
	if !ok {
		core.WriteError(w, core.Auth(core.ReasonMissingToken, "unauthorized request"))
		return
	}

	channelID, err := bson.ObjectIDFromHex(chi.URLParam(r, "channelID"))
	if err != nil {
		core.WriteError(w, core.Validation("invalid channel id"))
		return
	}
	if channelID == userID {
		core.WriteError(w, core.Validation("cannot subscribe to yourself"))
		return
	}

	subscribed, err := h.subs.Toggle(r.Context(), userID, channelID)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.WriteJSON(w, http.StatusOK, map[string]bool{"subscribed": subscribed}, "subscription toggled")
}
