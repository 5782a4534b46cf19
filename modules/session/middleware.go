package session

import (
	"net/http"

	"github.com/vidtube/backend/core"
	"github.com/vidtube/backend/pkg/cookie"
)

// Middleware verifies the access token on incoming requests and injects the
// authenticated user id into the request context. Unauthenticated requests
// are rejected before the handler runs.
func Middleware(tokens *TokenService, cookies *cookie.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := accessTokenFromRequest(r, cookies)
			if raw == "" {
				core.WriteError(w, core.Auth(core.ReasonMissingToken, "unauthorized request"))
				return
			}

			userID, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				core.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
