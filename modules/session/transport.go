package session

import (
	"net/http"
	"strings"

	"github.com/vidtube/backend/pkg/cookie"
)

// Cookie names for the two session token carriers.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetSessionCookies writes both tokens as scoped cookies. Clients may use
// either the cookies or the response body copies.
func (t *TokenService) SetSessionCookies(w http.ResponseWriter, cookies *cookie.Manager, pair TokenPair) {
	cookies.Set(w, AccessTokenCookie, pair.AccessToken,
		cookie.WithMaxAge(int(t.AccessTTL().Seconds())))
	cookies.Set(w, RefreshTokenCookie, pair.RefreshToken,
		cookie.WithMaxAge(int(t.RefreshTTL().Seconds())))
}

// ClearSessionCookies expires both token carriers.
func ClearSessionCookies(w http.ResponseWriter, cookies *cookie.Manager) {
	cookies.Delete(w, AccessTokenCookie)
	cookies.Delete(w, RefreshTokenCookie)
}

// accessTokenFromRequest pulls the access token from the cookie or, failing
// that, an Authorization bearer header.
func accessTokenFromRequest(r *http.Request, cookies *cookie.Manager) string {
	if token, err := cookies.Get(r, AccessTokenCookie); err == nil && token != "" {
		return token
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

// refreshTokenFromRequest pulls the refresh token from the cookie, which
// takes precedence over any body field; the body fallback value is supplied
// by the handler after decoding.
func refreshTokenFromRequest(r *http.Request, cookies *cookie.Manager, bodyToken string) string {
	if token, err := cookies.Get(r, RefreshTokenCookie); err == nil && token != "" {
		return token
	}
	return bodyToken
}
