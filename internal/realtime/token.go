package realtime

import (
	"net/http"
	"strings"
)

// TokenCookieName is the cookie carrying the access token.
const TokenCookieName = "token"

// TokenFromRequest returns the credential presented with a websocket upgrade.
// Browsers cannot set headers on a websocket handshake, so the query
// parameter is checked first, then the Authorization header, then the cookie.
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
