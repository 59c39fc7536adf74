package middleware

import (
	"context"
	"net/http"
	"strings"

	authcore "github.com/pawshelter/authcore"
)

type accessClaimsContextKey struct{}

// ClaimsFromContext returns the access claims injected by [RequireAccess],
// if the request passed a guard.
func ClaimsFromContext(ctx context.Context) (*authcore.AccessClaims, bool) {
	claims, ok := ctx.Value(accessClaimsContextKey{}).(*authcore.AccessClaims)
	return claims, ok
}

// RequireAccess verifies the access token for the wrapped handler. The token
// is read from the Authorization header, falling back to the configured
// access cookie, and validated statelessly.
func RequireAccess(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := requestToken(r, engine.AccessCookieName())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := engine.ValidateAccessToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), accessClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole verifies the access token and additionally requires the given
// role among the token's role claims.
func RequireRole(engine *authcore.Engine, role string) func(http.Handler) http.Handler {
	guard := RequireAccess(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !hasRole(claims.Roles, role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func requestToken(r *http.Request, cookieName string) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}
	if cookieName == "" {
		return "", false
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
