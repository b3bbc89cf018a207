package auth

import (
	"net/http"
	"strings"

	"github.com/ghuser/pantry/pkg/httpx"
	"github.com/ghuser/pantry/pkg/logger"
)

// AccessVerifier verifies bearer access tokens. *TokenIssuer satisfies it.
type AccessVerifier interface {
	VerifyAccess(token string) (*Claims, error)
}

// RequireAuth is a chi middleware that enforces authentication via a bearer
// access token in the Authorization header. On success the Principal is
// injected into the request context.
// Returns 401 Unauthorized if the header is missing, malformed, or the token is invalid.
//
// After this middleware, handlers can safely call auth.PrincipalFromCtx(r.Context()).
func RequireAuth(tokens AccessVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
				return
			}

			claims, err := tokens.VerifyAccess(raw)
			if err != nil {
				log.WarnContext(r.Context(), "rejected access token", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, ErrInvalidToken.Error())
				return
			}

			ctx := WithPrincipal(r.Context(), claims.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must be mounted after RequireAuth. Returns 403 for non-admin callers.
func RequireAdmin(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := PrincipalFromCtx(r.Context())
			if err != nil {
				httpx.JSONError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if !p.IsAdmin {
				log.WarnContext(r.Context(), "admin route denied", "user_id", p.UserID)
				httpx.JSONError(w, http.StatusForbidden, ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
