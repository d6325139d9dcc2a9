package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rafaelpmaio/authcore"
	"github.com/rafaelpmaio/authcore/token"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified claims Guard stored on the
// request context.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims, ok
}

// Guard returns middleware that rejects requests without a valid bearer
// access token. On success the verified claims are available via
// ClaimsFromContext.
func Guard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			tok, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := engine.VerifyAccess(r.Context(), tok)
			if err != nil {
				http.Error(w, "unauthorized", statusFor(err))
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwner is Guard plus an ownership check: the authenticated user
// must match the {id} path value. Mismatches get 403.
func RequireOwner(engine *authcore.Engine, pathParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			tok, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := engine.AuthorizeOwner(r.Context(), tok, r.PathValue(pathParam))
			if err != nil {
				http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func statusFor(err error) int {
	if errors.Is(err, authcore.ErrForbidden) {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}

	return tok, true
}
