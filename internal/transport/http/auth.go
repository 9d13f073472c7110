package http

import (
	"context"
	"net/http"
	"strings"

	"xuper/internal/domain"
	"xuper/internal/service"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*domain.Principal)
	return p, ok && p != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", domain.ErrMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", domain.ErrMalformedAuthHeader
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", domain.ErrMalformedAuthHeader
	}
	return token, nil
}

// EnsureAuthenticated verifies the bearer token and attaches the resolved
// principal to the request context.
func EnsureAuthenticated(tokens service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeError(w, r, "authenticate", err)
				return
			}
			p, err := tokens.Verify(r.Context(), raw)
			if err != nil {
				writeError(w, r, "authenticate", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// EnsureAdmin must run after EnsureAuthenticated.
func EnsureAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, r, "authorize", domain.ErrUnauthenticated)
			return
		}
		if !p.IsAdmin() {
			writeError(w, r, "authorize", domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
