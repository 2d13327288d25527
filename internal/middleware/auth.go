package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront-be/internal/auth"
	"github.com/hongminglow/storefront-be/internal/http/respond"
)

type principalKey struct{}

// Authenticator resolves an Authorization header to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (auth.Principal, error)
}

// RequireAuth rejects requests without a valid, unrevoked bearer token.
func RequireAuth(authn Authenticator, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authn.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, auth.ErrUnauthorized) {
					respond.Error(w, http.StatusUnauthorized, unauthorizedMessage(err))
					return
				}
				log.WithError(err).Error("authenticate request")
				respond.Error(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "Access denied, token required"
	case errors.Is(err, auth.ErrRevokedToken):
		return "Token has been blacklisted, access denied"
	default:
		return "Invalid token"
	}
}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated caller stored by RequireAuth.
func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(auth.Principal)
	return p, ok
}
