package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rohits-web03/cloudvault/internal/auth"
	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/utils"
)

// Resolver turns a session token into the calling principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

// Auth rejects requests without a valid session and stores the principal in
// the request context. The token comes from the Authorization header or, for
// browsers, the "token" cookie.
func Auth(gate Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			p, err := gate.Resolve(r.Context(), tokenFrom(r))
			if err != nil {
				status, message := http.StatusUnauthorized, "Unauthorized"
				switch {
				case errors.Is(err, domain.ErrForbidden):
					status, message = http.StatusForbidden, "Account is not active"
				case !errors.Is(err, domain.ErrUnauthenticated):
					status, message = http.StatusServiceUnavailable, "Service unavailable"
				}
				utils.Fail(w, status, message)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

func tokenFrom(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}
