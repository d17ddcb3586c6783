package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"storefront/auth"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFromContext returns the authenticated principal for the request,
// or nil when the request is anonymous.
func PrincipalFromContext(ctx context.Context) *auth.User {
	if u, ok := ctx.Value(principalKey).(*auth.User); ok {
		return u
	}
	return nil
}

// withPrincipal attaches a principal to the request context for the rest of
// the pipeline. The association lives only for this request.
func withPrincipal(ctx context.Context, u *auth.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}

// Authenticate enriches requests that carry a valid bearer token with the
// resolved principal and its freshly loaded authorities. It never rejects
// on token problems: a missing, malformed, or expired token leaves the
// request anonymous and route rules decide downstream. Only a store
// failure after a verified subject produces an error response.
func Authenticate(tokens *auth.TokenService, authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			subject, err := tokens.ExtractSubject(token)
			if err != nil {
				slog.Warn("bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if PrincipalFromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authSvc.LoadPrincipal(r.Context(), subject)
			if err != nil {
				if errors.Is(err, auth.ErrUserNotFound) {
					// A verified signature whose subject no longer exists
					// means the store and the token disagree.
					slog.Error("token subject has no principal", "subject", subject)
					writeError(w, http.StatusInternalServerError, "authentication state inconsistent")
					return
				}
				slog.Error("principal lookup failed", "error", err)
				writeError(w, http.StatusInternalServerError, "authentication unavailable")
				return
			}

			if !tokens.Validate(token, user.Username) {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), &user)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and authenticated
// requests lacking the role with 403. Role names match case-sensitively.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := PrincipalFromContext(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !user.HasRole(role) {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
