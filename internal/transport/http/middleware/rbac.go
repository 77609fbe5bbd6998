package middleware

import (
	"net/http"

	"github.com/baechuer/coursehub/internal/domain"
)

// RequireRole enforces the role hierarchy: admin >= user.
// Assumes Auth() middleware has already injected role into context.
func RequireRole(minRole string, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				// Auth not applied in front of this route
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			if !domain.IsValidRole(role) || !domain.IsValidRole(minRole) {
				writeErr(w, r, domain.ErrForbidden())
				return
			}

			if domain.RoleRank(role) < domain.RoleRank(minRole) {
				writeErr(w, r, domain.ErrInsufficientRole(minRole))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
