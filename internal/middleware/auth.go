package middleware

import (
	"net/http"

	"go-community/internal/identity"
)

// RequireLogin rejects anonymous requests with 401. It must run inside the
// login ticket interceptor.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.UserFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", "")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireUserType admits only users whose type is one of allowed.
func RequireUserType(allowed ...int) func(http.Handler) http.Handler {
	typeSet := map[int]struct{}{}
	for _, t := range allowed {
		typeSet[t] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := identity.UserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Login required", "")
				return
			}

			if _, exists := typeSet[user.Type]; !exists {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
