package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"backend/internal/auth"
	"backend/internal/service"
)

// RequireAdminAccess gates the admin API: requests under /api/v1/admin must
// carry a valid session whose profile role is admin. The role is re-read from
// the database so a demotion takes effect before the token expires.
func RequireAdminAccess(tokenManager *auth.TokenManager, authz *service.AuthzService) func(http.Handler) http.Handler {
	requireAuth := RequireAuth(tokenManager)
	requireAdmin := requireAdminRole(authz)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/v1/admin") {
				next.ServeHTTP(w, r)
				return
			}
			requireAuth(requireAdmin(next)).ServeHTTP(w, r)
		})
	}
}

func requireAdminRole(authz *service.AuthzService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authz == nil {
				writeMiddlewareError(w, service.NewError(http.StatusServiceUnavailable, "service_unavailable", "authz not configured"))
				return
			}
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				writeUnauthorized(w)
				return
			}
			if err := authz.RequireAdmin(r.Context(), user.ID); err != nil {
				writeMiddlewareError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeMiddlewareError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	var se *service.Error
	if errors.As(err, &se) {
		w.WriteHeader(se.Status)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": se.Code, "message": se.Message})
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": "internal", "message": "internal error"})
}
