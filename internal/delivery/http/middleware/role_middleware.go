package middleware

import (
	"net/http"

	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/pkg/response"

	"github.com/samber/lo"
)

// RequireRole checks the role claim set by AuthMiddleware
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			if !lo.Contains(allowedRoles, role) {
				response.Forbidden(w, "Role "+role+" cannot perform this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

// RequireFrontDesk lets receptionists and admins run the queue
func RequireFrontDesk(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin, entity.RoleReceptionist)(next)
}

// RequireStaff admits every clinic role
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin, entity.RoleReceptionist, entity.RoleDoctor)(next)
}
