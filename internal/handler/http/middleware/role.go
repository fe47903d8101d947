package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/internflow/internflow-backend-go/internal/domain/user"
	"github.com/internflow/internflow-backend-go/internal/handler/http/response"
)

// RequireStaff requires supervisor or hr_admin role
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrStaffAccessRequired)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.HandleError(w, user.ErrStaffAccessRequired)
			return
		}

		if !user.Role(roleStr).IsStaff() {
			response.HandleError(w, user.ErrStaffAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
