package middleware

import (
	"crypto/rsa"
	"net/http"

	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// RequireRole must run after AuthMiddleware. It rejects callers whose role
// is not in the allowed set with 403.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[models.Role]bool, len(allowed))
	for _, r := range allowed {
		set[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing caller identity", nil,
				)
				return
			}
			if !set[actor.Role] {
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeForbidden, "Insufficient permissions", nil,
				)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminAuthMiddleware validates a JWT and ensures it carries the admin role.
func AdminAuthMiddleware(pub *rsa.PublicKey) func(http.Handler) http.Handler {
	auth := AuthMiddleware(pub)
	admin := RequireRole(models.RoleAdmin)
	return func(next http.Handler) http.Handler {
		return auth(admin(next))
	}
}
