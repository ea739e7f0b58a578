package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"asset-server/internal/auth"
	"asset-server/internal/pkg/response"
)

const (
	HeaderAPIKey   = "X-API-Key"
	ContextRoleKey = "role"
)

// RequireRole authenticates the X-API-Key header against the keystore and
// enforces a minimum role. Unauthenticated requests get 401, authenticated
// requests below the minimum role get 403.
func RequireRole(keys *auth.Keystore, min auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderAPIKey)
		role := keys.Lookup(c.Request.Context(), apiKey)
		if role == auth.RoleNone {
			response.Error(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !role.Allows(min) {
			response.Error(c, http.StatusForbidden, "Forbidden")
			return
		}
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// Role returns the authenticated role, RoleNone on public routes.
func Role(c *gin.Context) auth.Role {
	value, ok := c.Get(ContextRoleKey)
	if !ok {
		return auth.RoleNone
	}
	role, _ := value.(auth.Role)
	return role
}
