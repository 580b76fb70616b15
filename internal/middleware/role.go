package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trafficportal/internal/pkg/response"
)

// RequireAnyRole ensures the authenticated user holds one of the given
// roles. Used to gate producer endpoints to officers and admins.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}
