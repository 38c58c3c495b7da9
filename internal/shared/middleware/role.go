package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin allows only admin accounts past. Must run after
// AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return requireRole("admin")
}

// RequireEditor allows only editor accounts past. Must run after
// AuthMiddleware.
func RequireEditor() gin.HandlerFunc {
	return requireRole("editor")
}

func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actual, ok := c.Get("userRole")
		if !ok || actual != role {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Access denied: " + role + " role required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
