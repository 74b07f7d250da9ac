package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fullchaos-studio/devhealth/internal/auth"
)

// RequirePermission returns a Gin middleware that blocks requests from
// users lacking the given permission.
func RequirePermission(rbac *auth.RBAC, perm auth.Permission, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().
		Str("component", "permission_gate").
		Str("permission", string(perm)).
		Logger()

	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		if !rbac.HasPermission(user, perm) {
			log.Debug().
				Str("user_id", user.ID.String()).
				Str("role", string(user.Role)).
				Msg("permission denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "permission_denied",
				"permission": string(perm),
			})
			return
		}

		c.Next()
	}
}

// RequireAnyPermission is RequirePermission over a set: the request
// proceeds when the user holds at least one of the permissions.
func RequireAnyPermission(rbac *auth.RBAC, logger zerolog.Logger, perms ...auth.Permission) gin.HandlerFunc {
	log := logger.With().Str("component", "permission_gate").Logger()

	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		if !rbac.HasAnyPermission(user, perms...) {
			log.Debug().
				Str("user_id", user.ID.String()).
				Str("role", string(user.Role)).
				Msg("permission denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission_denied"})
			return
		}

		c.Next()
	}
}
