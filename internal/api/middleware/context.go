// Package middleware provides HTTP middleware for the devhealth licensing
// API.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fullchaos-studio/devhealth/internal/models"
)

// ContextKey is the type for Gin context keys set by this package.
type ContextKey string

// UserContextKey is the context key for the authenticated user.
const UserContextKey ContextKey = "user"

// SetUser stores the authenticated user in the Gin context. The
// surrounding platform's authentication middleware calls this.
func SetUser(c *gin.Context, user *models.User) {
	c.Set(string(UserContextKey), user)
}

// GetUser retrieves the authenticated user from the Gin context.
// Returns nil if not set.
func GetUser(c *gin.Context) *models.User {
	v, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
