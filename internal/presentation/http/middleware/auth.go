package middleware

import (
	"net/http"
	"strings"

	"github.com/StoryHiveHQ/storyhive-go/internal/application/services"
	"github.com/StoryHiveHQ/storyhive-go/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

// RequireAuth validates the bearer session token and stores the
// authenticated member on the request context. Requests without a valid
// token are rejected.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := authenticate(c, authService)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(currentUserKey, u)
		c.Next()
	}
}

// OptionalAuth resolves the bearer token when present but lets anonymous
// requests through. Used on endpoints that behave differently for members.
func OptionalAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := authenticate(c, authService); ok {
			c.Set(currentUserKey, u)
		}
		c.Next()
	}
}

// GetCurrentUser returns the authenticated member stored by RequireAuth or
// OptionalAuth.
func GetCurrentUser(c *gin.Context) (*user.User, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	u, ok := val.(*user.User)
	return u, ok
}

func authenticate(c *gin.Context, authService *services.AuthService) (*user.User, bool) {
	authHeader := c.GetHeader("Authorization")
	token := ""
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	} else if cookie, err := c.Cookie("storyhive_session"); err == nil {
		token = cookie
	}
	if token == "" {
		return nil, false
	}

	u, err := authService.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	return u, true
}
