package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/access"
)

const sessionKey = "session"

// Authenticate turns the bearer token into an access.Session. Requests
// without a token continue as guests; a bad token is rejected.
func (ctrl *Controller) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(sessionKey, access.Guest())
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be a Bearer token"})
			return
		}
		id, err := ctrl.Tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		c.Set(sessionKey, ctrl.Roles.Resolve(ctx, &id))
		c.Next()
	}
}

func session(c *gin.Context) access.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(access.Session); ok {
			return s
		}
	}
	return access.Guest()
}

// RequireIdentity admits any identity, anonymous ones included.
func RequireIdentity(c *gin.Context) {
	if session(c).Identity == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sign in to continue"})
		return
	}
	c.Next()
}

// RequireAdmin admits resolved admins only.
func (ctrl *Controller) RequireAdmin(c *gin.Context) {
	s := session(c)
	if s.Identity == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sign in to continue"})
		return
	}
	if !s.IsAdmin() {
		ctrl.logf("PERMISSION DENIED %s %s for %s", c.Request.Method, c.Request.URL.Path, s.UID())
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}
	c.Next()
}
