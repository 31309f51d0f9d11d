package middleware

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	userIDKey   = "user_id"
	userRoleKey = "user_role"
)

// Identity copies the caller identity set by the upstream authenticating proxy into the context.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader(HeaderUserID)); uid != "" {
			c.Set(userIDKey, uid)
		}
		role := domain.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole))))
		if role != domain.RoleAdmin {
			role = domain.RoleEmployee
		}
		c.Set(userRoleKey, role)
		c.Next()
	}
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + HeaderUserID + " header"})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func Role(c *gin.Context) domain.Role {
	role, _ := c.Get(userRoleKey)
	r, _ := role.(domain.Role)
	return r
}
