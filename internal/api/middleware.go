package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/user"
)

// UserLookup is the part of user.Service the role middleware needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// loadRole aborts the request unless the token belongs to an active user,
// then records the admin flag on the context.
func loadRole(c *gin.Context, users UserLookup) bool {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	u, err := users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return false
	}

	if !u.IsActive {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user is inactive"})
		return false
	}

	auth.SetIsAdmin(c, u.IsAdmin)
	return true
}

// LoadRole resolves the authenticated user's role for handlers that behave
// differently for guests and administrators.
// It MUST be used after auth.AuthRequired middleware.
func LoadRole(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadRole(c, users) {
			return
		}
		c.Next()
	}
}

// RequireAdmin ensures the authenticated user is a hotel administrator.
// It MUST be used after auth.AuthRequired middleware.
func RequireAdmin(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadRole(c, users) {
			return
		}

		if !auth.IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin access required"})
			return
		}

		c.Next()
	}
}
