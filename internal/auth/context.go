package auth

import "github.com/gin-gonic/gin"

// Context keys set by AuthRequired and the role middleware.
const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
	isAdminKey   = "isAdmin"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	if v, ok := c.Get(userEmailKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetIsAdmin records whether the authenticated user is a hotel administrator.
func SetIsAdmin(c *gin.Context, isAdmin bool) {
	c.Set(isAdminKey, isAdmin)
}

// IsAdmin reports whether the role middleware marked the user as an administrator.
// It is false when no role was loaded.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(isAdminKey)
}
