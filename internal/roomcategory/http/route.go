package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers room category routes. Browsing is public.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/room-categories")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.GET("/:id/image", h.Image)
	}

	// === Administration Routes ===
	adminGroup := group.Group("")
	adminGroup.Use(authMiddleware, adminMiddleware)
	{
		adminGroup.POST("", h.Create)
		adminGroup.PATCH("/:id", h.Update)
		adminGroup.DELETE("/:id", h.Delete)
		adminGroup.POST("/:id/toggle-active", h.ToggleActive)
		adminGroup.PUT("/:id/image", h.UploadImage)
	}
}
