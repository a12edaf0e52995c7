package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers room routes. Browsing and availability are public.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/rooms")
	{
		group.GET("", h.List)
		group.GET("/available", h.ListAvailable)
		group.GET("/:id", h.Get)
		group.GET("/:id/availability", h.Availability)
	}

	adminGroup := group.Group("")
	adminGroup.Use(authMiddleware, adminMiddleware)
	{
		adminGroup.POST("", h.Create)
		adminGroup.PATCH("/:id", h.Update)
		adminGroup.DELETE("/:id", h.Delete)
		adminGroup.PUT("/:id/maintenance", h.SetMaintenance)
	}
}
