package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes. Every route requires an authenticated, active user.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, roleMiddleware, rateLimit gin.HandlerFunc) {
	group := g.Group("/bookings")
	group.Use(authMiddleware, roleMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.GET("/code/:code", h.GetByCode)
	}

	mutations := group.Group("")
	mutations.Use(rateLimit)
	{
		mutations.POST("", h.Create)
		mutations.POST("/:id/check-in", h.CheckIn)
		mutations.POST("/:id/check-out", h.CheckOut)
		mutations.POST("/:id/cancel", h.Cancel)
	}
}
