package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, roleMiddleware gin.HandlerFunc) {
	group := g.Group("/notifications")
	group.Use(authMiddleware, roleMiddleware)
	{
		group.GET("", h.List)
		group.GET("/unread-count", h.UnreadCount)
		group.POST("/read-all", h.MarkAllRead)
		group.POST("/:id/read", h.MarkRead)
		group.DELETE("/:id", h.Delete)
	}
}
