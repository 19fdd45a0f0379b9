package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *CaseHandler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/cases")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)    // List cases
		group.GET("/:id", h.Get) // Get case details
	}
}
