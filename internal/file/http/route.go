package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the stored-image endpoints. All of them need a session.
func RegisterRoutes(r gin.IRouter, h *Handler, authMiddleware gin.HandlerFunc) {
	files := r.Group("/files", authMiddleware)

	files.GET("/:id", h.ServeFile)
	files.HEAD("/:id", h.ServeFile)
	files.GET("/:id/thumbnail", h.ServeThumbnail)
}
