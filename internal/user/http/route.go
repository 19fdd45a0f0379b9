package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all user-related routes (including Auth).
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware gin.HandlerFunc) {
	// Public Routes
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
	}

	// Authenticated Routes
	meGroup := g.Group("/me")
	meGroup.Use(authMiddleware)
	{
		meGroup.GET("", h.Me)
		meGroup.PATCH("", h.UpdateMe)
		meGroup.GET("/theme", h.GetTheme)
		meGroup.PUT("/theme", h.PutTheme)
		meGroup.POST("/image", h.UploadMyImage)
	}

	usersGroup := g.Group("/users")
	usersGroup.Use(authMiddleware)
	{
		usersGroup.GET("", h.List)
		usersGroup.POST("", h.Create)
		usersGroup.GET("/:id", h.Get)
		usersGroup.PATCH("/:id", h.Update)
		usersGroup.DELETE("/:id", h.Delete)
		usersGroup.POST("/:id/activate", h.Activate)
		usersGroup.POST("/:id/deactivate", h.Deactivate)
		usersGroup.POST("/:id/image", h.UploadImage)
	}
}
