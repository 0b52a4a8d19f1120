package routes

import (
	"github.com/gin-gonic/gin"

	"guest-feedback-server/middleware"
)

// Register wires all API routes onto the router
func Register(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		feedback := api.Group("/feedback")
		{
			// Public widget endpoints (no authentication)
			feedback.GET("", GetPublicFeedback)
			feedback.GET("/", GetPublicFeedback)
			feedback.POST("/create", CreateFeedback)

			// Moderator endpoints (bearer token required)
			admin := feedback.Group("/admin")
			admin.Use(middleware.AuthMiddleware())
			{
				admin.GET("", GetAdminFeedback)
				admin.PATCH("/:id/approve", ApproveFeedback)
				admin.GET("/settings/moderation", GetModerationSettings)
				admin.PATCH("/settings/moderation", UpdateModerationSettings)
			}

			del := feedback.Group("/delete")
			del.Use(middleware.AuthMiddleware())
			del.DELETE("/:id", DeleteFeedback)
		}

		// Admin authentication (no token required) - with strict rate limiting
		adminAuth := api.Group("/admin")
		adminAuth.Use(middleware.AuthRateLimitMiddleware())
		{
			adminAuth.POST("/login", AdminLogin)
			adminAuth.POST("/bootstrap", BootstrapAdmin)
		}
	}
}
