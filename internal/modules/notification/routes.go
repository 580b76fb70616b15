package notification

import (
	"github.com/gin-gonic/gin"

	"trafficportal/internal/middleware"
)

// RegisterRoutes registers all notification routes on an authenticated group.
// Creation is limited to the producer roles (officers and admins); every
// other endpoint acts only on the caller's own records.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	g := protected.Group("/notifications")
	{
		g.GET("", handler.GetNotifications)
		g.GET("/unread-count", handler.GetUnreadCount)
		g.GET("/count", handler.GetCounts)
		g.PATCH("/:id/read", handler.MarkAsRead)
		g.PATCH("/read-all", handler.MarkAllAsRead)
		g.POST("", middleware.RequireAnyRole("officer", "admin"), handler.CreateNotification)
	}
}
