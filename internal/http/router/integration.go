package router

import (
	"github.com/gin-gonic/gin"

	"nuco.app/chatops/internal/http/handler"
)

type IntegrationHandlers struct {
	Integrations *handler.IntegrationHandler
	Analytics    *handler.AnalyticsHandler
	Presence     *handler.PresenceHandler
	Notify       *handler.NotifyHandler
}

// IntegrationRouter sets up the admin routes under /api/v1/integrations.
func IntegrationRouter(rg *gin.RouterGroup, h IntegrationHandlers) {
	rg.GET("", h.Integrations.List)
	rg.POST("", h.Integrations.Install)
	rg.DELETE("/:id", h.Integrations.Revoke)
	rg.GET("/:id/channels", h.Integrations.Channels)

	analytics := rg.Group("/:id/analytics")
	{
		analytics.GET("/summary", h.Analytics.Summary)
		analytics.GET("/top-users", h.Analytics.TopUsers)
		analytics.GET("/top-channels", h.Analytics.TopChannels)
		analytics.GET("/event-counts", h.Analytics.EventCounts)
		analytics.GET("/ai-performance", h.Analytics.AIPerformance)
	}

	rg.GET("/:id/presence", h.Presence.List)
	rg.GET("/:id/presence/active", h.Presence.Active)
	rg.GET("/:id/presence/:user_id", h.Presence.User)

	rg.POST("/:id/notify", h.Notify.Notify)
}
