package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nuco.app/chatops/internal/http/handler"
	"nuco.app/chatops/internal/http/handler/webhook"
	"nuco.app/chatops/internal/http/middleware"
	"nuco.app/chatops/internal/presence"
	"nuco.app/chatops/internal/service"
)

type RouterConfig struct {
	AdminAPIKey       string
	InstallSuccessURL string
}

// Dependencies are the long-lived components the routes dispatch to.
type Dependencies struct {
	Services *service.Services
	Presence *presence.Registry
	Slack    *webhook.SlackHandler
}

func SetupRoutes(router *gin.Engine, deps Dependencies, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	WebhookRouter(router.Group("/webhooks"), deps.Slack)

	integrationHandler := handler.NewIntegrationHandler(deps.Services.Installations(), cfg.InstallSuccessURL)
	router.GET("/oauth/slack/callback", integrationHandler.OAuthCallback)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireAdminAPIKey(cfg.AdminAPIKey))
	{
		IntegrationRouter(v1.Group("/integrations"), IntegrationHandlers{
			Integrations: integrationHandler,
			Analytics:    handler.NewAnalyticsHandler(deps.Services.Analytics()),
			Presence:     handler.NewPresenceHandler(deps.Presence),
			Notify:       handler.NewNotifyHandler(deps.Services.Notifier(deps.Presence)),
		})
	}
}
