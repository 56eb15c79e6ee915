package router

import (
	"github.com/gin-gonic/gin"

	"nuco.app/chatops/internal/http/handler/webhook"
)

// WebhookRouter mounts platform callbacks. Requests are authenticated by
// signature, not by admin key.
func WebhookRouter(rg *gin.RouterGroup, slack *webhook.SlackHandler) {
	rg.POST("/slack/:integration_id", slack.HandleEvent)
}
