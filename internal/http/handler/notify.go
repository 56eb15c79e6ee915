package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"nuco.app/chatops/internal/service"
)

type NotifyHandler struct {
	notifier service.Notifier
}

func NewNotifyHandler(notifier service.Notifier) *NotifyHandler {
	return &NotifyHandler{notifier: notifier}
}

type notifyRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
	Force  bool   `json:"force"`
}

// Notify sends a direct message, unless the user is away and force is unset.
func (h *NotifyHandler) Notify(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := integrationID(c)
	if !ok {
		return
	}

	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: user_id and text are required"})
		return
	}

	res, err := h.notifier.Notify(ctx, service.NotifyParams{
		IntegrationID: id,
		UserID:        req.UserID,
		Text:          req.Text,
		Force:         req.Force,
	})
	if err != nil {
		respondError(c, err, "failed to send notification")
		return
	}

	slog.InfoContext(ctx, "notification processed via admin API",
		"integration_id", id,
		"external_user_id", req.UserID,
		"delivered", res.Delivered,
	)

	status := http.StatusOK
	if !res.Delivered {
		status = http.StatusAccepted
	}
	c.JSON(status, res)
}
