package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nuco.app/chatops/internal/service"
)

// integrationID reads the :id path parameter, answering 400 when it is not a
// valid identifier.
func integrationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid integration id"})
		return 0, false
	}
	return id, true
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error, msg string) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
	case errors.Is(err, service.ErrAuthentication):
		slog.WarnContext(ctx, msg, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "platform authentication failed"})
	default:
		slog.ErrorContext(ctx, msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
