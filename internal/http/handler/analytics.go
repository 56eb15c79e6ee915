package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nuco.app/chatops/internal/service"
)

const defaultPeriod = service.PeriodWeek

type AnalyticsHandler struct {
	analytics service.AnalyticsService
}

func NewAnalyticsHandler(analytics service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary returns aggregate usage for ?period= (default week).
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}

	summary, err := h.analytics.UsageSummary(c.Request.Context(), id, period(c))
	if err != nil {
		respondError(c, err, "failed to load usage summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) TopUsers(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}

	users, err := h.analytics.TopActiveUsers(c.Request.Context(), id, limit(c))
	if err != nil {
		respondError(c, err, "failed to load top users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AnalyticsHandler) TopChannels(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}

	channels, err := h.analytics.TopActiveChannels(c.Request.Context(), id, limit(c))
	if err != nil {
		respondError(c, err, "failed to load top channels")
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *AnalyticsHandler) EventCounts(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}

	p := period(c)
	counts, err := h.analytics.EventCountsByType(c.Request.Context(), id, p)
	if err != nil {
		respondError(c, err, "failed to load event counts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": p, "counts": counts})
}

func (h *AnalyticsHandler) AIPerformance(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}

	metrics, err := h.analytics.AIPerformanceMetrics(c.Request.Context(), id, period(c))
	if err != nil {
		respondError(c, err, "failed to load ai performance")
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func period(c *gin.Context) string {
	return c.DefaultQuery("period", defaultPeriod)
}

// limit parses ?limit=; invalid values fall back to the service default.
func limit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}
