package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/presence"
)

// PresenceRegistry hands out the per-integration presence cache.
type PresenceRegistry interface {
	Cache(integrationID int64) *presence.Cache
}

type PresenceHandler struct {
	registry PresenceRegistry
}

func NewPresenceHandler(registry PresenceRegistry) *PresenceHandler {
	return &PresenceHandler{registry: registry}
}

// List returns cached presence for all users, or only active ones with
// ?active=true. ?refresh=true repopulates the cache first.
func (h *PresenceHandler) List(c *gin.Context) {
	h.list(c, c.Query("active") == "true")
}

// Active is List restricted to active users.
func (h *PresenceHandler) Active(c *gin.Context) {
	h.list(c, true)
}

func (h *PresenceHandler) list(c *gin.Context, activeOnly bool) {
	id, ok := integrationID(c)
	if !ok {
		return
	}
	cache := h.registry.Cache(id)

	if c.Query("refresh") == "true" {
		if err := cache.Refresh(c.Request.Context()); err != nil {
			respondError(c, err, "failed to refresh presence")
			return
		}
	}

	users := cache.AllUsers()
	if activeOnly {
		users = cache.ActiveUsers()
	}
	if users == nil {
		users = []model.PresenceRecord{}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })

	c.JSON(http.StatusOK, gin.H{"users": users, "tracking": cache.Tracking()})
}

type userPresenceResponse struct {
	*model.PresenceRecord
	GoodTimeToNotify bool `json:"good_time_to_notify"`
}

func (h *PresenceHandler) User(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}
	cache := h.registry.Cache(id)
	userID := c.Param("user_id")

	rec := cache.GetUserPresence(c.Request.Context(), userID)
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "presence unavailable"})
		return
	}
	c.JSON(http.StatusOK, userPresenceResponse{
		PresenceRecord:   rec,
		GoodTimeToNotify: cache.IsGoodTimeToNotify(userID),
	})
}
