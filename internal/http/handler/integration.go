package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/platform"
	"nuco.app/chatops/internal/service"
)

type IntegrationHandler struct {
	installations service.InstallationService
	// successURL is where the OAuth callback redirects after installing.
	// Empty answers with JSON instead.
	successURL string
}

func NewIntegrationHandler(installations service.InstallationService, successURL string) *IntegrationHandler {
	return &IntegrationHandler{installations: installations, successURL: successURL}
}

type integrationResponse struct {
	ID             int64  `json:"id"`
	OrganizationID *int64 `json:"organization_id,omitempty"`
	Provider       string `json:"provider"`
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name,omitempty"`
	Enabled        bool   `json:"enabled"`
	WebhookPath    string `json:"webhook_path"`
}

func toIntegrationResponse(i model.Integration) integrationResponse {
	resp := integrationResponse{
		ID:             i.ID,
		OrganizationID: i.OrganizationID,
		Provider:       string(i.Provider),
		TeamID:         i.ExternalTeamID,
		Enabled:        i.IsEnabled,
		WebhookPath:    "/webhooks/slack/" + strconv.FormatInt(i.ID, 10),
	}
	if i.TeamName != nil {
		resp.TeamName = *i.TeamName
	}
	return resp
}

// OAuthCallback completes an app installation from the platform redirect.
func (h *IntegrationHandler) OAuthCallback(c *gin.Context) {
	ctx := c.Request.Context()

	if e := c.Query("error"); e != "" {
		slog.WarnContext(ctx, "installation declined", "reason", e)
		c.JSON(http.StatusBadRequest, gin.H{"error": "installation was not approved"})
		return
	}

	integration, err := h.installations.Install(ctx, c.Query("code"), nil)
	if err != nil {
		respondError(c, err, "failed to install integration")
		return
	}

	if h.successURL != "" {
		c.Redirect(http.StatusFound, h.successURL+"?integration_id="+strconv.FormatInt(integration.ID, 10))
		return
	}
	c.JSON(http.StatusCreated, toIntegrationResponse(*integration))
}

type installRequest struct {
	Code           string `json:"code" binding:"required"`
	OrganizationID *int64 `json:"organization_id"`
}

// Install exchanges a code obtained out of band (admin only).
func (h *IntegrationHandler) Install(c *gin.Context) {
	var req installRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: code is required"})
		return
	}

	integration, err := h.installations.Install(c.Request.Context(), req.Code, req.OrganizationID)
	if err != nil {
		respondError(c, err, "failed to install integration")
		return
	}
	c.JSON(http.StatusCreated, toIntegrationResponse(*integration))
}

func (h *IntegrationHandler) List(c *gin.Context) {
	integrations, err := h.installations.ListEnabled(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to list integrations")
		return
	}

	resp := make([]integrationResponse, len(integrations))
	for i, integration := range integrations {
		resp[i] = toIntegrationResponse(integration)
	}
	c.JSON(http.StatusOK, gin.H{"integrations": resp})
}

func (h *IntegrationHandler) Revoke(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := integrationID(c)
	if !ok {
		return
	}

	if err := h.installations.Revoke(ctx, id); err != nil {
		respondError(c, err, "failed to revoke integration")
		return
	}

	slog.InfoContext(ctx, "integration revoked via admin API", "integration_id", id)
	c.JSON(http.StatusOK, gin.H{"revoked": true})
}

func (h *IntegrationHandler) Channels(c *gin.Context) {
	id, ok := integrationID(c)
	if !ok {
		return
	}

	channels, err := h.installations.Channels(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to list channels")
		return
	}
	if channels == nil {
		channels = []platform.Conversation{}
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}
