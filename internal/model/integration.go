package model

import "time"

// Provider identifies the chat platform behind an integration.
type Provider string

const (
	ProviderSlack Provider = "slack"
)

type Integration struct {
	ID             int64     `json:"id"`
	OrganizationID *int64    `json:"organization_id,omitempty"`
	Provider       Provider  `json:"provider"`
	ExternalTeamID string    `json:"external_team_id"`
	TeamName       *string   `json:"team_name,omitempty"`
	IsEnabled      bool      `json:"is_enabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
