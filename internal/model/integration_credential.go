package model

import "time"

type CredentialType string

const (
	CredentialTypeBot        CredentialType = "bot"
	CredentialTypeUserOAuth  CredentialType = "user_oauth" //nolint:gosec // enum constant, not a credential
	CredentialTypeAppInstall CredentialType = "app_installation"
)

// IntegrationCredential is the persisted token material for an integration.
type IntegrationCredential struct {
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	RefreshToken   *string        `json:"-"`
	TokenExpiresAt *time.Time     `json:"-"`
	RevokedAt      *time.Time     `json:"revoked_at,omitempty"`
	BotUserID      *string        `json:"bot_user_id,omitempty"`
	WebhookURL     *string        `json:"webhook_url,omitempty"`
	CredentialType CredentialType `json:"credential_type"`
	AccessToken    string         `json:"-"`
	Scopes         []string       `json:"scopes,omitempty"`
	ID             int64          `json:"id"`
	IntegrationID  int64          `json:"integration_id"`
	IsPrimary      bool           `json:"is_primary"`
}
