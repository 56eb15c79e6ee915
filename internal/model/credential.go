package model

import "time"

// Credential is the in-memory token state held by a token manager.
// A zero ExpiresAt means the access token does not expire.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	TeamID       string
	BotUserID    string
	WebhookURL   string
	Scopes       []string
}

func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

func (c Credential) CanRefresh() bool {
	return c.RefreshToken != ""
}

// CredentialFromStored builds the in-memory credential for an integration row.
func CredentialFromStored(integration *Integration, cred *IntegrationCredential) Credential {
	c := Credential{
		AccessToken: cred.AccessToken,
		TeamID:      integration.ExternalTeamID,
		Scopes:      cred.Scopes,
	}
	if cred.RefreshToken != nil {
		c.RefreshToken = *cred.RefreshToken
	}
	if cred.TokenExpiresAt != nil {
		c.ExpiresAt = *cred.TokenExpiresAt
	}
	if cred.BotUserID != nil {
		c.BotUserID = *cred.BotUserID
	}
	if cred.WebhookURL != nil {
		c.WebhookURL = *cred.WebhookURL
	}
	return c
}
