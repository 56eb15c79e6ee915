package store

import (
	"context"
	"errors"
	"time"

	"nuco.app/chatops/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// IntegrationStore defines the contract for integration data access
type IntegrationStore interface {
	GetByID(ctx context.Context, id int64) (*model.Integration, error)
	GetByTeam(ctx context.Context, provider model.Provider, teamID string) (*model.Integration, error)
	// Upsert inserts the integration or re-enables the existing row for the
	// same (provider, team), updating integration in place.
	Upsert(ctx context.Context, integration *model.Integration) error
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	ListEnabled(ctx context.Context, provider model.Provider) ([]model.Integration, error)
}

// IntegrationCredentialStore defines the contract for credential data access
type IntegrationCredentialStore interface {
	GetPrimaryByIntegration(ctx context.Context, integrationID int64) (*model.IntegrationCredential, error)
	Create(ctx context.Context, cred *model.IntegrationCredential) error
	UpdateTokens(ctx context.Context, id int64, accessToken string, refreshToken *string, expiresAt *time.Time) error
	RevokeAllByIntegration(ctx context.Context, integrationID int64) error
}

// AnalyticsStore persists events and the rolling activity counters.
type AnalyticsStore interface {
	// EnsureEventType creates the type if no row with the same name exists and
	// then loads the stored row into et.
	EnsureEventType(ctx context.Context, et *model.EventType) error
	CreateEvent(ctx context.Context, event *model.Event) error
	IncrementUserActivity(ctx context.Context, id, integrationID int64, userID string, at time.Time, delta model.ActivityDelta) error
	// RegisterChannelMember reports whether the user was seen in the channel
	// for the first time.
	RegisterChannelMember(ctx context.Context, integrationID int64, channelID, userID string) (bool, error)
	IncrementChannelActivity(ctx context.Context, id, integrationID int64, channelID string, delta model.ActivityDelta, newMember bool) error
	CreateAIPerformanceSample(ctx context.Context, sample *model.AIPerformanceSample) error

	UsageSummary(ctx context.Context, integrationID int64, since *time.Time, until time.Time) (*model.UsageSummary, error)
	EventCountsByType(ctx context.Context, integrationID int64, since *time.Time, until time.Time) (map[string]int64, error)
	TopUsers(ctx context.Context, integrationID int64, limit int32) ([]model.UserActivity, error)
	TopChannels(ctx context.Context, integrationID int64, limit int32) ([]model.ChannelActivity, error)
	AIPerformanceMetrics(ctx context.Context, integrationID int64, since *time.Time, until time.Time) (*model.AIPerformanceMetrics, error)
}
