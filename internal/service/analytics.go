package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nuco.app/chatops/common/id"
	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/store"
)

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
)

// Reporting windows accepted by the query operations. PeriodAll is unbounded.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
	PeriodAll   = "all"
)

var periodWindows = map[string]time.Duration{
	PeriodDay:   24 * time.Hour,
	PeriodWeek:  7 * 24 * time.Hour,
	PeriodMonth: 30 * 24 * time.Hour,
	PeriodYear:  365 * 24 * time.Hour,
}

type TrackEventParams struct {
	IntegrationID     int64
	EventName         string
	UserID            *int64
	OrganizationID    *int64
	ExternalUserID    string
	ExternalChannelID string
	ExternalTeamID    string
	Metadata          map[string]any
}

type AnalyticsService interface {
	// TrackEvent records an event and updates the user and channel counters
	// in a single transaction.
	TrackEvent(ctx context.Context, params TrackEventParams) error
	TrackAIPerformance(ctx context.Context, sample *model.AIPerformanceSample) error

	UsageSummary(ctx context.Context, integrationID int64, period string) (*model.UsageSummary, error)
	TopActiveUsers(ctx context.Context, integrationID int64, limit int) ([]model.UserActivity, error)
	TopActiveChannels(ctx context.Context, integrationID int64, limit int) ([]model.ChannelActivity, error)
	EventCountsByType(ctx context.Context, integrationID int64, period string) (map[string]int64, error)
	AIPerformanceMetrics(ctx context.Context, integrationID int64, period string) (*model.AIPerformanceMetrics, error)
}

type analyticsService struct {
	txRunner  TxRunner
	analytics store.AnalyticsStore
	now       func() time.Time
}

func NewAnalyticsService(txRunner TxRunner, analytics store.AnalyticsStore) AnalyticsService {
	return &analyticsService{txRunner: txRunner, analytics: analytics, now: time.Now}
}

func (s *analyticsService) TrackEvent(ctx context.Context, params TrackEventParams) error {
	if params.EventName == "" {
		return fmt.Errorf("%w: event name is required", ErrValidation)
	}

	metadata := json.RawMessage(`{}`)
	if len(params.Metadata) > 0 {
		raw, err := json.Marshal(params.Metadata)
		if err != nil {
			return fmt.Errorf("%w: encoding metadata: %w", ErrValidation, err)
		}
		metadata = raw
	}

	now := s.now()
	delta := model.DeltaForEvent(params.EventName)

	return s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		analytics := stores.Analytics()

		et := &model.EventType{
			ID:       id.New(),
			Name:     params.EventName,
			Category: model.CategoryForEvent(params.EventName),
		}
		if err := analytics.EnsureEventType(ctx, et); err != nil {
			return fmt.Errorf("ensuring event type %s: %w", params.EventName, err)
		}

		event := &model.Event{
			ID:                id.New(),
			EventTypeID:       et.ID,
			IntegrationID:     params.IntegrationID,
			UserID:            params.UserID,
			OrganizationID:    params.OrganizationID,
			ExternalUserID:    optional(params.ExternalUserID),
			ExternalChannelID: optional(params.ExternalChannelID),
			ExternalTeamID:    optional(params.ExternalTeamID),
			Metadata:          metadata,
			CreatedAt:         now,
		}
		if err := analytics.CreateEvent(ctx, event); err != nil {
			return fmt.Errorf("creating event: %w", err)
		}

		if params.ExternalUserID != "" {
			if err := analytics.IncrementUserActivity(ctx, id.New(), params.IntegrationID, params.ExternalUserID, now, delta); err != nil {
				return fmt.Errorf("updating user activity: %w", err)
			}
		}

		if params.ExternalChannelID != "" {
			newMember := false
			if params.ExternalUserID != "" {
				var err error
				newMember, err = analytics.RegisterChannelMember(ctx, params.IntegrationID, params.ExternalChannelID, params.ExternalUserID)
				if err != nil {
					return fmt.Errorf("registering channel member: %w", err)
				}
			}
			if err := analytics.IncrementChannelActivity(ctx, id.New(), params.IntegrationID, params.ExternalChannelID, delta, newMember); err != nil {
				return fmt.Errorf("updating channel activity: %w", err)
			}
		}

		return nil
	})
}

func (s *analyticsService) TrackAIPerformance(ctx context.Context, sample *model.AIPerformanceSample) error {
	if sample.ID == 0 {
		sample.ID = id.New()
	}
	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = s.now()
	}
	if err := s.analytics.CreateAIPerformanceSample(ctx, sample); err != nil {
		return fmt.Errorf("creating ai performance sample: %w", err)
	}
	return nil
}

func (s *analyticsService) UsageSummary(ctx context.Context, integrationID int64, period string) (*model.UsageSummary, error) {
	since, until, err := s.window(period)
	if err != nil {
		return nil, err
	}
	summary, err := s.analytics.UsageSummary(ctx, integrationID, since, until)
	if err != nil {
		return nil, fmt.Errorf("querying usage summary: %w", err)
	}
	summary.Period = period
	return summary, nil
}

func (s *analyticsService) TopActiveUsers(ctx context.Context, integrationID int64, limit int) ([]model.UserActivity, error) {
	users, err := s.analytics.TopUsers(ctx, integrationID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying top users: %w", err)
	}
	return users, nil
}

func (s *analyticsService) TopActiveChannels(ctx context.Context, integrationID int64, limit int) ([]model.ChannelActivity, error) {
	channels, err := s.analytics.TopChannels(ctx, integrationID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying top channels: %w", err)
	}
	return channels, nil
}

func (s *analyticsService) EventCountsByType(ctx context.Context, integrationID int64, period string) (map[string]int64, error) {
	since, until, err := s.window(period)
	if err != nil {
		return nil, err
	}
	counts, err := s.analytics.EventCountsByType(ctx, integrationID, since, until)
	if err != nil {
		return nil, fmt.Errorf("querying event counts: %w", err)
	}
	return counts, nil
}

func (s *analyticsService) AIPerformanceMetrics(ctx context.Context, integrationID int64, period string) (*model.AIPerformanceMetrics, error) {
	since, until, err := s.window(period)
	if err != nil {
		return nil, err
	}
	metrics, err := s.analytics.AIPerformanceMetrics(ctx, integrationID, since, until)
	if err != nil {
		return nil, fmt.Errorf("querying ai performance: %w", err)
	}
	metrics.Period = period
	return metrics, nil
}

// window returns the [since, until] bounds of a period. since is nil for PeriodAll.
func (s *analyticsService) window(period string) (*time.Time, time.Time, error) {
	until := s.now()
	if period == PeriodAll {
		return nil, until, nil
	}
	d, ok := periodWindows[period]
	if !ok {
		return nil, time.Time{}, fmt.Errorf("%w: unknown period %q", ErrValidation, period)
	}
	since := until.Add(-d)
	return &since, until, nil
}

func clampLimit(limit int) int32 {
	switch {
	case limit <= 0:
		return DefaultTopLimit
	case limit > MaxTopLimit:
		return MaxTopLimit
	default:
		return int32(limit)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
