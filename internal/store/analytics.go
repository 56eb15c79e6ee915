package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"nuco.app/chatops/core/db/sqlc"
	"nuco.app/chatops/internal/model"
)

type analyticsStore struct {
	queries *sqlc.Queries
}

func newAnalyticsStore(queries *sqlc.Queries) AnalyticsStore {
	return &analyticsStore{queries: queries}
}

func (s *analyticsStore) EnsureEventType(ctx context.Context, et *model.EventType) error {
	err := s.queries.InsertEventTypeIfAbsent(ctx, sqlc.InsertEventTypeIfAbsentParams{
		ID:          et.ID,
		Name:        et.Name,
		Category:    string(et.Category),
		Description: et.Description,
	})
	if err != nil {
		return err
	}

	// A concurrent writer may have won the insert; the stored row is canonical.
	row, err := s.queries.GetEventTypeByName(ctx, et.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	*et = model.EventType{
		ID:          row.ID,
		Name:        row.Name,
		Category:    model.EventCategory(row.Category),
		Description: row.Description,
		CreatedAt:   row.CreatedAt.Time,
	}
	return nil
}

func (s *analyticsStore) CreateEvent(ctx context.Context, event *model.Event) error {
	metadata := []byte(event.Metadata)
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	row, err := s.queries.CreateEvent(ctx, sqlc.CreateEventParams{
		ID:                event.ID,
		EventTypeID:       event.EventTypeID,
		IntegrationID:     event.IntegrationID,
		UserID:            event.UserID,
		OrganizationID:    event.OrganizationID,
		ExternalUserID:    event.ExternalUserID,
		ExternalChannelID: event.ExternalChannelID,
		ExternalTeamID:    event.ExternalTeamID,
		Metadata:          metadata,
		CreatedAt:         pgtype.Timestamptz{Time: event.CreatedAt, Valid: true},
	})
	if err != nil {
		return err
	}
	event.Metadata = json.RawMessage(row.Metadata)
	event.CreatedAt = row.CreatedAt.Time
	return nil
}

func (s *analyticsStore) IncrementUserActivity(ctx context.Context, id, integrationID int64, userID string, at time.Time, delta model.ActivityDelta) error {
	_, err := s.queries.UpsertUserActivity(ctx, sqlc.UpsertUserActivityParams{
		ID:                id,
		IntegrationID:     integrationID,
		ExternalUserID:    userID,
		LastActiveAt:      pgtype.Timestamptz{Time: at, Valid: true},
		CommandsUsed:      delta.Commands,
		MessagesReceived:  delta.MessagesReceived,
		MessagesSent:      delta.MessagesSent,
		ReactionsReceived: delta.ReactionsReceived,
	})
	return err
}

func (s *analyticsStore) RegisterChannelMember(ctx context.Context, integrationID int64, channelID, userID string) (bool, error) {
	n, err := s.queries.RegisterChannelMember(ctx, sqlc.RegisterChannelMemberParams{
		IntegrationID:     integrationID,
		ExternalChannelID: channelID,
		ExternalUserID:    userID,
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *analyticsStore) IncrementChannelActivity(ctx context.Context, id, integrationID int64, channelID string, delta model.ActivityDelta, newMember bool) error {
	var uniqueUsers int32
	if newMember {
		uniqueUsers = 1
	}
	_, err := s.queries.UpsertChannelActivity(ctx, sqlc.UpsertChannelActivityParams{
		ID:                id,
		IntegrationID:     integrationID,
		ExternalChannelID: channelID,
		CommandsUsed:      delta.Commands,
		MessagesReceived:  delta.MessagesReceived,
		MessagesSent:      delta.MessagesSent,
		UniqueUsers:       uniqueUsers,
	})
	return err
}

func (s *analyticsStore) CreateAIPerformanceSample(ctx context.Context, sample *model.AIPerformanceSample) error {
	row, err := s.queries.CreateAIPerformanceSample(ctx, sqlc.CreateAIPerformanceSampleParams{
		ID:                sample.ID,
		IntegrationID:     sample.IntegrationID,
		MessageID:         sample.MessageID,
		ExternalUserID:    sample.ExternalUserID,
		ExternalChannelID: sample.ExternalChannelID,
		PromptLength:      sample.PromptLength,
		ResponseLength:    sample.ResponseLength,
		ResponseTimeMs:    sample.ResponseTimeMs,
		Model:             sample.Model,
		FeedbackRating:    sample.FeedbackRating,
		FeedbackComment:   sample.FeedbackComment,
		CreatedAt:         pgtype.Timestamptz{Time: sample.CreatedAt, Valid: true},
	})
	if err != nil {
		return err
	}
	sample.CreatedAt = row.CreatedAt.Time
	return nil
}

func (s *analyticsStore) UsageSummary(ctx context.Context, integrationID int64, since *time.Time, until time.Time) (*model.UsageSummary, error) {
	row, err := s.queries.GetUsageSummary(ctx, sqlc.GetUsageSummaryParams{
		IntegrationID: integrationID,
		Since:         timeToPgTimestamptz(since),
		Until:         pgtype.Timestamptz{Time: until, Valid: true},
	})
	if err != nil {
		return nil, err
	}
	return &model.UsageSummary{
		TotalEvents:    row.TotalEvents,
		UniqueUsers:    row.UniqueUsers,
		UniqueChannels: row.UniqueChannels,
		CommandEvents:  row.CommandEvents,
		MessageEvents:  row.MessageEvents,
		AIEvents:       row.AiEvents,
	}, nil
}

func (s *analyticsStore) EventCountsByType(ctx context.Context, integrationID int64, since *time.Time, until time.Time) (map[string]int64, error) {
	rows, err := s.queries.CountEventsByType(ctx, sqlc.CountEventsByTypeParams{
		IntegrationID: integrationID,
		Since:         timeToPgTimestamptz(since),
		Until:         pgtype.Timestamptz{Time: until, Valid: true},
	})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Name] = row.EventCount
	}
	return counts, nil
}

func (s *analyticsStore) TopUsers(ctx context.Context, integrationID int64, limit int32) ([]model.UserActivity, error) {
	rows, err := s.queries.ListTopUserActivity(ctx, sqlc.ListTopUserActivityParams{
		IntegrationID: integrationID,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}
	result := make([]model.UserActivity, len(rows))
	for i, row := range rows {
		result[i] = model.UserActivity{
			ID:                row.ID,
			IntegrationID:     row.IntegrationID,
			ExternalUserID:    row.ExternalUserID,
			LastActiveAt:      row.LastActiveAt.Time,
			TotalInteractions: row.TotalInteractions,
			CommandsUsed:      row.CommandsUsed,
			MessagesReceived:  row.MessagesReceived,
			MessagesSent:      row.MessagesSent,
			ReactionsReceived: row.ReactionsReceived,
			UpdatedAt:         row.UpdatedAt.Time,
		}
	}
	return result, nil
}

func (s *analyticsStore) TopChannels(ctx context.Context, integrationID int64, limit int32) ([]model.ChannelActivity, error) {
	rows, err := s.queries.ListTopChannelActivity(ctx, sqlc.ListTopChannelActivityParams{
		IntegrationID: integrationID,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}
	result := make([]model.ChannelActivity, len(rows))
	for i, row := range rows {
		result[i] = model.ChannelActivity{
			ID:                row.ID,
			IntegrationID:     row.IntegrationID,
			ExternalChannelID: row.ExternalChannelID,
			TotalInteractions: row.TotalInteractions,
			CommandsUsed:      row.CommandsUsed,
			MessagesReceived:  row.MessagesReceived,
			MessagesSent:      row.MessagesSent,
			UniqueUsers:       row.UniqueUsers,
			UpdatedAt:         row.UpdatedAt.Time,
		}
	}
	return result, nil
}

func (s *analyticsStore) AIPerformanceMetrics(ctx context.Context, integrationID int64, since *time.Time, until time.Time) (*model.AIPerformanceMetrics, error) {
	row, err := s.queries.GetAIPerformanceMetrics(ctx, sqlc.GetAIPerformanceMetricsParams{
		IntegrationID: integrationID,
		Since:         timeToPgTimestamptz(since),
		Until:         pgtype.Timestamptz{Time: until, Valid: true},
	})
	if err != nil {
		return nil, err
	}
	return &model.AIPerformanceMetrics{
		AvgResponseTimeMs: row.AvgResponseTimeMs,
		AvgFeedbackRating: row.AvgFeedbackRating,
		SampleCount:       row.SampleCount,
	}, nil
}
