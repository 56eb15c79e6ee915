package model

import (
	"encoding/json"
	"strings"
	"time"
)

type EventCategory string

const (
	EventCategoryCommand  EventCategory = "command"
	EventCategoryMessage  EventCategory = "message"
	EventCategoryReaction EventCategory = "reaction"
	EventCategoryTemplate EventCategory = "template"
	EventCategoryAI       EventCategory = "ai"
	EventCategoryOther    EventCategory = "other"
)

// Well-known event names emitted by the webhook handlers.
const (
	EventMessageReceived   = "message_received"
	EventMessageSent       = "message_sent"
	EventReactionAdded     = "reaction_added"
	EventAIMentionResponse = "ai_mention_response"
	EventTemplateUsed      = "template_used"
	EventCommandUnknown    = "command_unknown"
)

// CommandEventName returns the tracked name for a slash subcommand.
func CommandEventName(sub string) string {
	return "command_" + sub
}

// CategoryForEvent derives the category from the event name prefix.
func CategoryForEvent(name string) EventCategory {
	switch {
	case strings.HasPrefix(name, "command_"):
		return EventCategoryCommand
	case strings.HasPrefix(name, "message_"):
		return EventCategoryMessage
	case strings.HasPrefix(name, "reaction_"):
		return EventCategoryReaction
	case strings.HasPrefix(name, "template_"):
		return EventCategoryTemplate
	case strings.HasPrefix(name, "ai_"):
		return EventCategoryAI
	default:
		return EventCategoryOther
	}
}

// ActivityDelta is the per-event counter increment applied to activity rows.
type ActivityDelta struct {
	Commands          int32
	MessagesReceived  int32
	MessagesSent      int32
	ReactionsReceived int32
}

// DeltaForEvent maps an event name to the counters it increments.
func DeltaForEvent(name string) ActivityDelta {
	var d ActivityDelta
	switch {
	case strings.HasPrefix(name, "command_"):
		d.Commands = 1
	case name == EventMessageSent:
		d.MessagesSent = 1
	case strings.HasPrefix(name, "message_"):
		d.MessagesReceived = 1
	case strings.HasPrefix(name, "reaction_"):
		d.ReactionsReceived = 1
	}
	return d
}

type EventType struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Category    EventCategory `json:"category"`
	Description *string       `json:"description,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type Event struct {
	ID                int64           `json:"id"`
	EventTypeID       int64           `json:"event_type_id"`
	IntegrationID     int64           `json:"integration_id"`
	UserID            *int64          `json:"user_id,omitempty"`
	OrganizationID    *int64          `json:"organization_id,omitempty"`
	ExternalUserID    *string         `json:"external_user_id,omitempty"`
	ExternalChannelID *string         `json:"external_channel_id,omitempty"`
	ExternalTeamID    *string         `json:"external_team_id,omitempty"`
	Metadata          json.RawMessage `json:"metadata,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

type UserActivity struct {
	ID                int64     `json:"id"`
	IntegrationID     int64     `json:"integration_id"`
	ExternalUserID    string    `json:"external_user_id"`
	LastActiveAt      time.Time `json:"last_active_at"`
	TotalInteractions int32     `json:"total_interactions"`
	CommandsUsed      int32     `json:"commands_used"`
	MessagesReceived  int32     `json:"messages_received"`
	MessagesSent      int32     `json:"messages_sent"`
	ReactionsReceived int32     `json:"reactions_received"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ChannelActivity struct {
	ID                int64     `json:"id"`
	IntegrationID     int64     `json:"integration_id"`
	ExternalChannelID string    `json:"external_channel_id"`
	TotalInteractions int32     `json:"total_interactions"`
	CommandsUsed      int32     `json:"commands_used"`
	MessagesReceived  int32     `json:"messages_received"`
	MessagesSent      int32     `json:"messages_sent"`
	UniqueUsers       int32     `json:"unique_users"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type AIPerformanceSample struct {
	ID                int64     `json:"id"`
	IntegrationID     int64     `json:"integration_id"`
	MessageID         string    `json:"message_id"`
	ExternalUserID    *string   `json:"external_user_id,omitempty"`
	ExternalChannelID *string   `json:"external_channel_id,omitempty"`
	PromptLength      int32     `json:"prompt_length"`
	ResponseLength    int32     `json:"response_length"`
	ResponseTimeMs    int32     `json:"response_time_ms"`
	Model             string    `json:"model"`
	FeedbackRating    *int16    `json:"feedback_rating,omitempty"`
	FeedbackComment   *string   `json:"feedback_comment,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type UsageSummary struct {
	Period         string `json:"period"`
	TotalEvents    int64  `json:"total_events"`
	UniqueUsers    int64  `json:"unique_users"`
	UniqueChannels int64  `json:"unique_channels"`
	CommandEvents  int64  `json:"command_events"`
	MessageEvents  int64  `json:"message_events"`
	AIEvents       int64  `json:"ai_events"`
}

type AIPerformanceMetrics struct {
	Period            string  `json:"period"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	AvgFeedbackRating float64 `json:"avg_feedback_rating"`
	SampleCount       int64   `json:"sample_count"`
}
