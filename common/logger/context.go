package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Webhook handlers enrich the request context once and every downstream log line
// (actions, analytics, thread context) carries the same identifiers.
type LogFields struct {
	IntegrationID *int64  // Integration ID
	TeamID        *string // External workspace/team ID
	ChannelID     *string // External channel ID
	UserID        *string // External user ID
	EventType     *string // Envelope or inner event type (e.g., "app_mention", "command")
	RequestID     *string // X-Request-ID assigned by middleware
	Component     string  // Component name (e.g., "chatops.webhook.slack")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.IntegrationID != nil {
		result.IntegrationID = next.IntegrationID
	}
	if next.TeamID != nil {
		result.TeamID = next.TeamID
	}
	if next.ChannelID != nil {
		result.ChannelID = next.ChannelID
	}
	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.EventType != nil {
		result.EventType = next.EventType
	}
	if next.RequestID != nil {
		result.RequestID = next.RequestID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{ChannelID: logger.Ptr(ch)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
// Message text is truncated before logging.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
