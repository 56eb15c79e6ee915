package service

import (
	"context"
	"fmt"
	"log/slog"

	"nuco.app/chatops/internal/model"
)

const ReasonUserAway = "user away"

// PresenceChecker decides whether a user can be interrupted right now.
type PresenceChecker interface {
	IsGoodTimeToNotify(integrationID int64, userID string) bool
}

type NotifyParams struct {
	IntegrationID int64
	UserID        string
	Text          string
	// Force delivers regardless of presence.
	Force bool
}

type NotifyResult struct {
	Delivered bool   `json:"delivered"`
	Reason    string `json:"reason,omitempty"`
	MessageTS string `json:"message_ts,omitempty"`
}

// Notifier sends direct messages when the recipient is reachable.
// Undelivered notifications are not queued.
type Notifier interface {
	Notify(ctx context.Context, params NotifyParams) (*NotifyResult, error)
}

type notifier struct {
	presence  PresenceChecker
	actions   ActionExecutor
	analytics AnalyticsService
}

func NewNotifier(presence PresenceChecker, actions ActionExecutor, analytics AnalyticsService) Notifier {
	return &notifier{presence: presence, actions: actions, analytics: analytics}
}

func (n *notifier) Notify(ctx context.Context, params NotifyParams) (*NotifyResult, error) {
	if params.UserID == "" || params.Text == "" {
		return nil, fmt.Errorf("%w: user id and text are required", ErrValidation)
	}

	if !params.Force && !n.presence.IsGoodTimeToNotify(params.IntegrationID, params.UserID) {
		slog.InfoContext(ctx, "notification held back", "external_user_id", params.UserID)
		return &NotifyResult{Delivered: false, Reason: ReasonUserAway}, nil
	}

	ts, err := n.actions.SendMessage(ctx, params.IntegrationID, params.UserID, params.Text, "")
	if err != nil {
		return nil, err
	}

	if err := n.analytics.TrackEvent(ctx, TrackEventParams{
		IntegrationID:  params.IntegrationID,
		EventName:      model.EventMessageSent,
		ExternalUserID: params.UserID,
		Metadata:       map[string]any{"kind": "notification", "forced": params.Force},
	}); err != nil {
		slog.WarnContext(ctx, "failed to track notification", "error", err)
	}

	return &NotifyResult{Delivered: true, MessageTS: ts}, nil
}
