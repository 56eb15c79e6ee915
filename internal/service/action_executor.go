package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nuco.app/chatops/internal/platform"
)

const (
	DefaultReactionDelay = 500 * time.Millisecond
	DefaultMaxReactions  = 2
)

// Reaction names used by the webhook handlers.
const (
	ReactionThinking    = "thinking_face"
	ReactionAcknowledge = "eyes"
)

type ActionConfig struct {
	// ReactionDelay is the pause between consecutive reactions in AddReactions.
	ReactionDelay time.Duration
	MaxReactions  int
}

// ActionExecutor performs side-effecting platform calls on behalf of an
// integration, obtaining a valid token for every call.
type ActionExecutor interface {
	// Client returns a platform client authorized for the integration.
	Client(ctx context.Context, integrationID int64) (platform.Client, error)
	AddReaction(ctx context.Context, integrationID int64, channel, ts, name string) error
	RemoveReaction(ctx context.Context, integrationID int64, channel, ts, name string) error
	// AddReactions applies up to max reactions sequentially and returns how
	// many succeeded. Individual failures are logged and skipped.
	AddReactions(ctx context.Context, integrationID int64, channel, ts string, names []string, max int) int
	SendMessage(ctx context.Context, integrationID int64, channel, text, threadTS string) (string, error)
}

type actionExecutor struct {
	tokens    TokenRegistry
	newClient platform.ClientFactory
	cfg       ActionConfig
}

func NewActionExecutor(tokens TokenRegistry, newClient platform.ClientFactory, cfg ActionConfig) ActionExecutor {
	if cfg.ReactionDelay <= 0 {
		cfg.ReactionDelay = DefaultReactionDelay
	}
	if cfg.MaxReactions <= 0 {
		cfg.MaxReactions = DefaultMaxReactions
	}
	return &actionExecutor{tokens: tokens, newClient: newClient, cfg: cfg}
}

func (e *actionExecutor) Client(ctx context.Context, integrationID int64) (platform.Client, error) {
	inst, err := e.tokens.Resolve(ctx, integrationID)
	if err != nil {
		return nil, err
	}
	token, err := inst.Tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return e.newClient(token), nil
}

func (e *actionExecutor) AddReaction(ctx context.Context, integrationID int64, channel, ts, name string) error {
	client, err := e.Client(ctx, integrationID)
	if err != nil {
		return err
	}
	if err := client.AddReaction(ctx, channel, ts, name); err != nil {
		return fmt.Errorf("adding reaction %s: %w", name, err)
	}
	return nil
}

func (e *actionExecutor) RemoveReaction(ctx context.Context, integrationID int64, channel, ts, name string) error {
	client, err := e.Client(ctx, integrationID)
	if err != nil {
		return err
	}
	if err := client.RemoveReaction(ctx, channel, ts, name); err != nil {
		return fmt.Errorf("removing reaction %s: %w", name, err)
	}
	return nil
}

func (e *actionExecutor) AddReactions(ctx context.Context, integrationID int64, channel, ts string, names []string, max int) int {
	if max <= 0 {
		max = e.cfg.MaxReactions
	}
	if len(names) > max {
		names = names[:max]
	}

	added := 0
	for i, name := range names {
		if i > 0 && !sleepCtx(ctx, e.cfg.ReactionDelay) {
			break
		}
		if err := e.AddReaction(ctx, integrationID, channel, ts, name); err != nil {
			slog.WarnContext(ctx, "reaction skipped", "error", err, "reaction", name)
			continue
		}
		added++
	}
	return added
}

func (e *actionExecutor) SendMessage(ctx context.Context, integrationID int64, channel, text, threadTS string) (string, error) {
	client, err := e.Client(ctx, integrationID)
	if err != nil {
		return "", err
	}
	ts, err := client.PostMessage(ctx, channel, text, threadTS)
	if err != nil {
		return "", fmt.Errorf("sending message: %w", err)
	}
	return ts, nil
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
