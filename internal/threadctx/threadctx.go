// Package threadctx keeps a bounded per-thread message history so replies
// and mentions can be answered with conversation context.
package threadctx

import (
	"context"
	"time"
)

const (
	MaxMessages = 50
	DefaultTTL  = 7 * 24 * time.Hour

	MetaLastUserReplyTS = "last_user_reply_ts"
)

type Message struct {
	TS    string `json:"ts"`
	User  string `json:"user"`
	Text  string `json:"text"`
	IsBot bool   `json:"is_bot"`
}

type Store interface {
	AddMessage(ctx context.Context, channel, rootTS string, msg Message) error
	// History returns the thread oldest first.
	History(ctx context.Context, channel, rootTS string) ([]Message, error)
	SetMetadata(ctx context.Context, channel, rootTS, key, value string) error
	Metadata(ctx context.Context, channel, rootTS string) (map[string]string, error)
}

// HasBotMessage reports whether the bot has posted in the thread.
func HasBotMessage(history []Message) bool {
	for _, m := range history {
		if m.IsBot {
			return true
		}
	}
	return false
}
