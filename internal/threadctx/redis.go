package threadctx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of *redis.Client the store uses.
// Writes go through MULTI/EXEC so a value and its TTL land together.
type redisClient interface {
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

type redisStore struct {
	client redisClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redisClient, prefix string, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *redisStore) threadKey(channel, rootTS string) string {
	return fmt.Sprintf("%s:thread:%s:%s", s.prefix, channel, rootTS)
}

func (s *redisStore) metaKey(channel, rootTS string) string {
	return s.threadKey(channel, rootTS) + ":meta"
}

func (s *redisStore) AddMessage(ctx context.Context, channel, rootTS string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding thread message: %w", err)
	}

	key := s.threadKey(channel, rootTS)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.LTrim(ctx, key, -MaxMessages, -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("appending thread message: %w", err)
	}
	return nil
}

func (s *redisStore) History(ctx context.Context, channel, rootTS string) ([]Message, error) {
	raw, err := s.client.LRange(ctx, s.threadKey(channel, rootTS), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading thread: %w", err)
	}

	history := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			slog.WarnContext(ctx, "skipping malformed thread entry", "error", err, "channel_id", channel)
			continue
		}
		history = append(history, msg)
	}
	return history, nil
}

func (s *redisStore) SetMetadata(ctx context.Context, channel, rootTS, key, value string) error {
	metaKey := s.metaKey(channel, rootTS)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, metaKey, key, value)
		pipe.Expire(ctx, metaKey, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("setting thread metadata: %w", err)
	}
	return nil
}

func (s *redisStore) Metadata(ctx context.Context, channel, rootTS string) (map[string]string, error) {
	meta, err := s.client.HGetAll(ctx, s.metaKey(channel, rootTS)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading thread metadata: %w", err)
	}
	return meta, nil
}
