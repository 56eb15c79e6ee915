package threadctx

import (
	"context"
	"maps"
	"sync"
)

type memoryStore struct {
	mu      sync.Mutex
	threads map[string][]Message
	meta    map[string]map[string]string
}

// NewMemoryStore returns a process-local Store without expiry. Used when no
// Redis URL is configured.
func NewMemoryStore() Store {
	return &memoryStore{
		threads: map[string][]Message{},
		meta:    map[string]map[string]string{},
	}
}

func memoryKey(channel, rootTS string) string {
	return channel + ":" + rootTS
}

func (s *memoryStore) AddMessage(_ context.Context, channel, rootTS string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey(channel, rootTS)
	thread := append(s.threads[key], msg)
	if len(thread) > MaxMessages {
		thread = thread[len(thread)-MaxMessages:]
	}
	s.threads[key] = thread
	return nil
}

func (s *memoryStore) History(_ context.Context, channel, rootTS string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.threads[memoryKey(channel, rootTS)]...), nil
}

func (s *memoryStore) SetMetadata(_ context.Context, channel, rootTS, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := memoryKey(channel, rootTS)
	if s.meta[k] == nil {
		s.meta[k] = map[string]string{}
	}
	s.meta[k][key] = value
	return nil
}

func (s *memoryStore) Metadata(_ context.Context, channel, rootTS string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.meta[memoryKey(channel, rootTS)]), nil
}
