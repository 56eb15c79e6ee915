package presence_test

import (
	"context"
	"sync"
	"sync/atomic"

	"nuco.app/chatops/internal/platform"
)

type mockPlatform struct {
	mu                sync.Mutex
	listUsersFn       func(ctx context.Context) ([]platform.User, error)
	getUserPresenceFn func(ctx context.Context, userID string) (*platform.Presence, error)

	listUsersCalls   atomic.Int32
	getPresenceCalls atomic.Int32
}

func (m *mockPlatform) setUsers(users ...platform.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listUsersFn = func(context.Context) ([]platform.User, error) { return users, nil }
}

func (m *mockPlatform) PostMessage(context.Context, string, string, string) (string, error) {
	return "", nil
}

func (m *mockPlatform) AddReaction(context.Context, string, string, string) error { return nil }

func (m *mockPlatform) RemoveReaction(context.Context, string, string, string) error { return nil }

func (m *mockPlatform) ListConversations(context.Context) ([]platform.Conversation, error) {
	return nil, nil
}

func (m *mockPlatform) ListUsers(ctx context.Context) ([]platform.User, error) {
	m.listUsersCalls.Add(1)
	m.mu.Lock()
	fn := m.listUsersFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

func (m *mockPlatform) GetUserPresence(ctx context.Context, userID string) (*platform.Presence, error) {
	m.getPresenceCalls.Add(1)
	if m.getUserPresenceFn != nil {
		return m.getUserPresenceFn(ctx, userID)
	}
	return &platform.Presence{Presence: "active", Online: true}, nil
}

func (m *mockPlatform) RevokeToken(context.Context) error { return nil }
