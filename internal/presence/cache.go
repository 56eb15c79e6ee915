// Package presence keeps a freshness-bounded view of chat user presence used
// to decide whether a notification should be sent now.
package presence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/platform"
)

const (
	// FreshnessWindow is how long a cached record answers lookups without a
	// platform call.
	FreshnessWindow = 5 * time.Minute
	// AwayGracePeriod is how long after last becoming active an away user is
	// still considered reachable.
	AwayGracePeriod = 30 * time.Minute

	DefaultRefreshInterval = 5 * time.Minute
)

// ClientFunc returns a platform client with a currently valid token.
type ClientFunc func(ctx context.Context) (platform.Client, error)

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

type Cache struct {
	client ClientFunc
	now    func() time.Time

	mu      sync.Mutex
	records map[string]*model.PresenceRecord

	trackMu sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewCache(client ClientFunc, opts ...Option) *Cache {
	c := &Cache{
		client:  client,
		now:     time.Now,
		records: map[string]*model.PresenceRecord{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartTracking refreshes immediately and then every interval until
// StopTracking is called or ctx is done. Calling it while tracking is a no-op.
func (c *Cache) StartTracking(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	c.trackMu.Lock()
	defer c.trackMu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		c.refreshLogged(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.refreshLogged(ctx)
			}
		}
	}()
}

// StopTracking stops the refresh loop and waits for it to exit.
func (c *Cache) StopTracking() {
	c.trackMu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.trackMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Cache) Tracking() bool {
	c.trackMu.Lock()
	defer c.trackMu.Unlock()
	return c.cancel != nil
}

func (c *Cache) refreshLogged(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
		slog.WarnContext(ctx, "presence refresh failed", "error", err)
	}
}

// Refresh pulls presence for all workspace users. Bots and deleted users are
// skipped.
func (c *Cache) Refresh(ctx context.Context) error {
	client, err := c.client(ctx)
	if err != nil {
		return err
	}
	users, err := client.ListUsers(ctx)
	if err != nil {
		return err
	}

	var updated int
	for _, u := range users {
		if u.IsBot || u.Deleted {
			continue
		}
		// users.list omits presence unless the caller asks for it; such an
		// entry carries profile data only.
		if u.Presence == "" {
			c.observeProfile(u.ID, &u)
			continue
		}
		state := model.ParsePresenceState(u.Presence)
		c.observe(u.ID, state, state == model.PresenceActive, &u)
		updated++
	}

	slog.DebugContext(ctx, "presence refreshed", "users", updated)
	return nil
}

// GetUserPresence returns a fresh record, fetching from the platform when the
// cached one is missing or stale. On fetch failure the stale record is
// returned, or nil if the user was never observed.
func (c *Cache) GetUserPresence(ctx context.Context, userID string) *model.PresenceRecord {
	if rec := c.lookup(userID); rec != nil && c.now().Sub(rec.LastUpdated) < FreshnessWindow {
		return rec
	}

	client, err := c.client(ctx)
	if err == nil {
		var p *platform.Presence
		p, err = client.GetUserPresence(ctx, userID)
		if err == nil {
			c.observe(userID, model.ParsePresenceState(p.Presence), p.Online, nil)
			return c.lookup(userID)
		}
	}

	slog.WarnContext(ctx, "presence lookup failed", "error", err, "external_user_id", userID)
	return c.lookup(userID)
}

// IsGoodTimeToNotify reports whether a notification should be delivered now.
// Users never observed are assumed reachable.
func (c *Cache) IsGoodTimeToNotify(userID string) bool {
	rec := c.lookup(userID)
	if rec == nil {
		return true
	}
	switch rec.State {
	case model.PresenceActive:
		return true
	case model.PresenceAway:
		return !rec.LastActiveAt.IsZero() && c.now().Sub(rec.LastActiveAt) < AwayGracePeriod
	default:
		return false
	}
}

func (c *Cache) ActiveUsers() []model.PresenceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.PresenceRecord, 0, len(c.records))
	for _, rec := range c.records {
		if rec.State == model.PresenceActive {
			out = append(out, *rec)
		}
	}
	return out
}

func (c *Cache) AllUsers() []model.PresenceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.PresenceRecord, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, *rec)
	}
	return out
}

func (c *Cache) lookup(userID string) *model.PresenceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[userID]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// observe applies a presence observation. LastUpdated never moves backwards.
func (c *Cache) observe(userID string, state model.PresenceState, online bool, profile *platform.User) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[userID]
	if !ok {
		rec = &model.PresenceRecord{UserID: userID, State: model.PresenceUnknown}
		c.records[userID] = rec
	}

	if state == model.PresenceActive && rec.State != model.PresenceActive {
		rec.LastActiveAt = now
	}
	rec.State = state
	rec.Online = online
	if now.After(rec.LastUpdated) {
		rec.LastUpdated = now
	}

	if profile != nil {
		rec.DisplayName = displayName(profile)
		rec.StatusText = profile.StatusText
		rec.StatusEmoji = profile.StatusEmoji
	}
}

// observeProfile refreshes profile fields of a known user without touching
// presence state or freshness.
func (c *Cache) observeProfile(userID string, profile *platform.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[userID]
	if !ok {
		return
	}
	rec.DisplayName = displayName(profile)
	rec.StatusText = profile.StatusText
	rec.StatusEmoji = profile.StatusEmoji
}

func displayName(u *platform.User) string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.RealName != "":
		return u.RealName
	default:
		return u.Name
	}
}
