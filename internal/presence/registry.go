package presence

import (
	"context"
	"sync"
	"time"
)

// Registry holds one Cache per integration.
type Registry struct {
	clientFor func(integrationID int64) ClientFunc
	opts      []Option

	mu     sync.Mutex
	caches map[int64]*Cache
}

func NewRegistry(clientFor func(integrationID int64) ClientFunc, opts ...Option) *Registry {
	return &Registry{
		clientFor: clientFor,
		opts:      opts,
		caches:    map[int64]*Cache{},
	}
}

// Cache returns the integration's cache, creating it on first use.
func (r *Registry) Cache(integrationID int64) *Cache {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.caches[integrationID]
	if !ok {
		c = NewCache(r.clientFor(integrationID), r.opts...)
		r.caches[integrationID] = c
	}
	return c
}

func (r *Registry) Track(ctx context.Context, integrationID int64, interval time.Duration) {
	r.Cache(integrationID).StartTracking(ctx, interval)
}

// Remove stops tracking and drops the integration's cache.
func (r *Registry) Remove(integrationID int64) {
	r.mu.Lock()
	c, ok := r.caches[integrationID]
	delete(r.caches, integrationID)
	r.mu.Unlock()

	if ok {
		c.StopTracking()
	}
}

func (r *Registry) IsGoodTimeToNotify(integrationID int64, userID string) bool {
	return r.Cache(integrationID).IsGoodTimeToNotify(userID)
}

func (r *Registry) StopAll() {
	r.mu.Lock()
	caches := make([]*Cache, 0, len(r.caches))
	for _, c := range r.caches {
		caches = append(caches, c)
	}
	r.mu.Unlock()

	for _, c := range caches {
		c.StopTracking()
	}
}
