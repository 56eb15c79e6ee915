package presence_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/platform"
	"nuco.app/chatops/internal/presence"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var _ = Describe("Cache", func() {
	var (
		ctx   context.Context
		api   *mockPlatform
		clock *fakeClock
		t0    time.Time
		cache *presence.Cache
	)

	BeforeEach(func() {
		ctx = context.Background()
		api = &mockPlatform{}
		t0 = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		clock = &fakeClock{now: t0}
		cache = presence.NewCache(func(context.Context) (platform.Client, error) {
			return api, nil
		}, presence.WithClock(clock.Now))
	})

	Describe("Refresh", func() {
		It("records humans and skips bots and deleted users", func() {
			api.setUsers(
				platform.User{ID: "U1", Name: "ana", DisplayName: "Ana", Presence: "active", StatusText: "heads down"},
				platform.User{ID: "B1", IsBot: true, Presence: "active"},
				platform.User{ID: "U2", Deleted: true, Presence: "away"},
			)

			Expect(cache.Refresh(ctx)).To(Succeed())

			all := cache.AllUsers()
			Expect(all).To(HaveLen(1))
			Expect(all[0].UserID).To(Equal("U1"))
			Expect(all[0].DisplayName).To(Equal("Ana"))
			Expect(all[0].StatusText).To(Equal("heads down"))
			Expect(all[0].LastActiveAt).To(Equal(t0))
			Expect(cache.ActiveUsers()).To(HaveLen(1))
		})

		It("stamps LastActiveAt only on the transition to active", func() {
			api.setUsers(platform.User{ID: "U1", Presence: "active"})
			Expect(cache.Refresh(ctx)).To(Succeed())

			clock.Set(t0.Add(10 * time.Minute))
			Expect(cache.Refresh(ctx)).To(Succeed())
			Expect(cache.AllUsers()[0].LastActiveAt).To(Equal(t0))

			api.setUsers(platform.User{ID: "U1", Presence: "away"})
			clock.Set(t0.Add(20 * time.Minute))
			Expect(cache.Refresh(ctx)).To(Succeed())

			api.setUsers(platform.User{ID: "U1", Presence: "active"})
			clock.Set(t0.Add(40 * time.Minute))
			Expect(cache.Refresh(ctx)).To(Succeed())
			Expect(cache.AllUsers()[0].LastActiveAt).To(Equal(t0.Add(40 * time.Minute)))
		})

		It("never moves LastUpdated backwards", func() {
			api.setUsers(platform.User{ID: "U1", Presence: "active"})
			Expect(cache.Refresh(ctx)).To(Succeed())

			clock.Set(t0.Add(-time.Minute))
			Expect(cache.Refresh(ctx)).To(Succeed())
			Expect(cache.AllUsers()[0].LastUpdated).To(Equal(t0))
		})

		It("keeps known presence when the listing omits it", func() {
			Expect(cache.GetUserPresence(ctx, "U1").State).To(Equal(model.PresenceActive))

			clock.Set(t0.Add(4 * time.Minute))
			api.setUsers(platform.User{ID: "U1", DisplayName: "Ana"})
			Expect(cache.Refresh(ctx)).To(Succeed())
			Expect(cache.IsGoodTimeToNotify("U1")).To(BeTrue())

			all := cache.AllUsers()
			Expect(all).To(HaveLen(1))
			Expect(all[0].State).To(Equal(model.PresenceActive))
			Expect(all[0].DisplayName).To(Equal("Ana"))
			Expect(all[0].LastUpdated).To(Equal(t0))

			api.getUserPresenceFn = func(context.Context, string) (*platform.Presence, error) {
				return &platform.Presence{Presence: "away"}, nil
			}
			clock.Set(t0.Add(6 * time.Minute))
			Expect(cache.GetUserPresence(ctx, "U1").State).To(Equal(model.PresenceAway))
			Expect(api.getPresenceCalls.Load()).To(Equal(int32(2)))
		})

		It("does not record users whose presence was never reported", func() {
			api.setUsers(platform.User{ID: "U1", DisplayName: "Ana"})
			Expect(cache.Refresh(ctx)).To(Succeed())

			Expect(cache.AllUsers()).To(BeEmpty())
			Expect(cache.IsGoodTimeToNotify("U1")).To(BeTrue())
		})

		It("returns client errors", func() {
			api.listUsersFn = func(context.Context) ([]platform.User, error) {
				return nil, &platform.APIError{Method: "users.list", Code: "invalid_auth"}
			}
			Expect(cache.Refresh(ctx)).To(MatchError(ContainSubstring("invalid_auth")))
		})
	})

	Describe("GetUserPresence", func() {
		BeforeEach(func() {
			api.setUsers(platform.User{ID: "U1", Presence: "active"})
			Expect(cache.Refresh(ctx)).To(Succeed())
		})

		It("answers from cache within the freshness window", func() {
			clock.Set(t0.Add(4 * time.Minute))

			rec := cache.GetUserPresence(ctx, "U1")
			Expect(rec).NotTo(BeNil())
			Expect(rec.State).To(Equal(model.PresenceActive))
			Expect(api.getPresenceCalls.Load()).To(BeZero())
		})

		It("fetches once the record is stale", func() {
			api.getUserPresenceFn = func(context.Context, string) (*platform.Presence, error) {
				return &platform.Presence{Presence: "away"}, nil
			}
			clock.Set(t0.Add(6 * time.Minute))

			rec := cache.GetUserPresence(ctx, "U1")
			Expect(api.getPresenceCalls.Load()).To(Equal(int32(1)))
			Expect(rec.State).To(Equal(model.PresenceAway))
			Expect(rec.LastUpdated).To(Equal(t0.Add(6 * time.Minute)))
		})

		It("falls back to the stale record when the fetch fails", func() {
			api.getUserPresenceFn = func(context.Context, string) (*platform.Presence, error) {
				return nil, errors.New("timeout")
			}
			clock.Set(t0.Add(6 * time.Minute))

			rec := cache.GetUserPresence(ctx, "U1")
			Expect(rec).NotTo(BeNil())
			Expect(rec.LastUpdated).To(Equal(t0))
		})

		It("returns nil for unknown users when the fetch fails", func() {
			api.getUserPresenceFn = func(context.Context, string) (*platform.Presence, error) {
				return nil, errors.New("user_not_found")
			}
			Expect(cache.GetUserPresence(ctx, "U404")).To(BeNil())
		})
	})

	Describe("IsGoodTimeToNotify", func() {
		goAwayAt := func(offset time.Duration) {
			api.setUsers(platform.User{ID: "U1", Presence: "active"})
			Expect(cache.Refresh(ctx)).To(Succeed())
			api.setUsers(platform.User{ID: "U1", Presence: "away"})
			clock.Set(t0.Add(offset))
			Expect(cache.Refresh(ctx)).To(Succeed())
		}

		It("is true for users never observed", func() {
			Expect(cache.IsGoodTimeToNotify("U-never")).To(BeTrue())
		})

		It("is true for active users", func() {
			api.setUsers(platform.User{ID: "U1", Presence: "active"})
			Expect(cache.Refresh(ctx)).To(Succeed())
			Expect(cache.IsGoodTimeToNotify("U1")).To(BeTrue())
		})

		It("is true for users away 10 minutes after last being active", func() {
			goAwayAt(10 * time.Minute)
			Expect(cache.IsGoodTimeToNotify("U1")).To(BeTrue())
		})

		It("is false for users away 45 minutes after last being active", func() {
			goAwayAt(45 * time.Minute)
			Expect(cache.IsGoodTimeToNotify("U1")).To(BeFalse())
		})

		It("uses the 30 minute grace period as the boundary", func() {
			goAwayAt(5 * time.Minute)

			clock.Set(t0.Add(29 * time.Minute))
			Expect(cache.IsGoodTimeToNotify("U1")).To(BeTrue())

			clock.Set(t0.Add(31 * time.Minute))
			Expect(cache.IsGoodTimeToNotify("U1")).To(BeFalse())
		})

		It("is false for users only ever observed away", func() {
			api.setUsers(platform.User{ID: "U1", Presence: "away"})
			Expect(cache.Refresh(ctx)).To(Succeed())
			Expect(cache.IsGoodTimeToNotify("U1")).To(BeFalse())
		})
	})

	Describe("tracking", func() {
		It("refreshes immediately and on every tick until stopped", func() {
			api.setUsers(platform.User{ID: "U1", Presence: "active"})

			cache.StartTracking(ctx, 10*time.Millisecond)
			cache.StartTracking(ctx, 10*time.Millisecond)
			Expect(cache.Tracking()).To(BeTrue())

			Eventually(api.listUsersCalls.Load).Should(BeNumerically(">=", 3))

			cache.StopTracking()
			Expect(cache.Tracking()).To(BeFalse())
			calls := api.listUsersCalls.Load()
			Consistently(api.listUsersCalls.Load, 50*time.Millisecond).Should(Equal(calls))
		})

		It("stops when the parent context is cancelled", func() {
			parent, cancel := context.WithCancel(ctx)
			cache.StartTracking(parent, 10*time.Millisecond)
			Eventually(api.listUsersCalls.Load).Should(BeNumerically(">=", 1))

			cancel()
			cache.StopTracking()
			calls := api.listUsersCalls.Load()
			Consistently(api.listUsersCalls.Load, 50*time.Millisecond).Should(Equal(calls))
		})
	})
})

var _ = Describe("Registry", func() {
	It("keeps one cache per integration", func() {
		api := &mockPlatform{}
		requested := map[int64]int{}
		reg := presence.NewRegistry(func(id int64) presence.ClientFunc {
			requested[id]++
			return func(context.Context) (platform.Client, error) { return api, nil }
		})

		Expect(reg.Cache(1)).To(BeIdenticalTo(reg.Cache(1)))
		Expect(reg.Cache(2)).NotTo(BeIdenticalTo(reg.Cache(1)))
		Expect(requested).To(Equal(map[int64]int{1: 1, 2: 1}))
		Expect(reg.IsGoodTimeToNotify(1, "U-new")).To(BeTrue())

		reg.Track(context.Background(), 1, time.Hour)
		Eventually(api.listUsersCalls.Load).Should(Equal(int32(1)))
		reg.StopAll()
		Expect(reg.Cache(1).Tracking()).To(BeFalse())
	})
})
