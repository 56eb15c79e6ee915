package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/platform"
	"nuco.app/chatops/internal/service"
	"nuco.app/chatops/internal/store"
)

var _ = Describe("TokenManager", func() {
	var (
		ctx   context.Context
		oauth *mockOAuth
	)

	BeforeEach(func() {
		ctx = context.Background()
		oauth = &mockOAuth{}
	})

	It("returns the cached token while it is valid", func() {
		tm := service.NewTokenManager(model.Credential{
			AccessToken:  "xoxb-valid",
			RefreshToken: "xoxe-refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
		}, oauth, nil)

		token, err := tm.AccessToken(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(Equal("xoxb-valid"))
		Expect(oauth.RefreshCalls()).To(BeZero())
	})

	It("never refreshes tokens without an expiry", func() {
		tm := service.NewTokenManager(model.Credential{AccessToken: "xoxb-forever", RefreshToken: "xoxe-refresh"}, oauth, nil)

		token, err := tm.AccessToken(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(Equal("xoxb-forever"))
		Expect(oauth.RefreshCalls()).To(BeZero())
	})

	It("refreshes an expired token and reports the new credential", func() {
		newExpiry := time.Now().Add(12 * time.Hour)
		oauth.refreshFn = func(_ context.Context, refreshToken string) (*platform.TokenGrant, error) {
			Expect(refreshToken).To(Equal("xoxe-old"))
			return &platform.TokenGrant{AccessToken: "xoxb-new", RefreshToken: "xoxe-new", ExpiresAt: newExpiry}, nil
		}

		var persisted model.Credential
		tm := service.NewTokenManager(model.Credential{
			AccessToken:  "xoxb-old",
			RefreshToken: "xoxe-old",
			ExpiresAt:    time.Now().Add(-time.Minute),
			TeamID:       "T1",
		}, oauth, func(_ context.Context, c model.Credential) error {
			persisted = c
			return nil
		})

		token, err := tm.AccessToken(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(Equal("xoxb-new"))
		Expect(persisted.AccessToken).To(Equal("xoxb-new"))
		Expect(persisted.RefreshToken).To(Equal("xoxe-new"))
		Expect(persisted.ExpiresAt).To(Equal(newExpiry))
		Expect(tm.Credential().TeamID).To(Equal("T1"))
	})

	It("keeps the previous refresh token when the grant omits one", func() {
		oauth.refreshFn = func(context.Context, string) (*platform.TokenGrant, error) {
			return &platform.TokenGrant{AccessToken: "xoxb-new", ExpiresAt: time.Now().Add(time.Hour)}, nil
		}
		tm := service.NewTokenManager(model.Credential{
			AccessToken:  "xoxb-old",
			RefreshToken: "xoxe-keep",
			ExpiresAt:    time.Now().Add(-time.Second),
		}, oauth, nil)

		_, err := tm.AccessToken(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(tm.Credential().RefreshToken).To(Equal("xoxe-keep"))
	})

	It("still returns the refreshed token when persisting fails", func() {
		tm := service.NewTokenManager(model.Credential{
			AccessToken:  "xoxb-old",
			RefreshToken: "xoxe-old",
			ExpiresAt:    time.Now().Add(-time.Second),
		}, oauth, func(context.Context, model.Credential) error {
			return errors.New("db down")
		})

		token, err := tm.AccessToken(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(Equal("xoxb-refreshed"))
	})

	It("fails with ErrAuthentication when expired without a refresh token", func() {
		tm := service.NewTokenManager(model.Credential{
			AccessToken: "xoxb-old",
			ExpiresAt:   time.Now().Add(-time.Second),
		}, oauth, nil)

		_, err := tm.AccessToken(ctx)
		Expect(err).To(MatchError(service.ErrAuthentication))
		Expect(oauth.RefreshCalls()).To(BeZero())
	})

	It("wraps refresh failures in ErrAuthentication without retrying", func() {
		apiErr := &platform.APIError{Method: "oauth.v2.access", StatusCode: 200, Code: "invalid_refresh_token"}
		oauth.refreshFn = func(context.Context, string) (*platform.TokenGrant, error) {
			return nil, apiErr
		}
		tm := service.NewTokenManager(model.Credential{
			AccessToken:  "xoxb-old",
			RefreshToken: "xoxe-old",
			ExpiresAt:    time.Now().Add(-time.Second),
		}, oauth, nil)

		_, err := tm.AccessToken(ctx)
		Expect(err).To(MatchError(service.ErrAuthentication))
		Expect(platform.IsCode(err, "invalid_refresh_token")).To(BeTrue())
		Expect(oauth.RefreshCalls()).To(Equal(1))
	})

	It("refreshes once for concurrent callers", func() {
		oauth.refreshFn = func(context.Context, string) (*platform.TokenGrant, error) {
			time.Sleep(10 * time.Millisecond)
			return &platform.TokenGrant{AccessToken: "xoxb-new", ExpiresAt: time.Now().Add(time.Hour)}, nil
		}
		tm := service.NewTokenManager(model.Credential{
			AccessToken:  "xoxb-old",
			RefreshToken: "xoxe-old",
			ExpiresAt:    time.Now().Add(-time.Second),
		}, oauth, nil)

		var wg sync.WaitGroup
		tokens := make([]string, 8)
		for i := range tokens {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer GinkgoRecover()
				token, err := tm.AccessToken(ctx)
				Expect(err).NotTo(HaveOccurred())
				tokens[i] = token
			}(i)
		}
		wg.Wait()

		Expect(oauth.RefreshCalls()).To(Equal(1))
		Expect(tokens).To(HaveEach("xoxb-new"))
	})
})

var _ = Describe("TokenRegistry", func() {
	var (
		ctx          context.Context
		integrations *mockIntegrationStore
		credentials  *mockCredentialStore
		oauth        *mockOAuth
		registry     service.TokenRegistry
	)

	enabled := &model.Integration{ID: 7, Provider: model.ProviderSlack, ExternalTeamID: "T7", IsEnabled: true}

	BeforeEach(func() {
		ctx = context.Background()
		integrations = &mockIntegrationStore{
			getByIDFn: func(context.Context, int64) (*model.Integration, error) { return enabled, nil },
		}
		credentials = &mockCredentialStore{
			getPrimaryFn: func(context.Context, int64) (*model.IntegrationCredential, error) {
				return &model.IntegrationCredential{ID: 70, IntegrationID: 7, AccessToken: "xoxb-7"}, nil
			},
		}
		oauth = &mockOAuth{}
		registry = service.NewTokenRegistry(integrations, credentials, oauth)
	})

	It("returns ErrNotFound for unknown integrations", func() {
		integrations.getByIDFn = func(context.Context, int64) (*model.Integration, error) {
			return nil, store.ErrNotFound
		}
		_, err := registry.Resolve(ctx, 7)
		Expect(err).To(MatchError(service.ErrNotFound))
	})

	It("returns ErrNotFound for disabled integrations", func() {
		integrations.getByIDFn = func(context.Context, int64) (*model.Integration, error) {
			return &model.Integration{ID: 7, IsEnabled: false}, nil
		}
		_, err := registry.Resolve(ctx, 7)
		Expect(err).To(MatchError(service.ErrNotFound))
	})

	It("returns ErrNotFound when there is no active credential", func() {
		credentials.getPrimaryFn = func(context.Context, int64) (*model.IntegrationCredential, error) {
			return nil, store.ErrNotFound
		}
		_, err := registry.Resolve(ctx, 7)
		Expect(err).To(MatchError(service.ErrNotFound))
	})

	It("propagates other store errors", func() {
		integrations.getByIDFn = func(context.Context, int64) (*model.Integration, error) {
			return nil, errors.New("connection reset")
		}
		_, err := registry.Resolve(ctx, 7)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, service.ErrNotFound)).To(BeFalse())
	})

	It("reuses the token manager across calls", func() {
		first, err := registry.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		second, err := registry.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())

		Expect(second.Tokens).To(BeIdenticalTo(first.Tokens))
		Expect(first.Integration.ExternalTeamID).To(Equal("T7"))
	})

	It("replaces the token manager when the credential changes or is forgotten", func() {
		first, _ := registry.Resolve(ctx, 7)

		credentials.getPrimaryFn = func(context.Context, int64) (*model.IntegrationCredential, error) {
			return &model.IntegrationCredential{ID: 71, IntegrationID: 7, AccessToken: "xoxb-7b"}, nil
		}
		second, _ := registry.Resolve(ctx, 7)
		Expect(second.Tokens).NotTo(BeIdenticalTo(first.Tokens))

		registry.Forget(7)
		third, _ := registry.Resolve(ctx, 7)
		Expect(third.Tokens).NotTo(BeIdenticalTo(second.Tokens))
	})

	It("persists refreshed tokens to the credential row", func() {
		expired := time.Now().Add(-time.Minute)
		credentials.getPrimaryFn = func(context.Context, int64) (*model.IntegrationCredential, error) {
			return &model.IntegrationCredential{
				ID: 70, IntegrationID: 7, AccessToken: "xoxb-old",
				RefreshToken: strPtr("xoxe-old"), TokenExpiresAt: &expired,
			}, nil
		}
		newExpiry := time.Now().Add(time.Hour)
		oauth.refreshFn = func(context.Context, string) (*platform.TokenGrant, error) {
			return &platform.TokenGrant{AccessToken: "xoxb-new", RefreshToken: "xoxe-new", ExpiresAt: newExpiry}, nil
		}

		var updatedID int64
		var updatedRefresh *string
		var updatedExpiry *time.Time
		credentials.updateTokensFn = func(_ context.Context, id int64, access string, refresh *string, expiresAt *time.Time) error {
			updatedID = id
			Expect(access).To(Equal("xoxb-new"))
			updatedRefresh = refresh
			updatedExpiry = expiresAt
			return nil
		}

		inst, err := registry.Resolve(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		token, err := inst.Tokens.AccessToken(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(Equal("xoxb-new"))

		Expect(updatedID).To(Equal(int64(70)))
		Expect(*updatedRefresh).To(Equal("xoxe-new"))
		Expect(*updatedExpiry).To(Equal(newExpiry))
	})
})
