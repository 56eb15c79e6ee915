package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/store"
)

// Installation is an enabled integration together with its token manager.
type Installation struct {
	Integration *model.Integration
	Tokens      *TokenManager
}

// TokenRegistry resolves integrations to token managers and keeps one manager
// per integration so refreshed tokens survive across requests.
type TokenRegistry interface {
	Resolve(ctx context.Context, integrationID int64) (*Installation, error)
	Forget(integrationID int64)
}

type cachedTokens struct {
	credentialID int64
	tokens       *TokenManager
}

type tokenRegistry struct {
	integrations store.IntegrationStore
	credentials  store.IntegrationCredentialStore
	refresher    TokenRefresher

	mu       sync.Mutex
	managers map[int64]cachedTokens
}

func NewTokenRegistry(integrations store.IntegrationStore, credentials store.IntegrationCredentialStore, refresher TokenRefresher) TokenRegistry {
	return &tokenRegistry{
		integrations: integrations,
		credentials:  credentials,
		refresher:    refresher,
		managers:     map[int64]cachedTokens{},
	}
}

func (r *tokenRegistry) Resolve(ctx context.Context, integrationID int64) (*Installation, error) {
	integration, err := r.integrations.GetByID(ctx, integrationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: integration %d", ErrNotFound, integrationID)
		}
		return nil, fmt.Errorf("getting integration: %w", err)
	}
	if !integration.IsEnabled {
		return nil, fmt.Errorf("%w: integration %d is disabled", ErrNotFound, integrationID)
	}

	cred, err := r.credentials.GetPrimaryByIntegration(ctx, integrationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active credential for integration %d", ErrNotFound, integrationID)
		}
		return nil, fmt.Errorf("getting credential: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cached, ok := r.managers[integrationID]
	if !ok || cached.credentialID != cred.ID {
		credentialID := cred.ID
		cached = cachedTokens{
			credentialID: credentialID,
			tokens: NewTokenManager(model.CredentialFromStored(integration, cred), r.refresher,
				func(ctx context.Context, c model.Credential) error {
					return r.persist(ctx, credentialID, c)
				}),
		}
		r.managers[integrationID] = cached
	}

	return &Installation{Integration: integration, Tokens: cached.tokens}, nil
}

func (r *tokenRegistry) Forget(integrationID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, integrationID)
}

func (r *tokenRegistry) persist(ctx context.Context, credentialID int64, c model.Credential) error {
	var refresh *string
	if c.RefreshToken != "" {
		refresh = &c.RefreshToken
	}
	var expires *time.Time
	if !c.ExpiresAt.IsZero() {
		expires = &c.ExpiresAt
	}
	if err := r.credentials.UpdateTokens(ctx, credentialID, c.AccessToken, refresh, expires); err != nil {
		return fmt.Errorf("updating credential tokens: %w", err)
	}
	return nil
}
