package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/platform"
)

// TokenRefresher exchanges a refresh token for a new grant.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*platform.TokenGrant, error)
}

// RefreshHook is called with the updated credential after a successful refresh.
type RefreshHook func(ctx context.Context, cred model.Credential) error

// TokenManager owns one credential and hands out a valid access token,
// refreshing it when expired. Concurrent callers share a single refresh.
type TokenManager struct {
	refresher TokenRefresher
	onRefresh RefreshHook
	now       func() time.Time

	mu   sync.Mutex
	cred model.Credential
}

func NewTokenManager(cred model.Credential, refresher TokenRefresher, onRefresh RefreshHook) *TokenManager {
	return &TokenManager{
		refresher: refresher,
		onRefresh: onRefresh,
		now:       time.Now,
		cred:      cred,
	}
}

// AccessToken returns the cached token while it is valid, otherwise
// refreshes it. Failures wrap ErrAuthentication and are not retried.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred.AccessToken != "" && !m.cred.Expired(m.now()) {
		return m.cred.AccessToken, nil
	}
	if !m.cred.CanRefresh() || m.refresher == nil {
		return "", fmt.Errorf("%w: access token expired and no refresh token available", ErrAuthentication)
	}

	grant, err := m.refresher.Refresh(ctx, m.cred.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: refreshing access token: %w", ErrAuthentication, err)
	}

	m.cred.AccessToken = grant.AccessToken
	if grant.RefreshToken != "" {
		m.cred.RefreshToken = grant.RefreshToken
	}
	m.cred.ExpiresAt = grant.ExpiresAt
	if len(grant.Scopes) > 0 {
		m.cred.Scopes = grant.Scopes
	}

	slog.InfoContext(ctx, "access token refreshed",
		"team_id", m.cred.TeamID,
		"expires_at", m.cred.ExpiresAt)

	if m.onRefresh != nil {
		if err := m.onRefresh(ctx, m.cred); err != nil {
			slog.ErrorContext(ctx, "failed to persist refreshed token", "error", err, "team_id", m.cred.TeamID)
		}
	}

	return m.cred.AccessToken, nil
}

// Credential returns a copy of the current credential.
func (m *TokenManager) Credential() model.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred
}
