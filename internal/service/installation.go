package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"nuco.app/chatops/common/id"
	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/platform"
	"nuco.app/chatops/internal/store"
)

// CodeExchanger completes the OAuth install flow.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (*platform.TokenGrant, error)
}

// OAuthClient is the platform OAuth surface used by the services.
type OAuthClient interface {
	CodeExchanger
	TokenRefresher
}

// InstallationService manages the lifecycle of platform installations.
type InstallationService interface {
	// Install exchanges an OAuth code and stores the integration with a new
	// primary credential, revoking any previous one.
	Install(ctx context.Context, code string, organizationID *int64) (*model.Integration, error)
	// Revoke revokes the platform token, disables the integration and drops
	// its cached token manager.
	Revoke(ctx context.Context, integrationID int64) error
	ListEnabled(ctx context.Context) ([]model.Integration, error)
	Channels(ctx context.Context, integrationID int64) ([]platform.Conversation, error)
}

// InstallationHooks are called after an installation change is committed.
// Nil hooks are skipped.
type InstallationHooks struct {
	OnInstall func(integrationID int64)
	OnRevoke  func(integrationID int64)
}

type installationService struct {
	txRunner     TxRunner
	integrations store.IntegrationStore
	tokens       TokenRegistry
	actions      ActionExecutor
	oauth        CodeExchanger
	hooks        InstallationHooks
}

func NewInstallationService(txRunner TxRunner, integrations store.IntegrationStore, tokens TokenRegistry, actions ActionExecutor, oauth CodeExchanger, hooks InstallationHooks) InstallationService {
	return &installationService{
		txRunner:     txRunner,
		integrations: integrations,
		tokens:       tokens,
		actions:      actions,
		oauth:        oauth,
		hooks:        hooks,
	}
}

func (s *installationService) Install(ctx context.Context, code string, organizationID *int64) (*model.Integration, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: oauth code is required", ErrValidation)
	}

	grant, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchanging oauth code: %w", ErrAuthentication, err)
	}

	integration := &model.Integration{
		ID:             id.New(),
		OrganizationID: organizationID,
		Provider:       model.ProviderSlack,
		ExternalTeamID: grant.TeamID,
		TeamName:       optional(grant.TeamName),
	}

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.Integrations().Upsert(ctx, integration); err != nil {
			return fmt.Errorf("upserting integration: %w", err)
		}
		if err := stores.IntegrationCredentials().RevokeAllByIntegration(ctx, integration.ID); err != nil {
			return fmt.Errorf("revoking previous credentials: %w", err)
		}

		cred := &model.IntegrationCredential{
			ID:             id.New(),
			IntegrationID:  integration.ID,
			CredentialType: model.CredentialTypeBot,
			AccessToken:    grant.AccessToken,
			RefreshToken:   optional(grant.RefreshToken),
			BotUserID:      optional(grant.BotUserID),
			WebhookURL:     optional(grant.WebhookURL),
			Scopes:         grant.Scopes,
			IsPrimary:      true,
		}
		if !grant.ExpiresAt.IsZero() {
			expires := grant.ExpiresAt
			cred.TokenExpiresAt = &expires
		}
		if err := stores.IntegrationCredentials().Create(ctx, cred); err != nil {
			return fmt.Errorf("creating credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.tokens.Forget(integration.ID)
	if s.hooks.OnInstall != nil {
		s.hooks.OnInstall(integration.ID)
	}

	slog.InfoContext(ctx, "integration installed",
		"integration_id", integration.ID,
		"team_id", integration.ExternalTeamID)

	return integration, nil
}

func (s *installationService) Revoke(ctx context.Context, integrationID int64) error {
	client, err := s.actions.Client(ctx, integrationID)
	switch {
	case err == nil:
		if err := client.RevokeToken(ctx); err != nil {
			slog.WarnContext(ctx, "platform token revoke failed", "error", err, "integration_id", integrationID)
		}
	case errors.Is(err, ErrNotFound):
		return err
	default:
		slog.WarnContext(ctx, "no usable token to revoke", "error", err, "integration_id", integrationID)
	}

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.IntegrationCredentials().RevokeAllByIntegration(ctx, integrationID); err != nil {
			return fmt.Errorf("revoking credentials: %w", err)
		}
		if err := stores.Integrations().SetEnabled(ctx, integrationID, false); err != nil {
			return fmt.Errorf("disabling integration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.tokens.Forget(integrationID)
	if s.hooks.OnRevoke != nil {
		s.hooks.OnRevoke(integrationID)
	}
	return nil
}

func (s *installationService) ListEnabled(ctx context.Context) ([]model.Integration, error) {
	integrations, err := s.integrations.ListEnabled(ctx, model.ProviderSlack)
	if err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}
	return integrations, nil
}

func (s *installationService) Channels(ctx context.Context, integrationID int64) ([]platform.Conversation, error) {
	client, err := s.actions.Client(ctx, integrationID)
	if err != nil {
		return nil, err
	}
	channels, err := client.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	return channels, nil
}
