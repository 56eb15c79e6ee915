package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"nuco.app/chatops/core/db/sqlc"
	"nuco.app/chatops/internal/model"
)

type integrationCredentialStore struct {
	queries *sqlc.Queries
}

func newIntegrationCredentialStore(queries *sqlc.Queries) IntegrationCredentialStore {
	return &integrationCredentialStore{queries: queries}
}

func (s *integrationCredentialStore) GetPrimaryByIntegration(ctx context.Context, integrationID int64) (*model.IntegrationCredential, error) {
	row, err := s.queries.GetPrimaryCredentialByIntegration(ctx, integrationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toCredentialModel(row), nil
}

func (s *integrationCredentialStore) Create(ctx context.Context, cred *model.IntegrationCredential) error {
	row, err := s.queries.CreateIntegrationCredential(ctx, sqlc.CreateIntegrationCredentialParams{
		ID:             cred.ID,
		IntegrationID:  cred.IntegrationID,
		CredentialType: string(cred.CredentialType),
		AccessToken:    cred.AccessToken,
		RefreshToken:   cred.RefreshToken,
		TokenExpiresAt: timeToPgTimestamptz(cred.TokenExpiresAt),
		BotUserID:      cred.BotUserID,
		WebhookUrl:     cred.WebhookURL,
		Scopes:         cred.Scopes,
		IsPrimary:      cred.IsPrimary,
	})
	if err != nil {
		return err
	}
	*cred = *toCredentialModel(row)
	return nil
}

func (s *integrationCredentialStore) UpdateTokens(ctx context.Context, id int64, accessToken string, refreshToken *string, expiresAt *time.Time) error {
	_, err := s.queries.UpdateCredentialTokens(ctx, sqlc.UpdateCredentialTokensParams{
		ID:             id,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: timeToPgTimestamptz(expiresAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *integrationCredentialStore) RevokeAllByIntegration(ctx context.Context, integrationID int64) error {
	return s.queries.RevokeAllCredentialsByIntegration(ctx, integrationID)
}

func toCredentialModel(row sqlc.IntegrationCredential) *model.IntegrationCredential {
	return &model.IntegrationCredential{
		ID:             row.ID,
		IntegrationID:  row.IntegrationID,
		CredentialType: model.CredentialType(row.CredentialType),
		AccessToken:    row.AccessToken,
		RefreshToken:   row.RefreshToken,
		TokenExpiresAt: pgTimestamptzToTime(row.TokenExpiresAt),
		BotUserID:      row.BotUserID,
		WebhookURL:     row.WebhookUrl,
		Scopes:         row.Scopes,
		IsPrimary:      row.IsPrimary,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
		RevokedAt:      pgTimestamptzToTime(row.RevokedAt),
	}
}

func timeToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func pgTimestamptzToTime(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
