package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"nuco.app/chatops/core/db/sqlc"
	"nuco.app/chatops/internal/model"
)

type integrationStore struct {
	queries *sqlc.Queries
}

func newIntegrationStore(queries *sqlc.Queries) IntegrationStore {
	return &integrationStore{queries: queries}
}

func (s *integrationStore) GetByID(ctx context.Context, id int64) (*model.Integration, error) {
	row, err := s.queries.GetIntegration(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toIntegrationModel(row), nil
}

func (s *integrationStore) GetByTeam(ctx context.Context, provider model.Provider, teamID string) (*model.Integration, error) {
	row, err := s.queries.GetIntegrationByTeam(ctx, sqlc.GetIntegrationByTeamParams{
		Provider:       string(provider),
		ExternalTeamID: teamID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toIntegrationModel(row), nil
}

func (s *integrationStore) Upsert(ctx context.Context, integration *model.Integration) error {
	row, err := s.queries.UpsertIntegration(ctx, sqlc.UpsertIntegrationParams{
		ID:             integration.ID,
		OrganizationID: integration.OrganizationID,
		Provider:       string(integration.Provider),
		ExternalTeamID: integration.ExternalTeamID,
		TeamName:       integration.TeamName,
	})
	if err != nil {
		return err
	}
	*integration = *toIntegrationModel(row)
	return nil
}

func (s *integrationStore) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	return s.queries.SetIntegrationEnabled(ctx, sqlc.SetIntegrationEnabledParams{
		ID:        id,
		IsEnabled: enabled,
	})
}

func (s *integrationStore) ListEnabled(ctx context.Context, provider model.Provider) ([]model.Integration, error) {
	rows, err := s.queries.ListEnabledIntegrationsByProvider(ctx, string(provider))
	if err != nil {
		return nil, err
	}
	result := make([]model.Integration, len(rows))
	for i, row := range rows {
		result[i] = *toIntegrationModel(row)
	}
	return result, nil
}

func toIntegrationModel(row sqlc.Integration) *model.Integration {
	return &model.Integration{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		Provider:       model.Provider(row.Provider),
		ExternalTeamID: row.ExternalTeamID,
		TeamName:       row.TeamName,
		IsEnabled:      row.IsEnabled,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
