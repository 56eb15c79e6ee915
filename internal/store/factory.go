package store

import (
	"nuco.app/chatops/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Integrations() IntegrationStore {
	return newIntegrationStore(s.queries)
}

func (s *Stores) IntegrationCredentials() IntegrationCredentialStore {
	return newIntegrationCredentialStore(s.queries)
}

func (s *Stores) Analytics() AnalyticsStore {
	return newAnalyticsStore(s.queries)
}
