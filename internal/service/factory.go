package service

import (
	"nuco.app/chatops/common/llm"
	"nuco.app/chatops/internal/platform"
	"nuco.app/chatops/internal/store"
)

// Services wires the long-lived services. Token managers and their caches are
// shared, so build Services once per process.
type Services struct {
	stores    *store.Stores
	txRunner  TxRunner
	tokens    TokenRegistry
	actions   ActionExecutor
	analytics AnalyticsService
	oauth     OAuthClient
	llm       llm.Client
	hooks     InstallationHooks
}

func NewServices(stores *store.Stores, txRunner TxRunner, oauth OAuthClient, newClient platform.ClientFactory, actionCfg ActionConfig, llmClient llm.Client) *Services {
	tokens := NewTokenRegistry(stores.Integrations(), stores.IntegrationCredentials(), oauth)
	return &Services{
		stores:    stores,
		txRunner:  txRunner,
		tokens:    tokens,
		actions:   NewActionExecutor(tokens, newClient, actionCfg),
		analytics: NewAnalyticsService(txRunner, stores.Analytics()),
		oauth:     oauth,
		llm:       llmClient,
	}
}

func (s *Services) Tokens() TokenRegistry {
	return s.tokens
}

func (s *Services) Actions() ActionExecutor {
	return s.actions
}

func (s *Services) Analytics() AnalyticsService {
	return s.analytics
}

func (s *Services) Responder() Responder {
	return NewResponder(s.llm)
}

func (s *Services) Notifier(presence PresenceChecker) Notifier {
	return NewNotifier(presence, s.actions, s.analytics)
}

// SetInstallationHooks registers callbacks for installations made through
// Installations. Call it before serving requests.
func (s *Services) SetInstallationHooks(hooks InstallationHooks) {
	s.hooks = hooks
}

func (s *Services) Installations() InstallationService {
	return NewInstallationService(s.txRunner, s.stores.Integrations(), s.tokens, s.actions, s.oauth, s.hooks)
}
