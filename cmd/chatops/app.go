package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"nuco.app/chatops/common/id"
	"nuco.app/chatops/common/logger"
	"nuco.app/chatops/core/config"
	"nuco.app/chatops/core/db"
	"nuco.app/chatops/internal/platform"
	"nuco.app/chatops/internal/service"
	"nuco.app/chatops/internal/store"
)

// app is the service graph a command runs against.
type app struct {
	cfg      config.Config
	database *db.DB
	services *service.Services
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg)
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := id.Init(cfg.SnowflakeNode); err != nil {
		return nil, fmt.Errorf("initializing id generator: %w", err)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	oauth := platform.NewOAuth(platform.OAuthConfig{
		ClientID:     cfg.Slack.ClientID,
		ClientSecret: cfg.Slack.ClientSecret,
		RedirectURI:  cfg.Slack.RedirectURI,
		APIURL:       cfg.Slack.APIURL,
	}, nil)

	services := service.NewServices(
		store.NewStores(database.Queries()),
		service.NewTxRunner(database),
		oauth,
		platform.NewClientFactory(cfg.Slack.APIURL, nil),
		service.ActionConfig{
			ReactionDelay: cfg.Actions.ReactionDelay,
			MaxReactions:  cfg.Actions.MaxReactions,
		},
		nil,
	)

	return &app{cfg: cfg, database: database, services: services}, nil
}

func (a *app) Close() {
	a.database.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
