package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"nuco.app/chatops/common/id"
	"nuco.app/chatops/common/llm"
	"nuco.app/chatops/common/logger"
	"nuco.app/chatops/common/otel"
	"nuco.app/chatops/core/config"
	"nuco.app/chatops/core/db"
	"nuco.app/chatops/internal/forward"
	"nuco.app/chatops/internal/http/handler/webhook"
	"nuco.app/chatops/internal/http/middleware"
	httprouter "nuco.app/chatops/internal/http/router"
	"nuco.app/chatops/internal/platform"
	"nuco.app/chatops/internal/presence"
	"nuco.app/chatops/internal/sentiment"
	"nuco.app/chatops/internal/service"
	"nuco.app/chatops/internal/store"
	"nuco.app/chatops/internal/threadctx"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "chatops starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.SnowflakeNode); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisClient, err := setupRedis(ctx, cfg.Redis)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	threads := setupThreadStore(ctx, redisClient, cfg.Redis)

	var llmClient llm.Client
	if cfg.LLM.Enabled() {
		llmClient, err = llm.New(llm.Config{
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create llm client", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "llm enabled", "model", llmClient.Model())
	} else {
		slog.InfoContext(ctx, "llm disabled, using lexicon sentiment and canned replies")
	}

	forwardClient, err := forward.New(forward.Config{
		BaseURL: cfg.Forward.BaseURL,
		Timeout: cfg.Forward.Timeout,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create forward client", "error", err)
		os.Exit(1)
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
		llmClient,
	)

	registry := presence.NewRegistry(func(integrationID int64) presence.ClientFunc {
		return func(ctx context.Context) (platform.Client, error) {
			return services.Actions().Client(ctx, integrationID)
		}
	})

	trackCtx, stopTracking := context.WithCancel(ctx)
	defer stopTracking()
	services.SetInstallationHooks(service.InstallationHooks{
		OnInstall: func(integrationID int64) {
			if cfg.Presence.Enabled {
				registry.Track(trackCtx, integrationID, cfg.Presence.RefreshInterval)
			}
		},
		OnRevoke: registry.Remove,
	})
	if cfg.Presence.Enabled {
		startPresenceTracking(trackCtx, services, registry, cfg.Presence.RefreshInterval)
	}

	slackHandler := webhook.NewSlackHandler(webhook.SlackHandlerConfig{
		SigningSecret: cfg.Slack.SigningSecret,
		CommandName:   cfg.Slack.CommandName,
	}, webhook.SlackHandlerDeps{
		Tokens:    services.Tokens(),
		Actions:   services.Actions(),
		Analytics: services.Analytics(),
		Responder: services.Responder(),
		Threads:   threads,
		Fast:      sentiment.NewLexicon(),
		Detailed:  sentiment.NewLLMAnalyzer(llmClient),
		Forward:   forwardClient,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, httprouter.Dependencies{
		Services: services,
		Presence: registry,
		Slack:    slackHandler,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	stopTracking()
	registry.StopAll()

	forwardsDone := make(chan struct{})
	go func() {
		slackHandler.Wait()
		close(forwardsDone)
	}()
	select {
	case <-forwardsDone:
	case <-shutdownCtx.Done():
		slog.WarnContext(shutdownCtx, "gave up waiting for background forwards")
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// setupRedis returns nil when REDIS_URL is empty.
func setupRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	slog.InfoContext(ctx, "redis connected", "prefix", cfg.KeyPrefix)
	return client, nil
}

func setupThreadStore(ctx context.Context, client *redis.Client, cfg config.RedisConfig) threadctx.Store {
	if client == nil {
		slog.WarnContext(ctx, "redis not configured, thread context is process-local")
		return threadctx.NewMemoryStore()
	}
	return threadctx.NewRedisStore(client, cfg.KeyPrefix, cfg.ThreadTTL)
}

func startPresenceTracking(ctx context.Context, services *service.Services, registry *presence.Registry, interval time.Duration) {
	integrations, err := services.Installations().ListEnabled(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list integrations for presence tracking", "error", err)
		return
	}
	for _, integration := range integrations {
		registry.Track(ctx, integration.ID, interval)
	}
	slog.InfoContext(ctx, "presence tracking started", "integrations", len(integrations), "interval", interval)
}

func setupRouter(cfg config.Config, deps httprouter.Dependencies) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, deps, httprouter.RouterConfig{
		AdminAPIKey:       cfg.AdminAPIKey,
		InstallSuccessURL: cfg.Slack.InstallSuccessURL,
	})

	return router
}

const banner = `
 ██████╗██╗  ██╗ █████╗ ████████╗ ██████╗ ██████╗ ███████╗
██╔════╝██║  ██║██╔══██╗╚══██╔══╝██╔═══██╗██╔══██╗██╔════╝
██║     ███████║███████║   ██║   ██║   ██║██████╔╝███████╗
██║     ██╔══██║██╔══██║   ██║   ██║   ██║██╔═══╝ ╚════██║
╚██████╗██║  ██║██║  ██║   ██║   ╚██████╔╝██║     ███████║
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝    ╚═════╝ ╚═╝     ╚══════╝
`
