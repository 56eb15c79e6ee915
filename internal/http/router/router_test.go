package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"nuco.app/chatops/internal/http/handler/webhook"
	"nuco.app/chatops/internal/http/router"
	"nuco.app/chatops/internal/platform"
	"nuco.app/chatops/internal/presence"
	"nuco.app/chatops/internal/service"
	"nuco.app/chatops/internal/store"
)

var _ = Describe("SetupRoutes", func() {
	var engine *gin.Engine

	setup := func(adminKey string) {
		gin.SetMode(gin.TestMode)
		engine = gin.New()

		services := service.NewServices(store.NewStores(nil), nil, nil, nil, service.ActionConfig{}, nil)
		registry := presence.NewRegistry(func(int64) presence.ClientFunc {
			return func(context.Context) (platform.Client, error) { return nil, service.ErrNotFound }
		})
		slack := webhook.NewSlackHandler(webhook.SlackHandlerConfig{SigningSecret: "secret"}, webhook.SlackHandlerDeps{
			Tokens: services.Tokens(),
		})

		router.SetupRoutes(engine, router.Dependencies{
			Services: services,
			Presence: registry,
			Slack:    slack,
		}, router.RouterConfig{AdminAPIKey: adminKey})
	}

	serve := func(method, path string, header http.Header) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
		for k, v := range header {
			req.Header[k] = v
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	It("serves the health check without credentials", func() {
		setup("admin-key")

		w := serve(http.MethodGet, "/health", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"status":"ok"}`))
	})

	It("protects the admin API", func() {
		setup("admin-key")

		w := serve(http.MethodGet, "/api/v1/integrations/1/analytics/summary", nil)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("disables the admin API without a configured key", func() {
		setup("")

		w := serve(http.MethodGet, "/api/v1/integrations", http.Header{"X-Admin-Api-Key": {"anything"}})

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("lets authorized callers through to the handlers", func() {
		setup("admin-key")

		w := serve(http.MethodGet, "/api/v1/integrations/abc/presence", http.Header{"Authorization": {"Bearer admin-key"}})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("routes webhooks without the admin key", func() {
		setup("admin-key")

		w := serve(http.MethodPost, "/webhooks/slack/1001", nil)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
