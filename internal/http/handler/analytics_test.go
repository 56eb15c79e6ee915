package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"nuco.app/chatops/internal/http/handler"
	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/service"
)

var _ = Describe("AnalyticsHandler", func() {
	var (
		router *gin.Engine
		svc    *mockAnalyticsService
	)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockAnalyticsService{}
		h := handler.NewAnalyticsHandler(svc)

		g := router.Group("/integrations/:id/analytics")
		g.GET("/summary", h.Summary)
		g.GET("/top-users", h.TopUsers)
		g.GET("/top-channels", h.TopChannels)
		g.GET("/event-counts", h.EventCounts)
		g.GET("/ai-performance", h.AIPerformance)
	})

	Describe("Summary", func() {
		It("defaults the period to week", func() {
			var gotPeriod string
			svc.usageSummaryFn = func(_ context.Context, id int64, period string) (*model.UsageSummary, error) {
				Expect(id).To(Equal(int64(7)))
				gotPeriod = period
				return &model.UsageSummary{Period: period, TotalEvents: 42, UniqueUsers: 5}, nil
			}

			w := get("/integrations/7/analytics/summary")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotPeriod).To(Equal(service.PeriodWeek))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["total_events"]).To(BeEquivalentTo(42))
			Expect(resp["unique_users"]).To(BeEquivalentTo(5))
		})

		It("returns 400 for an unknown period", func() {
			svc.usageSummaryFn = func(_ context.Context, _ int64, period string) (*model.UsageSummary, error) {
				return nil, fmt.Errorf("%w: unknown period %q", service.ErrValidation, period)
			}

			w := get("/integrations/7/analytics/summary?period=decade")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("decade"))
		})

		It("returns 400 for a malformed integration id", func() {
			w := get("/integrations/abc/analytics/summary")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 on storage failures", func() {
			svc.usageSummaryFn = func(context.Context, int64, string) (*model.UsageSummary, error) {
				return nil, fmt.Errorf("querying usage summary: connection reset")
			}

			w := get("/integrations/7/analytics/summary")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).NotTo(ContainSubstring("connection reset"))
		})
	})

	Describe("TopUsers", func() {
		It("passes the limit through", func() {
			var gotLimit int
			svc.topUsersFn = func(_ context.Context, _ int64, limit int) ([]model.UserActivity, error) {
				gotLimit = limit
				return []model.UserActivity{{ExternalUserID: "U1", MessagesReceived: 12}}, nil
			}

			w := get("/integrations/7/analytics/top-users?limit=3")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotLimit).To(Equal(3))
			Expect(w.Body.String()).To(ContainSubstring(`"U1"`))
		})

		It("leaves an invalid limit to the service default", func() {
			gotLimit := -1
			svc.topUsersFn = func(_ context.Context, _ int64, limit int) ([]model.UserActivity, error) {
				gotLimit = limit
				return nil, nil
			}

			get("/integrations/7/analytics/top-users?limit=lots")

			Expect(gotLimit).To(Equal(0))
		})
	})

	It("returns top channels", func() {
		svc.topChannelsFn = func(context.Context, int64, int) ([]model.ChannelActivity, error) {
			return []model.ChannelActivity{{ExternalChannelID: "C1", UniqueUsers: 3}}, nil
		}

		w := get("/integrations/7/analytics/top-channels")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"C1"`))
	})

	It("returns event counts keyed by event name", func() {
		svc.eventCountsFn = func(context.Context, int64, string) (map[string]int64, error) {
			return map[string]int64{"message_received": 9, "command_help": 2}, nil
		}

		w := get("/integrations/7/analytics/event-counts?period=day")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"period":"day","counts":{"message_received":9,"command_help":2}}`))
	})

	It("returns ai performance metrics", func() {
		svc.aiPerformanceFn = func(_ context.Context, _ int64, period string) (*model.AIPerformanceMetrics, error) {
			return &model.AIPerformanceMetrics{Period: period, AvgResponseTimeMs: 850, SampleCount: 4}, nil
		}

		w := get("/integrations/7/analytics/ai-performance?period=month")

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["period"]).To(Equal("month"))
		Expect(resp["sample_count"]).To(BeEquivalentTo(4))
	})
})
