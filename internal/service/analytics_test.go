package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"nuco.app/chatops/internal/model"
	"nuco.app/chatops/internal/service"
)

var _ = Describe("AnalyticsService", func() {
	var (
		ctx       context.Context
		analytics *mockAnalyticsStore
		svc       service.AnalyticsService
	)

	BeforeEach(func() {
		ctx = context.Background()
		analytics = &mockAnalyticsStore{}
		svc = service.NewAnalyticsService(txThrough(&mockStoreProvider{analytics: analytics}), analytics)
	})

	Describe("TrackEvent", func() {
		It("records the event and both counters in order", func() {
			analytics.ensureEventTypeFn = func(_ context.Context, et *model.EventType) error {
				Expect(et.Name).To(Equal("command_help"))
				Expect(et.Category).To(Equal(model.EventCategoryCommand))
				et.ID = 501
				return nil
			}
			analytics.createEventFn = func(_ context.Context, e *model.Event) error {
				Expect(e.EventTypeID).To(Equal(int64(501)))
				Expect(*e.ExternalUserID).To(Equal("U1"))
				Expect(*e.ExternalChannelID).To(Equal("C1"))
				Expect(*e.ExternalTeamID).To(Equal("T1"))
				var meta map[string]any
				Expect(json.Unmarshal(e.Metadata, &meta)).To(Succeed())
				Expect(meta).To(HaveKeyWithValue("args", "now"))
				return nil
			}
			analytics.incrementUserActivityFn = func(_ context.Context, integrationID int64, userID string, d model.ActivityDelta) error {
				Expect(integrationID).To(Equal(int64(9)))
				Expect(userID).To(Equal("U1"))
				Expect(d).To(Equal(model.ActivityDelta{Commands: 1}))
				return nil
			}

			err := svc.TrackEvent(ctx, service.TrackEventParams{
				IntegrationID:     9,
				EventName:         "command_help",
				ExternalUserID:    "U1",
				ExternalChannelID: "C1",
				ExternalTeamID:    "T1",
				Metadata:          map[string]any{"args": "now"},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(analytics.calls).To(Equal([]string{
				"EnsureEventType", "CreateEvent", "IncrementUserActivity",
				"RegisterChannelMember", "IncrementChannelActivity",
			}))
		})

		It("defaults metadata to an empty object", func() {
			analytics.createEventFn = func(_ context.Context, e *model.Event) error {
				Expect(string(e.Metadata)).To(Equal("{}"))
				return nil
			}
			Expect(svc.TrackEvent(ctx, service.TrackEventParams{IntegrationID: 1, EventName: "message_sent"})).To(Succeed())
			Expect(analytics.calls).To(Equal([]string{"EnsureEventType", "CreateEvent"}))
		})

		It("increments unique users once per channel member", func() {
			seen := map[string]bool{}
			analytics.registerChannelMemberFn = func(_ context.Context, _ int64, channelID, userID string) (bool, error) {
				key := channelID + "/" + userID
				first := !seen[key]
				seen[key] = true
				return first, nil
			}
			var newMembers []bool
			analytics.incrementChannelActivityFn = func(_ context.Context, _ int64, _ string, _ model.ActivityDelta, newMember bool) error {
				newMembers = append(newMembers, newMember)
				return nil
			}

			for range 3 {
				Expect(svc.TrackEvent(ctx, service.TrackEventParams{
					IntegrationID: 1, EventName: model.EventMessageReceived,
					ExternalUserID: "U1", ExternalChannelID: "C1",
				})).To(Succeed())
			}
			Expect(svc.TrackEvent(ctx, service.TrackEventParams{
				IntegrationID: 1, EventName: model.EventMessageReceived,
				ExternalUserID: "U2", ExternalChannelID: "C1",
			})).To(Succeed())

			Expect(newMembers).To(Equal([]bool{true, false, false, true}))
		})

		It("updates the channel without a member when no user is given", func() {
			analytics.incrementChannelActivityFn = func(_ context.Context, _ int64, _ string, _ model.ActivityDelta, newMember bool) error {
				Expect(newMember).To(BeFalse())
				return nil
			}
			Expect(svc.TrackEvent(ctx, service.TrackEventParams{
				IntegrationID: 1, EventName: model.EventMessageSent, ExternalChannelID: "C1",
			})).To(Succeed())
			Expect(analytics.calls).NotTo(ContainElement("RegisterChannelMember"))
		})

		It("aborts the transaction on store failure", func() {
			analytics.createEventFn = func(context.Context, *model.Event) error {
				return errors.New("insert failed")
			}
			err := svc.TrackEvent(ctx, service.TrackEventParams{IntegrationID: 1, EventName: "message_sent", ExternalUserID: "U1"})
			Expect(err).To(MatchError(ContainSubstring("insert failed")))
			Expect(analytics.calls).NotTo(ContainElement("IncrementUserActivity"))
		})

		It("rejects an empty event name", func() {
			err := svc.TrackEvent(ctx, service.TrackEventParams{IntegrationID: 1})
			Expect(err).To(MatchError(service.ErrValidation))
		})
	})

	Describe("TrackAIPerformance", func() {
		It("assigns an id and stores the sample", func() {
			var stored *model.AIPerformanceSample
			analytics.createAISampleFn = func(_ context.Context, s *model.AIPerformanceSample) error {
				stored = s
				return nil
			}
			sample := &model.AIPerformanceSample{IntegrationID: 1, MessageID: "1.1", ResponseTimeMs: 820, Model: "gpt-4o-mini"}
			Expect(svc.TrackAIPerformance(ctx, sample)).To(Succeed())
			Expect(stored.ID).NotTo(BeZero())
		})

		It("stamps the sample with the current time so windowed metrics see it", func() {
			var stored *model.AIPerformanceSample
			analytics.createAISampleFn = func(_ context.Context, s *model.AIPerformanceSample) error {
				stored = s
				return nil
			}
			before := time.Now()
			Expect(svc.TrackAIPerformance(ctx, &model.AIPerformanceSample{IntegrationID: 1, MessageID: "1.2"})).To(Succeed())
			Expect(stored.CreatedAt).To(BeTemporally(">=", before))
			Expect(stored.CreatedAt).To(BeTemporally("<=", time.Now()))
		})

		It("keeps an explicit timestamp", func() {
			var stored *model.AIPerformanceSample
			analytics.createAISampleFn = func(_ context.Context, s *model.AIPerformanceSample) error {
				stored = s
				return nil
			}
			at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			Expect(svc.TrackAIPerformance(ctx, &model.AIPerformanceSample{IntegrationID: 1, CreatedAt: at})).To(Succeed())
			Expect(stored.CreatedAt).To(Equal(at))
		})
	})

	Describe("periods", func() {
		It("queries the last 24 hours for day", func() {
			analytics.usageSummaryFn = func(_ context.Context, _ int64, since *time.Time, until time.Time) (*model.UsageSummary, error) {
				Expect(since).NotTo(BeNil())
				Expect(until.Sub(*since)).To(Equal(24 * time.Hour))
				return &model.UsageSummary{TotalEvents: 3}, nil
			}
			summary, err := svc.UsageSummary(ctx, 1, service.PeriodDay)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Period).To(Equal("day"))
			Expect(summary.TotalEvents).To(Equal(int64(3)))
		})

		DescribeTable("maps periods to windows",
			func(period string, window time.Duration) {
				var got time.Duration
				analytics.eventCountsFn = func(_ context.Context, _ int64, since *time.Time, until time.Time) (map[string]int64, error) {
					got = until.Sub(*since)
					return nil, nil
				}
				_, err := svc.EventCountsByType(ctx, 1, period)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(window))
			},
			Entry("week", "week", 7*24*time.Hour),
			Entry("month", "month", 30*24*time.Hour),
			Entry("year", "year", 365*24*time.Hour),
		)

		It("leaves the lower bound open for all", func() {
			analytics.aiMetricsFn = func(_ context.Context, _ int64, since *time.Time, _ time.Time) (*model.AIPerformanceMetrics, error) {
				Expect(since).To(BeNil())
				return &model.AIPerformanceMetrics{}, nil
			}
			metrics, err := svc.AIPerformanceMetrics(ctx, 1, service.PeriodAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(metrics.Period).To(Equal("all"))
		})

		It("rejects unknown periods", func() {
			_, err := svc.UsageSummary(ctx, 1, "fortnight")
			Expect(err).To(MatchError(service.ErrValidation))
		})
	})

	DescribeTable("top lists clamp the limit",
		func(requested int, expected int32) {
			var got int32
			analytics.topUsersFn = func(_ context.Context, _ int64, limit int32) ([]model.UserActivity, error) {
				got = limit
				return nil, nil
			}
			_, err := svc.TopActiveUsers(ctx, 1, requested)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(expected))
		},
		Entry("zero uses the default", 0, int32(10)),
		Entry("negative uses the default", -4, int32(10)),
		Entry("in range is kept", 25, int32(25)),
		Entry("above the cap is capped", 500, int32(100)),
	)

	It("returns top channels from the store", func() {
		analytics.topChannelsFn = func(_ context.Context, _ int64, limit int32) ([]model.ChannelActivity, error) {
			Expect(limit).To(Equal(int32(5)))
			return []model.ChannelActivity{{ExternalChannelID: "C1", TotalInteractions: 12}}, nil
		}
		channels, err := svc.TopActiveChannels(ctx, 1, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(channels).To(HaveLen(1))
	})
})
