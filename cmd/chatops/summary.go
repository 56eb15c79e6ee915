package main

import (
	"github.com/spf13/cobra"

	"nuco.app/chatops/internal/service"
)

func summaryCmd() *cobra.Command {
	var (
		integrationID int64
		period        string
		limit         int
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print usage analytics for an integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			analytics := a.services.Analytics()
			summary, err := analytics.UsageSummary(ctx, integrationID, period)
			if err != nil {
				return err
			}
			users, err := analytics.TopActiveUsers(ctx, integrationID, limit)
			if err != nil {
				return err
			}
			channels, err := analytics.TopActiveChannels(ctx, integrationID, limit)
			if err != nil {
				return err
			}
			ai, err := analytics.AIPerformanceMetrics(ctx, integrationID, period)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"summary":        summary,
				"top_users":      users,
				"top_channels":   channels,
				"ai_performance": ai,
			})
		},
	}

	cmd.Flags().Int64Var(&integrationID, "integration", 0, "Integration ID")
	cmd.Flags().StringVar(&period, "period", service.PeriodWeek, "Reporting period (day, week, month, year, all)")
	cmd.Flags().IntVar(&limit, "limit", service.DefaultTopLimit, "Number of top users and channels")
	_ = cmd.MarkFlagRequired("integration")

	return cmd
}
