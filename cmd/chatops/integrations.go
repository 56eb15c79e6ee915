package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func integrationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "integrations",
		Short: "List enabled integrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			integrations, err := a.services.Installations().ListEnabled(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTEAM\tNAME")
			for _, i := range integrations {
				name := ""
				if i.TeamName != nil {
					name = *i.TeamName
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i.ID, i.ExternalTeamID, name)
			}
			return tw.Flush()
		},
	}
}

func installCmd() *cobra.Command {
	var (
		code  string
		orgID int64
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the app from an OAuth authorization code",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var org *int64
			if cmd.Flags().Changed("organization") {
				org = &orgID
			}

			integration, err := a.services.Installations().Install(ctx, code, org)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed integration %d for team %s\n", integration.ID, integration.ExternalTeamID)
			fmt.Fprintf(cmd.OutOrStdout(), "webhook URL path: /webhooks/slack/%d\n", integration.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "OAuth authorization code")
	cmd.Flags().Int64Var(&orgID, "organization", 0, "Owning organization ID")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}

func revokeCmd() *cobra.Command {
	var integrationID int64

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an integration's token and disable it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.services.Installations().Revoke(ctx, integrationID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "integration %d revoked\n", integrationID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&integrationID, "integration", 0, "Integration ID")
	_ = cmd.MarkFlagRequired("integration")

	return cmd
}

func channelsCmd() *cobra.Command {
	var integrationID int64

	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List channels visible to an integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			channels, err := a.services.Installations().Channels(ctx, integrationID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tMEMBERS\tJOINED")
			for _, c := range channels {
				fmt.Fprintf(tw, "%s\t#%s\t%d\t%t\n", c.ID, c.Name, c.NumMembers, c.IsMember)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Int64Var(&integrationID, "integration", 0, "Integration ID")
	_ = cmd.MarkFlagRequired("integration")

	return cmd
}
