package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newReportsCommand(state *commandState) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "reports [sync-id]",
		Short: "List recent sync reports, or show one by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: state.run(func(cmd *cobra.Command, args []string, svc *Services) error {
			if len(args) == 1 {
				report, err := svc.Reports.GetReport(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			}

			reports, err := svc.Reports.ListReports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeReportTable(cmd.OutOrStdout(), reports)
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum reports to list")
	return cmd
}

func newReviewsCommand(state *commandState) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "List matches waiting for manual review",
		Args:  cobra.NoArgs,
		RunE: state.run(func(cmd *cobra.Command, _ []string, svc *Services) error {
			reviews, err := svc.Links.PendingReviews(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), reviews)
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum reviews to list")
	return cmd
}

func newLinkCommand(state *commandState) *cobra.Command {
	return &cobra.Command{
		Use:     "link <candidate-id> <external-id>",
		Short:   "Link a provider player to a roster player by hand",
		Example: `  syncctl link 42 19801`,
		Args:    cobra.ExactArgs(2),
		RunE: state.run(func(cmd *cobra.Command, args []string, svc *Services) error {
			candidateID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("candidate id must be an integer: %w", err)
			}
			result, err := svc.Links.Link(cmd.Context(), candidateID, args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		}),
	}
}

func newBackupCommand(state *commandState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Inspect roster backups",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <location>",
		Short: "Print a roster snapshot written before a sync",
		Args:  cobra.ExactArgs(1),
		RunE: state.run(func(cmd *cobra.Command, args []string, svc *Services) error {
			if svc.Backup == nil {
				return fmt.Errorf("roster backups are disabled; set BACKUP_ENABLED=true")
			}
			snapshot, err := svc.Backup.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), snapshot)
		}),
	})
	return cmd
}
