package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/snapshot"
	"github.com/spf13/cobra"
)

func registerReportCmds(root *cobra.Command, s *session) {
	root.AddCommand(
		newListCmd(s, dto.ReportDecliners),
		newListCmd(s, dto.ReportGrowers),
		newOnePagerCmd(s),
		newExportCmd(s),
		newSummaryCmd(s),
		newWatchCmd(s),
	)
}

func newListCmd(s *session, kind dto.ReportKind) *cobra.Command {
	var (
		filter string
		limit  int
		asJSON bool
	)
	short := "List customers with the largest sales decline"
	if kind == dto.ReportGrowers {
		short = "List customers with the largest sales growth"
	}

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := &dto.ListInput{Filter: filter, Limit: limit}
			var (
				rep *dto.Report
				err error
			)
			if kind == dto.ReportGrowers {
				rep, err = s.app.Sales.ListGrowers(cmd.Context(), in)
			} else {
				rep, err = s.app.Sales.ListDecliners(cmd.Context(), in)
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			renderReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "case-insensitive customer id substring")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum rows (0 uses REPORT_LIMIT)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newOnePagerCmd(s *session) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "onepager <customer-id>",
		Short: "Explain one customer's year-over-year change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := s.app.Sales.GetOnePager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), op)
			}
			renderOnePager(cmd.OutOrStdout(), op)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the one-pager as JSON")
	return cmd
}

func newExportCmd(s *session) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <customer-id>",
		Short: "Write a customer's chart data as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := s.app.Sales.ExportChart(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return writeJSON(cmd.OutOrStdout(), chart)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := writeJSON(f, chart); err != nil {
				_ = f.Close()
				return fmt.Errorf("write %s: %w", output, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "chart data for %s written to %s\n", chart.CustomerID, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newSummaryCmd(s *session) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show portfolio totals and net momentum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum, err := s.app.Sales.GetSummary(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sum)
			}
			renderSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func newWatchCmd(s *session) *cobra.Command {
	var (
		interval time.Duration
		limit    int
		count    int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Redraw the dashboard on a timer",
		Long: `Watch refreshes the summary and the top decliners every interval. When a
refresh fails the last good dashboard stays on screen with the error below it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				interval = s.app.RefreshInterval
			}
			if interval <= 0 {
				return fmt.Errorf("refresh interval must be positive")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			out := cmd.OutOrStdout()
			holder := snapshot.NewHolder(s.app.Sales, dto.ListInput{Limit: limit}, s.app.Logger)
			refreshes := 0
			holder.Run(ctx, interval, func(d *snapshot.Dashboard, err error) {
				if ctx.Err() != nil {
					return
				}
				refreshes++
				if d != nil {
					fmt.Fprintln(out, mutedStyle.Render("as of "+d.TakenAt.Format(time.TimeOnly)))
					renderSummary(out, d.Summary)
					renderReport(out, d.Decliners)
				}
				if err != nil {
					fmt.Fprintln(out, downStyle.Render("refresh failed: "+err.Error()))
				}
				if count > 0 && refreshes >= count {
					cancel()
				}
			})
			return nil
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "refresh interval (default REFRESH_INTERVAL)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "decliners to show")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many refreshes (0 runs until interrupted)")
	return cmd
}
