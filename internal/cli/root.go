// Package cli is the operator command line over the sales insight core.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// session carries the App from the root's pre-run hook into the subcommands.
type session struct {
	build   Builder
	verbose bool
	app     *App
}

// NewRootCmd builds a fresh command tree. Tests pass a Builder that wires an
// in-process App; main passes BuildFromEnv.
func NewRootCmd(build Builder) *cobra.Command {
	s := &session{build: build}

	root := &cobra.Command{
		Use:   "insight",
		Short: "Year-over-year customer sales insight",
		Long: `Insight ranks customers by year-over-year sales movement and explains a
single customer's change as price, volume, mix, returns and branch effects.

Data comes from the seeded synthetic generator or the ClickHouse warehouse,
selected by DATA_MODE.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := s.build(cmd.Context(), s.verbose)
			if err != nil {
				return err
			}
			s.app = app
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if s.app == nil {
				return nil
			}
			return s.app.Close()
		},
	}
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "log to stderr")

	registerReportCmds(root, s)
	registerActionCmds(root, s)
	return root
}

// Execute runs the CLI wired from the environment.
func Execute(ctx context.Context) error {
	return NewRootCmd(BuildFromEnv).ExecuteContext(ctx)
}
