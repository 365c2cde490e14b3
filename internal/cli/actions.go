package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/internal/action/dto"
	"github.com/fekuna/omnipos-salesinsight-service/internal/action/listener"
	"github.com/fekuna/omnipos-salesinsight-service/internal/model"
	"github.com/spf13/cobra"
)

func registerActionCmds(root *cobra.Command, s *session) {
	actions := &cobra.Command{
		Use:   "actions",
		Short: "Track sales follow-up actions",
		Long: `Actions are follow-ups accepted for a customer. Each starts in progress and
is due for review ACTION_REVIEW_WEEKS after acceptance. Use ACTIONS_STORE=postgres
to keep them between invocations.`,
	}
	actions.AddCommand(
		newActionAddCmd(s),
		newActionListCmd(s),
		newActionStatusCmd(s),
		newActionCompleteCmd(s),
		newActionDeleteCmd(s),
		newActionCountCmd(s),
		newActionTailCmd(s),
	)
	root.AddCommand(actions)
}

func newActionAddCmd(s *session) *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "add <customer-id> <description>",
		Short: "Accept a new action for a customer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.app.Actions.AddAction(cmd.Context(), &dto.AddActionInput{
				CustomerID:  args[0],
				Description: args[1],
				CreatedBy:   by,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added action %s for %s, review on %s\n",
				a.ID, a.CustomerID, a.ReviewDate.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "analyst accepting the action")
	return cmd
}

func newActionListCmd(s *session) *cobra.Command {
	var (
		customerID string
		status     string
		overdue    bool
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters := &dto.ActionFilters{CustomerID: customerID, Status: model.ActionStatus(status)}
			if overdue {
				now := time.Now().UTC()
				filters.OverdueAt = &now
			}
			actions, err := s.app.Actions.ListActions(cmd.Context(), filters)
			if err != nil {
				return err
			}
			if asJSON {
				if actions == nil {
					actions = []model.Action{}
				}
				return writeJSON(cmd.OutOrStdout(), actions)
			}
			renderActions(cmd.OutOrStdout(), actions)
			return nil
		},
	}
	cmd.Flags().StringVarP(&customerID, "customer", "c", "", "only this customer")
	cmd.Flags().StringVarP(&status, "status", "s", "", "waiting, in_progress or complete")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "only open actions past their review date")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print actions as JSON")
	return cmd
}

func newActionStatusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <waiting|in_progress|complete>",
		Short: "Change an action's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.app.Actions.UpdateStatus(cmd.Context(), args[0], model.ActionStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Action %s is now %s\n", a.ID, a.Status.Label())
			return nil
		},
	}
}

func newActionCompleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark an action complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.app.Actions.MarkComplete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Action %s is now %s\n", a.ID, a.Status.Label())
			return nil
		},
	}
}

func newActionDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.app.Actions.DeleteAction(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted action %s\n", args[0])
			return nil
		},
	}
}

func newActionCountCmd(s *session) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count actions by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			counts, err := s.app.Actions.CountByStatus(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), counts)
			}
			renderCounts(cmd.OutOrStdout(), counts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print counts as JSON")
	return cmd
}

func newActionTailCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "tail",
		Short: "Follow action events from Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.app.OpenEvents == nil {
				return errors.New("no action topic configured, set KAFKA_TOPIC_ACTIONS")
			}
			stream := s.app.OpenEvents()
			defer stream.Close()

			out := cmd.OutOrStdout()
			l := listener.NewActionListener(stream, func(e dto.ActionEvent) {
				fmt.Fprintf(out, "%s  %-20s %s  %s  %s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"), e.EventType,
					e.Payload.ID, e.Payload.CustomerID, e.Payload.Status.Label())
			}, s.app.Logger)
			l.Start(cmd.Context())
			return nil
		},
	}
}
