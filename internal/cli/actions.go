package cli

import (
	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	var message, next string

	cmd := &cobra.Command{
		Use:   "status <status> [task-id]",
		Short: "Change a task's status",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := task.ParseStatus(args[0])
			if err != nil {
				return err
			}
			t, dir, err := a.resolveTask(firstArg(args[1:]))
			if err != nil {
				return err
			}
			if err := a.service().SetStatus(t, dir, status, message, next); err != nil {
				return err
			}
			a.refreshIndex(t, dir)
			a.printf("%s: %s\n", t.ID, t.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Log message (required)")
	cmd.Flags().StringVar(&next, "next", "", "Next action (required unless status is done)")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "done [task-id]",
		Short: "Mark a task as done",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, dir, err := a.resolveTask(firstArg(args))
			if err != nil {
				return err
			}
			if err := a.service().SetStatus(t, dir, task.StatusDone, message, ""); err != nil {
				return err
			}
			a.refreshIndex(t, dir)
			a.printf("%s: %s\n", t.ID, t.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Log message (required)")
	return cmd
}

func newNextCmd(a *app) *cobra.Command {
	var message, next string

	cmd := &cobra.Command{
		Use:   "next [task-id]",
		Short: "Replace a task's next action",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, dir, err := a.resolveTask(firstArg(args))
			if err != nil {
				return err
			}
			if err := a.service().SetNextAction(t, dir, next, message); err != nil {
				return err
			}
			a.refreshIndex(t, dir)
			a.printf("%s: next %s\n", t.ID, t.NextAction)
			return nil
		},
	}

	cmd.Flags().StringVar(&next, "next", "", "New next action (required)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Log message (required)")
	return cmd
}

func newTouchCmd(a *app) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "touch [task-id]",
		Short: "Log activity without changing the task's state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, dir, err := a.resolveTask(firstArg(args))
			if err != nil {
				return err
			}
			if err := a.service().Touch(t, dir, message); err != nil {
				return err
			}
			a.refreshIndex(t, dir)
			a.printf("%s: touched %s\n", t.ID, task.FormatDate(t.LastTouch))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Log message (required)")
	return cmd
}
