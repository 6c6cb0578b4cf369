package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeBiancalana/tskctl/internal/storage"
	"github.com/MikeBiancalana/tskctl/internal/sync"
	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var checkLinks, updateIndex bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate tasks of the current project as they change",
		Long:  `Watches ./.tasks and prints a validation result for every task whose files change, until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runWatch(ctx, checkLinks, updateIndex)
		},
	}

	cmd.Flags().BoolVar(&checkLinks, "check-links", false, "Also check that file links exist inside the project")
	cmd.Flags().BoolVar(&updateIndex, "index", false, "Update the SQLite index as valid tasks change")
	return cmd
}

func (a *app) runWatch(ctx context.Context, checkLinks, updateIndex bool) error {
	p := a.project()
	if !storage.IsDir(p.TasksDir) {
		return fmt.Errorf("%w in: %s", task.ErrNoStore, a.dir)
	}

	w, err := sync.NewWatcher(p, checkLinks, a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	defer w.Stop()

	a.printf("Watching %s (Ctrl+C to stop)\n", p.TasksDir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Changes():
			if !ok {
				return nil
			}
			a.printChange(ev)
			if updateIndex && ev.Task != nil && ev.Result.OK() {
				a.refreshIndex(ev.Task, ev.TaskDir)
			}
		}
	}
}

func (a *app) printChange(ev sync.ChangeEvent) {
	switch {
	case ev.Removed:
		fmt.Fprintf(a.out, "%s: removed\n", ev.TaskID)
	case ev.Err != nil:
		fmt.Fprintln(a.out, ev.Err)
	case ev.Result.OK():
		fmt.Fprintf(a.out, "%s: ok\n", ev.TaskID)
	default:
		fmt.Fprintln(a.out, ev.Result.Path)
		for _, issue := range ev.Result.Issues {
			fmt.Fprintf(a.out, "  - %s: %s\n", issue.Code, issue.Message)
		}
	}
}
