package cli

import (
	"slices"

	"github.com/MikeBiancalana/tskctl/internal/perf"
	"github.com/MikeBiancalana/tskctl/internal/render"
	"github.com/MikeBiancalana/tskctl/internal/scan"
	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/spf13/cobra"
)

type listOptions struct {
	level   int
	format  string
	noColor bool
}

func newListCmd(a *app) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects and their tasks as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(a.level(cmd, opts.level), opts)
		},
	}
	levelFlag(cmd, &opts.level)
	addListFlags(cmd, opts)
	return cmd
}

func newHereCmd(a *app) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "here",
		Short: "List the tasks of the current directory only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(0, opts)
		},
	}
	addListFlags(cmd, opts)
	return cmd
}

func addListFlags(cmd *cobra.Command, opts *listOptions) {
	cmd.Flags().StringVar(&opts.format, "format", "tree", "Output format (tree, json, tsv, csv)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
}

func (a *app) runList(level int, opts *listOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}

	timer := perf.NewTimer("list", a.logger, slowCommand)
	defer timer.Stop()

	projects := slices.Collect(scan.Projects(a.dir, level))
	today := a.clock.Today()

	if format == FormatTree {
		if len(projects) == 0 {
			return nil
		}
		tree := render.BuildTree(a.dir, projects)
		render.AttachTasks(tree)
		render.Tree(a.out, tree, render.Options{Color: a.cfg.Color && !opts.noColor, Today: today})
		return nil
	}

	var rows []listedTask
	for _, p := range projects {
		var tasks []task.Task
		dirs := map[string]string{}
		for tf := range scan.TaskFiles(p) {
			t, err := task.Parse(tf.TaskDir, tf.TaskID)
			if err != nil {
				a.logger.Debug("list_skip_invalid", "dir", tf.TaskDir, "error", err)
				continue
			}
			tasks = append(tasks, *t)
			dirs[t.ID] = tf.TaskDir
		}
		for _, t := range task.SortTasks(tasks) {
			rows = append(rows, newListedTask(p, dirs[t.ID], &t, today))
		}
	}

	switch format {
	case FormatJSON:
		return formatTasksJSON(a.out, rows)
	case FormatTSV:
		return formatTasksTSV(a.out, rows)
	default:
		return formatTasksCSV(a.out, rows)
	}
}
