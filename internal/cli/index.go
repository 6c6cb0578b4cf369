package cli

import (
	"fmt"

	"github.com/MikeBiancalana/tskctl/internal/config"
	"github.com/MikeBiancalana/tskctl/internal/index"
	"github.com/MikeBiancalana/tskctl/internal/perf"
	"github.com/MikeBiancalana/tskctl/internal/storage"
	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/spf13/cobra"
)

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Maintain the SQLite task index",
		Long:  `The index is a disposable cache of every task found by a scan. It can always be rebuilt from the .tasks directories.`,
	}
	cmd.AddCommand(newIndexRebuildCmd(a), newIndexStaleCmd(a), newIndexListCmd(a))
	return cmd
}

func newIndexRebuildCmd(a *app) *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the index from the task directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := a.openIndex()
			if err != nil {
				return err
			}
			defer closeDB()

			a.printf("Rebuilding index from %s...\n", a.dir)
			timer := perf.NewTimer("index_rebuild", a.logger, slowCommand)
			stats, err := repo.Rebuild(a.dir, a.level(cmd, level))
			timer.Stop()
			if err != nil {
				return fmt.Errorf("failed to rebuild index: %w", err)
			}

			a.printf("✓ Indexed %d task(s) in %d project(s), skipped %d invalid\n", stats.Indexed, stats.Projects, stats.Skipped)
			return nil
		},
	}

	levelFlag(cmd, &level)
	return cmd
}

func newIndexStaleCmd(a *app) *cobra.Command {
	var (
		days   int
		format string
	)

	cmd := &cobra.Command{
		Use:   "stale",
		Short: "List open tasks not touched for a number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.StaleDays
			}
			if days < 0 {
				return fmt.Errorf("--days must be >= 0, got %d", days)
			}

			repo, closeDB, err := a.openIndex()
			if err != nil {
				return err
			}
			defer closeDB()

			today := a.clock.Today()
			entries, err := repo.Stale(today, days)
			if err != nil {
				return err
			}
			return a.writeEntries(format, entries)
		},
	}

	cmd.Flags().IntVar(&days, "days", 14, "Minimum days since last touch")
	cmd.Flags().StringVar(&format, "format", "tsv", "Output format (json, tsv, csv)")
	return cmd
}

func newIndexListCmd(a *app) *cobra.Command {
	var (
		all    bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed tasks of the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := a.openIndex()
			if err != nil {
				return err
			}
			defer closeDB()

			root := a.dir
			if all {
				root = ""
			}
			entries, err := repo.List(root)
			if err != nil {
				return err
			}
			return a.writeEntries(format, entries)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every indexed project")
	cmd.Flags().StringVar(&format, "format", "tsv", "Output format (json, tsv, csv)")
	return cmd
}

func (a *app) writeEntries(format string, entries []index.Entry) error {
	f, err := parseFormat(format)
	if err != nil {
		return err
	}

	today := a.clock.Today()
	rows := make([]listedTask, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		rows = append(rows, newListedTask(task.Project{RootDir: e.ProjectRoot}, e.TaskDir, &e.Task, today))
	}

	switch f {
	case FormatJSON:
		return formatTasksJSON(a.out, rows)
	case FormatCSV:
		return formatTasksCSV(a.out, rows)
	case FormatTSV:
		return formatTasksTSV(a.out, rows)
	default:
		return fmt.Errorf("unsupported format for index output: %s", f)
	}
}

func (a *app) openIndex() (*index.Repository, func(), error) {
	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database path: %w", err)
	}
	db, err := index.NewDatabase(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return index.NewRepository(db, a.logger), func() { db.Close() }, nil
}

// refreshIndex updates one task in an index that already exists. Failures
// are logged only; the task files stay authoritative.
func (a *app) refreshIndex(t *task.Task, taskDir string) {
	dbPath, err := config.DatabasePath()
	if err != nil {
		return
	}
	exists, err := storage.NewFileStore().Exists(dbPath)
	if err != nil || !exists {
		return
	}

	repo, closeDB, err := a.openIndex()
	if err != nil {
		a.logger.Warn("index_refresh_failed", "task_id", t.ID, "error", err)
		return
	}
	defer closeDB()
	if err := repo.Save(a.dir, taskDir, t); err != nil {
		a.logger.Warn("index_refresh_failed", "task_id", t.ID, "error", err)
	}
}
