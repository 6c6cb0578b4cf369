package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeBiancalana/tskctl/internal/perf"
	"github.com/MikeBiancalana/tskctl/internal/scan"
	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/spf13/cobra"
)

const (
	slowCommand = 2 * time.Second
	slowTask    = 50 * time.Millisecond
)

// levelFlag registers -L. The configured level applies unless the flag is set.
func levelFlag(cmd *cobra.Command, level *int) {
	cmd.Flags().IntVarP(level, "level", "L", 2, "Maximum directory depth to search for projects")
}

func (a *app) level(cmd *cobra.Command, flagValue int) int {
	if cmd.Flags().Changed("level") {
		return flagValue
	}
	return a.cfg.Level
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		level      int
		checkLinks bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every task under the current directory",
		Long:  `Scans for projects with a .tasks store, parses each task and reports convention violations. Exits non-zero when anything is wrong.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timer := perf.NewTimer("validate", a.logger, slowCommand)
			defer timer.Stop()
			perTask := perf.NewRecorder("validate_task", a.logger, slowTask)
			defer perTask.LogStats(slog.LevelDebug)

			var checked, failed int
			for p := range scan.Projects(a.dir, a.level(cmd, level)) {
				for tf := range scan.TaskFiles(p) {
					checked++
					var (
						res task.Result
						err error
					)
					perTask.Time(func() {
						var t *task.Task
						if t, err = task.Parse(tf.TaskDir, tf.TaskID); err != nil {
							return
						}
						res = task.ValidateFile(t, tf.TaskDir, task.ValidateOptions{
							ExpectedID:  tf.TaskID,
							CheckLinks:  checkLinks,
							ProjectRoot: p.RootDir,
						})
					})
					if err != nil {
						failed++
						fmt.Fprintln(a.out, err)
						continue
					}
					if res.OK() {
						continue
					}
					failed++
					fmt.Fprintln(a.out, res.Path)
					for _, issue := range res.Issues {
						fmt.Fprintf(a.out, "  - %s: %s\n", issue.Code, issue.Message)
					}
				}
			}

			a.logger.Info("validate_done", "root", a.dir, "checked", checked, "failed", failed)
			if failed > 0 {
				return errSilent
			}
			return nil
		},
	}

	levelFlag(cmd, &level)
	cmd.Flags().BoolVar(&checkLinks, "check-links", false, "Also check that file links exist inside the project")
	return cmd
}
