package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MikeBiancalana/tskctl/internal/config"
	"github.com/MikeBiancalana/tskctl/internal/logger"
	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/spf13/cobra"
)

// errSilent marks failures whose details were already printed.
var errSilent = errors.New("silent failure")

// app carries what every command needs once flags are parsed.
type app struct {
	dir            string
	nonInteractive bool
	quiet          bool
	cfg            *config.Config
	logger         *slog.Logger
	clock          task.Clock

	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	terminal bool
	lines    *lineReader
}

// NewRootCmd builds the command tree. clock may be nil for the system clock.
func NewRootCmd(clock task.Clock) *cobra.Command {
	a := &app{clock: clock}

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "tskctl - filesystem task cases",
		Long:          `Manage task case directories (.tasks/<id>/) that live next to your projects: create, update, validate, list and index them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.dir, "cd", "C", ".", "Run as if started in this directory")
	root.PersistentFlags().BoolVar(&a.nonInteractive, "non-interactive", false, "Never prompt; missing input is an error")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress informational output")

	root.AddCommand(
		newValidateCmd(a),
		newListCmd(a),
		newHereCmd(a),
		newShowCmd(a),
		newNewCmd(a),
		newStatusCmd(a),
		newDoneCmd(a),
		newNextCmd(a),
		newTouchCmd(a),
		newIndexCmd(a),
		newWatchCmd(a),
	)
	return root
}

// init resolves the working directory and loads config and logging.
func (a *app) init(cmd *cobra.Command) error {
	dir, err := filepath.Abs(a.dir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	a.dir = dir

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.Initialize()
	a.logger = logger.GetLogger()
	if a.clock == nil {
		a.clock = task.SystemClock
	}

	a.in = cmd.InOrStdin()
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()
	a.terminal = isTerminal(a.in) && isTerminal(a.out)
	a.lines = newLineReader(a.in, a.out)
	return nil
}

// prompter returns nil in non-interactive mode.
func (a *app) prompter() task.Prompter {
	if a.nonInteractive {
		return nil
	}
	if a.terminal {
		return huhPrompter{}
	}
	return a.lines
}

func (a *app) service() *task.Service {
	return task.NewService(a.clock, a.prompter(), a.logger)
}

func (a *app) project() task.Project {
	return task.Project{RootDir: a.dir, TasksDir: filepath.Join(a.dir, task.StoreDirName)}
}

func (a *app) printf(format string, args ...any) {
	if !a.quiet {
		fmt.Fprintf(a.out, format, args...)
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	defer logger.Close()

	if err := NewRootCmd(nil).Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
