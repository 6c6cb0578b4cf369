package cli

import (
	"github.com/MikeBiancalana/tskctl/internal/render"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "show [task-id]",
		Short: "Show task details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, err := a.resolveTask(firstArg(args))
			if err != nil {
				return err
			}

			render.Detail(a.out, t, render.Options{
				Color: a.cfg.Color && !noColor,
				Today: a.clock.Today(),
				Width: a.width(),
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

// width is the terminal width of stdout, or 0 when unknown.
func (a *app) width() int {
	if !a.terminal {
		return 0
	}
	f, ok := a.out.(interface{ Fd() uintptr })
	if !ok {
		return 0
	}
	w, _, err := term.GetSize(f.Fd())
	if err != nil {
		return 0
	}
	return w
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
