package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newNewCmd(a *app) *cobra.Command {
	var (
		req    task.NewTaskRequest
		status string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task case in ./.tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := task.ParseStatus(status)
			if err != nil {
				return err
			}
			req.Status = s

			if !a.nonInteractive {
				if a.terminal {
					err = runInteractiveTaskForm(&req)
				} else {
					err = promptTaskRequest(a.lines, &req)
				}
				if err != nil {
					return err
				}
			}

			taskDir, err := a.service().Create(a.dir, req)
			if err != nil {
				return err
			}
			if t, err := task.Parse(taskDir, filepath.Base(taskDir)); err == nil {
				a.refreshIndex(t, taskDir)
			}
			fmt.Fprintln(a.out, taskDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&status, "status", string(task.StatusActive), "Initial status (active, waiting, paused, done)")
	cmd.Flags().StringVar(&req.NextAction, "next-action", "", "Next action (required unless status is done)")
	cmd.Flags().StringVar(&req.Summary, "summary", "", "Summary text")
	cmd.Flags().StringArrayVar(&req.Links, "link", nil, "Link as 'kind: value' or a file path (repeatable)")
	return cmd
}

// runInteractiveTaskForm fills the missing fields of req with a huh form.
func runInteractiveTaskForm(req *task.NewTaskRequest) error {
	var links string
	required := func(label string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", label)
			}
			return nil
		}
	}

	var fields []huh.Field
	if strings.TrimSpace(req.Title) == "" {
		fields = append(fields, huh.NewInput().
			Title("Title").
			Value(&req.Title).
			Validate(required("title")))
	}
	if req.Status != task.StatusDone && strings.TrimSpace(req.NextAction) == "" {
		fields = append(fields, huh.NewInput().
			Title("Next action").
			Value(&req.NextAction).
			Validate(required("next action")))
	}
	if strings.TrimSpace(req.Summary) == "" {
		fields = append(fields, huh.NewText().
			Title("Summary (optional)").
			Value(&req.Summary))
	}
	fields = append(fields, huh.NewText().
		Title("Links (optional, one per line)").
		Value(&links))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errCancelled
		}
		return fmt.Errorf("form cancelled: %w", err)
	}

	for _, l := range strings.Split(links, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			req.Links = append(req.Links, l)
		}
	}
	return nil
}

// promptTaskRequest asks for missing fields one line at a time. A missing
// title or next action is an error; the optional fields stop at end of input.
func promptTaskRequest(lines *lineReader, req *task.NewTaskRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		title, _ := lines.Prompt("Title")
		if title == "" {
			return &task.InputRequiredError{Field: "title"}
		}
		req.Title = title
	}

	if req.Status != task.StatusDone && strings.TrimSpace(req.NextAction) == "" {
		next, _ := lines.Prompt("Next action")
		if next == "" {
			return &task.InputRequiredError{Field: "next action"}
		}
		req.NextAction = next
	}

	if strings.TrimSpace(req.Summary) == "" {
		summary, err := lines.Prompt("Summary (optional)")
		if err != nil {
			return nil
		}
		req.Summary = summary
	}

	for {
		link, err := lines.Prompt("Link (optional, blank to finish)")
		if err != nil || link == "" {
			return nil
		}
		req.Links = append(req.Links, link)
	}
}
