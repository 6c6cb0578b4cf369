package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/MikeBiancalana/tskctl/internal/config"
	"github.com/MikeBiancalana/tskctl/internal/scan"
	"github.com/MikeBiancalana/tskctl/internal/storage"
	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/MikeBiancalana/tskctl/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	errCancelled = errors.New("cancelled")
	errNoTasks   = errors.New("no tasks found")
)

// taskPickerModel is a simple Bubble Tea model for the task picker
type taskPickerModel struct {
	picker   *components.TaskPicker
	taskID   string
	canceled bool
}

func (m taskPickerModel) Init() tea.Cmd {
	return nil
}

func (m taskPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.canceled = true
			return m, tea.Quit
		}

	case components.TaskPickerSelectMsg:
		m.taskID = msg.TaskID
		return m, tea.Quit

	case components.TaskPickerCancelMsg:
		m.canceled = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m taskPickerModel) View() string {
	return m.picker.View()
}

// PickTask launches an interactive task picker and returns the selected task ID.
// Returns the task ID, whether it was canceled, and any error.
func PickTask(tasks []task.Task, title string) (taskID string, canceled bool, err error) {
	if len(tasks) == 0 {
		return "", false, errNoTasks
	}

	picker := components.NewTaskPicker(title)
	picker.Show(tasks)

	p := tea.NewProgram(taskPickerModel{picker: picker})
	finalModel, err := p.Run()
	if err != nil {
		return "", false, fmt.Errorf("failed to run task picker: %w", err)
	}

	result := finalModel.(taskPickerModel)
	return result.taskID, result.canceled, nil
}

// promptTaskNumber prints a numbered list and reads a choice. A blank,
// unreadable or out-of-range answer cancels.
func promptTaskNumber(lines *lineReader, tasks []task.Task) string {
	for i, t := range tasks {
		fmt.Fprintf(lines.out, "%d) %s [%s]\n", i+1, components.Label(t), t.ID)
	}
	answer, err := lines.Prompt("Select task number (blank to cancel)")
	if err != nil || answer == "" {
		return ""
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(tasks) {
		return ""
	}
	return tasks[n-1].ID
}

// selectableTasks parses every valid task in the project, sorted by label.
func selectableTasks(p task.Project) []task.Task {
	var tasks []task.Task
	for tf := range scan.TaskFiles(p) {
		t, err := task.Parse(tf.TaskDir, tf.TaskID)
		if err != nil {
			continue
		}
		tasks = append(tasks, *t)
	}
	slices.SortStableFunc(tasks, func(a, b task.Task) int {
		return strings.Compare(strings.ToLower(components.Label(a)), strings.ToLower(components.Label(b)))
	})
	return tasks
}

// resolveTask finds the task an action applies to. An explicit id must name
// an existing task directory and parse strictly. Without one the user picks
// among the valid tasks; a single task is chosen without asking.
func (a *app) resolveTask(id string) (*task.Task, string, error) {
	p := a.project()
	if !storage.IsDir(p.TasksDir) {
		return nil, "", fmt.Errorf("%w in: %s", task.ErrNoStore, a.dir)
	}

	if id = strings.TrimSpace(id); id != "" {
		dir := filepath.Join(p.TasksDir, id)
		if !storage.IsDir(dir) {
			return nil, "", fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
		}
		t, err := task.Parse(dir, id)
		if err != nil {
			return nil, "", err
		}
		return t, dir, nil
	}

	tasks := selectableTasks(p)
	if len(tasks) == 0 {
		return nil, "", errNoTasks
	}

	chosen, err := a.chooseTask(tasks)
	if err != nil {
		return nil, "", err
	}
	i := slices.IndexFunc(tasks, func(t task.Task) bool { return t.ID == chosen })
	if i < 0 {
		return nil, "", errCancelled
	}
	return &tasks[i], filepath.Join(p.TasksDir, chosen), nil
}

func (a *app) chooseTask(tasks []task.Task) (string, error) {
	if len(tasks) == 1 {
		return tasks[0].ID, nil
	}
	if a.nonInteractive {
		return "", fmt.Errorf("%w: task id", task.ErrInputRequired)
	}

	if a.terminal && a.cfg.Selector == config.SelectorPicker {
		id, canceled, err := PickTask(tasks, "Select a task")
		if err != nil {
			return "", err
		}
		if canceled || id == "" {
			return "", errCancelled
		}
		return id, nil
	}

	if id := promptTaskNumber(a.lines, tasks); id != "" {
		return id, nil
	}
	return "", errCancelled
}
