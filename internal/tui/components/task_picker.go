package components

import (
	"fmt"
	"io"
	"strings"

	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

var (
	taskPickerBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")).
				Padding(1, 2)

	taskPickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	taskPickerItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	taskPickerSelectedItemStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("39")).
					Bold(true)

	taskPickerDescStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	taskPickerHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))
)

// TaskPickerSelectMsg is sent when a task is selected
type TaskPickerSelectMsg struct {
	TaskID string
}

// TaskPickerCancelMsg is sent when the task picker is cancelled
type TaskPickerCancelMsg struct{}

// taskPickerItem implements list.Item for the task picker
type taskPickerItem struct {
	task task.Task
}

// Label is the one-line form used for sorting and plain prompts.
func Label(t task.Task) string {
	return fmt.Sprintf("%s (%s)", t.Title, t.Status)
}

func (i taskPickerItem) FilterValue() string {
	return i.task.Title + " " + i.task.ID
}

func (i taskPickerItem) Title() string {
	return Label(i.task)
}

func (i taskPickerItem) Description() string {
	parts := []string{"id: " + i.task.ID}
	if na := strings.TrimSpace(i.task.NextAction); na != "" {
		line, _, _ := strings.Cut(na, "\n")
		parts = append(parts, "next: "+line)
	}
	if !i.task.LastTouch.IsZero() {
		parts = append(parts, "touched: "+task.FormatDate(i.task.LastTouch))
	}
	return strings.Join(parts, " | ")
}

// taskPickerDelegate handles rendering of task picker items
type taskPickerDelegate struct{}

func (d taskPickerDelegate) Height() int  { return 2 }
func (d taskPickerDelegate) Spacing() int { return 1 }
func (d taskPickerDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d taskPickerDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(taskPickerItem)
	if !ok {
		return
	}

	title := item.Title()
	style := taskPickerItemStyle
	if index == m.Index() {
		style = taskPickerSelectedItemStyle
		title = "> " + title
	} else {
		title = "  " + title
	}

	fmt.Fprint(w, style.Render(title))
	fmt.Fprint(w, "\n  "+taskPickerDescStyle.Render(item.Description()))
}

// TaskPicker is a fuzzy finder for choosing one task
type TaskPicker struct {
	list         list.Model
	title        string
	visible      bool
	tasks        []task.Task
	selectedTask *task.Task
	width        int
}

// taskPickerFuzzyFilter ranks items with sahilm/fuzzy, best match first
func taskPickerFuzzyFilter(term string, targets []string) []list.Rank {
	if term == "" {
		return nil
	}

	matches := fuzzy.Find(term, targets)
	ranks := make([]list.Rank, len(matches))
	for i, match := range matches {
		ranks[i] = list.Rank{
			Index:          match.Index,
			MatchedIndexes: match.MatchedIndexes,
		}
	}
	return ranks
}

// NewTaskPicker creates a new task picker component
func NewTaskPicker(title string) *TaskPicker {
	l := list.New([]list.Item{}, taskPickerDelegate{}, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.FilterInput.Prompt = "Filter: "
	l.Styles.Title = taskPickerTitleStyle
	l.SetShowHelp(false)
	l.Filter = taskPickerFuzzyFilter

	tp := &TaskPicker{
		list:  l,
		title: title,
	}
	tp.SetWidth(80)
	return tp
}

// Show displays the picker with the given tasks, in the given order
func (tp *TaskPicker) Show(tasks []task.Task) tea.Cmd {
	tp.visible = true
	tp.tasks = tasks
	tp.selectedTask = nil

	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = taskPickerItem{task: t}
	}

	tp.list.ResetFilter()
	return tp.list.SetItems(items)
}

// Hide hides the task picker
func (tp *TaskPicker) Hide() {
	tp.visible = false
}

// IsVisible returns whether the task picker is visible
func (tp *TaskPicker) IsVisible() bool {
	return tp.visible
}

// GetSelectedTaskID returns the id of the selected task, or "" if none
func (tp *TaskPicker) GetSelectedTaskID() string {
	if tp.selectedTask == nil {
		return ""
	}
	return tp.selectedTask.ID
}

// SetWidth sets the width of the task picker
func (tp *TaskPicker) SetWidth(width int) {
	tp.width = width
	tp.list.SetSize(max(40, width-10), 15)
}

// Update handles Bubble Tea messages
func (tp *TaskPicker) Update(msg tea.Msg) (*TaskPicker, tea.Cmd) {
	if !tp.visible {
		return tp, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While the filter is being typed, esc and enter belong to the list.
		if tp.list.FilterState() == list.Filtering {
			break
		}
		switch msg.Type {
		case tea.KeyEsc:
			tp.Hide()
			return tp, func() tea.Msg {
				return TaskPickerCancelMsg{}
			}

		case tea.KeyEnter:
			item, ok := tp.list.SelectedItem().(taskPickerItem)
			if !ok {
				return tp, nil
			}

			selected := item.task
			tp.selectedTask = &selected
			tp.Hide()
			return tp, func() tea.Msg {
				return TaskPickerSelectMsg{TaskID: selected.ID}
			}
		}

	case tea.WindowSizeMsg:
		tp.SetWidth(msg.Width)
		return tp, nil
	}

	var cmd tea.Cmd
	tp.list, cmd = tp.list.Update(msg)
	return tp, cmd
}

// View renders the task picker
func (tp *TaskPicker) View() string {
	if !tp.visible {
		return ""
	}

	var content strings.Builder
	content.WriteString(tp.list.View())
	content.WriteString("\n\n")
	content.WriteString(taskPickerHelpStyle.Render("ENTER: select  ESC: cancel  /: filter"))

	return taskPickerBoxStyle.Render(content.String())
}
