package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/MikeBiancalana/tskctl/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickTask_EmptyTaskList(t *testing.T) {
	_, _, err := PickTask(nil, "Select a task")
	assert.ErrorIs(t, err, errNoTasks)
}

func TestTaskPickerModel_Messages(t *testing.T) {
	m := taskPickerModel{picker: components.NewTaskPicker("Select a task")}

	next, cmd := m.Update(components.TaskPickerSelectMsg{TaskID: "2024-01-01__001__a"})
	assert.Equal(t, "2024-01-01__001__a", next.(taskPickerModel).taskID)
	assert.NotNil(t, cmd)

	next, _ = m.Update(components.TaskPickerCancelMsg{})
	assert.True(t, next.(taskPickerModel).canceled)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, next.(taskPickerModel).canceled)
}

func TestPromptTaskNumber(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Title: "Alpha", Status: task.StatusActive},
		{ID: "b", Title: "Beta", Status: task.StatusPaused},
	}

	var out bytes.Buffer
	id := promptTaskNumber(newLineReader(strings.NewReader("2\n"), &out), tasks)

	assert.Equal(t, "b", id)
	assert.Equal(t, "1) Alpha (active) [a]\n2) Beta (paused) [b]\nSelect task number (blank to cancel): ", out.String())
}

func TestLineReader(t *testing.T) {
	var out bytes.Buffer
	r := newLineReader(strings.NewReader("  first  \nlast"), &out)

	got, err := r.Prompt("One")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	// A final line without a newline still counts.
	got, err = r.Prompt("Two")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = r.Prompt("Three")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "One: Two: Three: \n", out.String())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": FormatTree, "TREE": FormatTree, "json": FormatJSON, "tsv": FormatTSV, "Csv": FormatCSV} {
		got, err := parseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := parseFormat("xml")
	assert.Error(t, err)
}
