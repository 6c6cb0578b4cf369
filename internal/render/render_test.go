package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MikeBiancalana/tskctl/internal/scan"
	"github.com/MikeBiancalana/tskctl/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func writeTask(t *testing.T, projectRoot, id string, st task.Status, touched time.Time, next string) {
	t.Helper()

	dir := filepath.Join(projectRoot, task.StoreDirName, id)
	require.NoError(t, os.MkdirAll(dir, 0755))
	tk := &task.Task{
		ID:         id,
		Title:      "Title " + id,
		Status:     st,
		Created:    touched,
		LastTouch:  touched,
		NextAction: next,
		LogLines:   []string{task.FormatDate(touched) + ": [created]"},
	}
	require.NoError(t, task.Write(dir, tk))
}

func TestTree(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	writeTask(t, root, "t_root", task.StatusWaiting, today.AddDate(0, 0, -3), "Ping\nsecond line")
	writeTask(t, filepath.Join(root, "b"), "t_b", task.StatusDone, today, "")
	writeTask(t, filepath.Join(root, "a", "x"), "t_ax2", task.StatusActive, today, "Go")
	writeTask(t, filepath.Join(root, "a", "x"), "t_ax1", task.StatusActive, today.AddDate(0, 0, -1), "Go")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", task.StoreDirName), 0755))

	var projects []task.Project
	for p := range scan.Projects(root, 3) {
		projects = append(projects, p)
	}
	tree := BuildTree(root, projects)
	AttachTasks(tree)

	var buf bytes.Buffer
	Tree(&buf, tree, Options{Color: true, Today: today})

	want := strings.Join([]string{
		root,
		"======",
		"- Title t_root (waiting: Ping, 3d) id: t_root",
		"======",
		"├── a",
		"│   └── x",
		"│       ======",
		"│       - Title t_ax1 (active: Go, 1d) id: t_ax1",
		"│       - Title t_ax2 (active: Go, 0d) id: t_ax2",
		"│       ======",
		"├── b",
		"│   ======",
		"│   - Title t_b (done: –, 0d) id: t_b",
		"│   ======",
		"└── empty",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestBuildTree_IgnoresOutsideProjects(t *testing.T) {
	root := t.TempDir()
	tree := BuildTree(filepath.Join(root, "inside"), []task.Project{
		{RootDir: filepath.Join(root, "other"), TasksDir: filepath.Join(root, "other", task.StoreDirName)},
	})
	assert.Empty(t, tree.Children)
	assert.False(t, tree.IsProject)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "–", FirstLine("  "))
	assert.Equal(t, "one", FirstLine("  one \n two"))
}

func TestDetail(t *testing.T) {
	tk := &task.Task{
		ID:         "2024-01-01__001__fix",
		Title:      "Fix",
		Status:     task.StatusActive,
		Created:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastTouch:  time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		NextAction: "Write the test",
		Summary:    "para one\n\npara two",
		LogLines:   []string{"2024-01-01: [created]"},
		Links:      []task.Link{{Kind: "url", Value: "https://example.com"}},
	}

	var buf bytes.Buffer
	Detail(&buf, tk, Options{Today: today, Width: 30})
	lines := strings.Split(strings.Trim(buf.String(), "\n"), "\n")

	for _, l := range lines {
		assert.Len(t, []rune(l), 30, "line %q", l)
	}
	assert.Equal(t, "+============================+", lines[0])
	assert.Equal(t, "| Fix (active)               |", lines[1])
	assert.Contains(t, buf.String(), "| last_touch: 2024-01-08 (2  |")
	assert.Contains(t, buf.String(), "| Next action:               |")
	assert.Contains(t, buf.String(), "|   para one                 |")
	assert.Contains(t, buf.String(), "|                            |")
	assert.Contains(t, buf.String(), "|   url: https://example.com |")
}

func TestDetail_WrapsLongText(t *testing.T) {
	tk := &task.Task{
		ID:         "t",
		Title:      "T",
		Status:     task.StatusDone,
		Created:    today,
		LastTouch:  today,
		Summary:    strings.Repeat("word ", 40),
		LogLines:   []string{"2024-01-10: [done]"},
	}

	var buf bytes.Buffer
	Detail(&buf, tk, Options{Today: today})

	assert.NotContains(t, buf.String(), "Next action:")
	for _, l := range strings.Split(strings.Trim(buf.String(), "\n"), "\n") {
		assert.Len(t, []rune(l), 80)
	}
	assert.Greater(t, strings.Count(buf.String(), "word"), 39)
}

func TestWrapLines(t *testing.T) {
	assert.Nil(t, wrapLines("  \n", 10))
	assert.Equal(t, []string{"aaa bbb", "ccc"}, wrapLines("aaa   bbb ccc", 8))
	assert.Contains(t, wrapLines("averyverylongword x", 5), "averyverylongword")
}
