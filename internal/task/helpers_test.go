package task

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixedClock(s string) Clock {
	return ClockFunc(func() time.Time { return day(s) })
}

// scriptedPrompter answers prompts from a queue and records the labels.
type scriptedPrompter struct {
	answers []string
	labels  []string
}

func (p *scriptedPrompter) Prompt(label string) (string, error) {
	p.labels = append(p.labels, label)
	if len(p.answers) == 0 {
		return "", errors.New("EOF")
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

// writeTaskDir creates <root>/.tasks/<id> with the given file contents.
// Empty content skips the file.
func writeTaskDir(t *testing.T, root, id, yml, log, summary string) string {
	t.Helper()

	dir := filepath.Join(root, StoreDirName, id)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if yml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte(yml), 0644))
	}
	if log != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, LogFile), []byte(log), 0644))
	}
	if summary != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, SummaryFile), []byte(summary), 0644))
	}
	return dir
}

const validYAML = `id: 2024-01-01__001__fix_bug
title: Fix bug
status: active
created: 2024-01-01
last_touch: 2024-01-03
next_action: Write a failing test
format: 2
links:
  - kind: file
    value: src/main.go
`

const validLog = "2024-01-01: [created]\n2024-01-03: [touch] - looked into it\n"

func sampleTask() *Task {
	return &Task{
		ID:            "2024-01-01__001__fix_bug",
		Title:         "Fix bug",
		Status:        StatusActive,
		Created:       day("2024-01-01"),
		LastTouch:     day("2024-01-03"),
		NextAction:    "Write a failing test",
		LogLines:      []string{"2024-01-01: [created]"},
		FormatVersion: DefaultFormatVersion,
	}
}
