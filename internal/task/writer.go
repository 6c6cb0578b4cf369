package task

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/MikeBiancalana/tskctl/internal/storage"
	"gopkg.in/yaml.v3"
)

var files = storage.NewFileStore()

// metadataForWrite fixes the key order of task.yml.
type metadataForWrite struct {
	ID         string         `yaml:"id"`
	Title      string         `yaml:"title"`
	Status     string         `yaml:"status"`
	Created    string         `yaml:"created"`
	LastTouch  string         `yaml:"last_touch"`
	NextAction string         `yaml:"next_action"`
	Format     int            `yaml:"format"`
	Links      []linkForWrite `yaml:"links"`
}

type linkForWrite struct {
	Kind  string `yaml:"kind"`
	Value string `yaml:"value"`
}

// Write persists the task by fully re-rendering task.yml, task.log and
// summary.md. The task directory must already exist.
//
// summary.md is written when Summary is non-empty and deleted when it is
// empty; an absent file with an empty summary stays absent.
func Write(taskDir string, t *Task) error {
	if !storage.IsDir(taskDir) {
		return fmt.Errorf("%w: task directory not found: %s", ErrTaskNotFound, taskDir)
	}

	meta, err := RenderMetadata(t)
	if err != nil {
		return err
	}
	if err := files.WriteFile(filepath.Join(taskDir, MetadataFile), meta); err != nil {
		return fmt.Errorf("failed to write %s: %w", MetadataFile, err)
	}

	if err := files.WriteFile(filepath.Join(taskDir, LogFile), RenderLog(t.LogLines)); err != nil {
		return fmt.Errorf("failed to write %s: %w", LogFile, err)
	}

	summaryPath := filepath.Join(taskDir, SummaryFile)
	summary := strings.TrimRightFunc(t.Summary, unicode.IsSpace)
	if summary != "" {
		if err := files.WriteFile(summaryPath, []byte(summary+"\n")); err != nil {
			return fmt.Errorf("failed to write %s: %w", SummaryFile, err)
		}
		return nil
	}
	if err := files.Remove(summaryPath); err != nil {
		return fmt.Errorf("failed to remove %s: %w", SummaryFile, err)
	}
	return nil
}

// RenderMetadata serializes the task.yml content for t.
func RenderMetadata(t *Task) ([]byte, error) {
	links := make([]linkForWrite, 0, len(t.Links))
	for _, l := range t.Links {
		links = append(links, linkForWrite{Kind: l.Kind, Value: l.Value})
	}

	doc := metadataForWrite{
		ID:         t.ID,
		Title:      t.Title,
		Status:     string(t.Status),
		Created:    FormatDate(t.Created),
		LastTouch:  FormatDate(t.LastTouch),
		NextAction: t.NextAction,
		Format:     DefaultFormatVersion,
		Links:      links,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderLog serializes log lines: blank lines dropped, each line right-trimmed,
// newline-terminated.
func RenderLog(lines []string) []byte {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		kept = append(kept, strings.TrimRightFunc(l, unicode.IsSpace))
	}
	return []byte(strings.Join(kept, "\n") + "\n")
}
