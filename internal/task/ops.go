package task

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	slugInvalid  = regexp.MustCompile(`[^a-z0-9_]+`)
	underscoreRe = regexp.MustCompile(`_+`)
)

// Slugify converts a title into a filesystem-safe id fragment.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = whitespaceRe.ReplaceAllString(s, "_")
	s = slugInvalid.ReplaceAllString(s, "_")
	s = underscoreRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "task"
	}
	return s
}

// NextSequenceNumber returns one more than the highest sequence number used
// by a task created on the given date, or 1 when there is none.
// Directory names have the form <date>__<seq>__<slug>; names whose sequence
// segment is not numeric are ignored.
func NextSequenceNumber(storeDir string, created time.Time) (int, error) {
	entries, err := os.ReadDir(storeDir)
	if errors.Is(err, fs.ErrNotExist) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read task store: %w", err)
	}

	prefix := FormatDate(created) + "__"
	best := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		parts := strings.SplitN(e.Name(), "__", 3)
		if len(parts) < 2 {
			continue
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		best = max(best, n)
	}
	return best + 1, nil
}

// EnsureStore returns the task store of projectDir, creating it if needed.
// With a nil prompter the store is created silently; otherwise the user is
// asked first and a refusal returns ErrAborted.
func EnsureStore(projectDir string, prompter Prompter) (string, error) {
	storeDir := filepath.Join(projectDir, StoreDirName)
	if info, err := os.Stat(storeDir); err == nil && info.IsDir() {
		return storeDir, nil
	}

	if prompter != nil {
		answer, err := prompter.Prompt("No " + StoreDirName + " found in this directory. Create ./" + StoreDirName + " here? [Y/n]")
		if err != nil {
			return "", fmt.Errorf("%w (no %s created): %v", ErrAborted, StoreDirName, err)
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "", "y", "yes":
		default:
			return "", fmt.Errorf("%w (no %s created)", ErrAborted, StoreDirName)
		}
	}

	if err := os.MkdirAll(storeDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create task store: %w", err)
	}
	return storeDir, nil
}

// NewTaskRequest holds the parameters for creating a task case directory.
type NewTaskRequest struct {
	Title      string
	Status     Status // defaults to active
	NextAction string
	Summary    string
	Links      []string // "kind: value" shorthand or bare file paths
}

// NormalizeLinks converts shorthand link strings into Links. Blank entries are
// dropped and a missing kind defaults to file.
func NormalizeLinks(raw []string) []Link {
	var out []Link
	for _, r := range raw {
		link, ok := splitLink(r)
		if !ok {
			continue
		}
		if link.Kind == "" {
			link.Kind = "file"
		}
		out = append(out, link)
	}
	return out
}

// Create makes a new task case directory under projectDir's store and
// returns its path. The id is <today>__<seq>__<slug(title)>; an existing
// directory with that id is an error.
func (s *Service) Create(projectDir string, req NewTaskRequest) (string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "", &InputRequiredError{Field: "title"}
	}

	status := req.Status
	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q (allowed: %s)", status, allowedStatuses())
	}

	nextAction := strings.TrimSpace(req.NextAction)
	if status == StatusDone {
		nextAction = ""
	} else if nextAction == "" {
		return "", &InputRequiredError{Field: "next action"}
	}

	storeDir, err := EnsureStore(projectDir, s.prompter)
	if err != nil {
		return "", err
	}

	created := s.clock.Today()
	seq, err := NextSequenceNumber(storeDir, created)
	if err != nil {
		return "", err
	}

	id := fmt.Sprintf("%s__%03d__%s", FormatDate(created), seq, Slugify(title))
	taskDir := filepath.Join(storeDir, id)
	if err := os.Mkdir(taskDir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrTaskExists, taskDir)
		}
		return "", fmt.Errorf("failed to create task directory: %w", err)
	}

	day := FormatDate(created)
	logLines := []string{day + ": [created]"}
	if status == StatusDone {
		logLines = append(logLines, day+": [done]")
	}

	t := &Task{
		ID:            id,
		Title:         title,
		Status:        status,
		Created:       created,
		LastTouch:     created,
		NextAction:    nextAction,
		Summary:       req.Summary,
		LogLines:      logLines,
		Links:         NormalizeLinks(req.Links),
		FormatVersion: DefaultFormatVersion,
	}
	if err := Write(taskDir, t); err != nil {
		return "", err
	}

	s.logger.Info("task_created", "task_id", id, "status", status, "dir", taskDir)
	return taskDir, nil
}
