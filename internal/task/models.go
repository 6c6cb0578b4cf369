package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the on-disk format for created, last_touch and log dates.
const DateLayout = "2006-01-02"

// Status represents the lifecycle status of a task
type Status string

const (
	StatusActive  Status = "active"
	StatusWaiting Status = "waiting"
	StatusPaused  Status = "paused"
	StatusDone    Status = "done"
)

// Statuses lists every recognized status in display order.
var Statuses = []Status{StatusActive, StatusWaiting, StatusPaused, StatusDone}

// statusRank is the display priority: what can be acted on now comes first.
var statusRank = map[Status]int{
	StatusActive:  0,
	StatusWaiting: 1,
	StatusPaused:  2,
	StatusDone:    3,
}

// Rank returns the sort rank of the status. Lower sorts first.
// Unknown statuses sort after done.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return len(statusRank)
}

// Valid reports whether s is one of the recognized statuses.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q (allowed: %s)", raw, allowedStatuses())
	}
	return s, nil
}

func allowedStatuses() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Link is a single link entry stored in task.yml.
// Kind is kept as a free string (file, url and note are the known kinds);
// the validator decides what is acceptable.
type Link struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Task is the in-memory projection of one task case directory
type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Status        Status    `json:"status"`
	Created       time.Time `json:"created"`
	LastTouch     time.Time `json:"last_touch"`
	NextAction    string    `json:"next_action"`
	Summary       string    `json:"summary,omitempty"`
	LogLines      []string  `json:"log"`
	Links         []Link    `json:"links"`
	FormatVersion int       `json:"format"`
}

// InvariantError describes a Task that breaks a model invariant.
type InvariantError struct {
	Field   string
	Message string
}

func (e *InvariantError) Error() string {
	return e.Message
}

// Validate checks the model invariants that hold regardless of storage.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return &InvariantError{Field: "id", Message: "task id must be a non-empty string"}
	}
	if strings.TrimSpace(t.Title) == "" {
		return &InvariantError{Field: "title", Message: "title must be a non-empty string"}
	}
	if t.Created.After(t.LastTouch) {
		return &InvariantError{Field: "last_touch", Message: "created must be <= last_touch"}
	}

	na := strings.TrimSpace(t.NextAction)
	if t.Status == StatusDone {
		if na != "" {
			return &InvariantError{Field: "next_action", Message: "next_action must be empty when status is 'done'"}
		}
	} else if na == "" {
		return &InvariantError{Field: "next_action", Message: "next_action must be non-empty unless status is 'done'"}
	}
	return nil
}

// IsDone reports whether the task is closed.
func (t *Task) IsDone() bool {
	return t.Status == StatusDone
}

// AgeDays returns the number of whole days since the task was last touched.
func (t *Task) AgeDays(today time.Time) int {
	return int(Date(today).Sub(Date(t.LastTouch)).Hours() / 24)
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.LogLines = slices.Clone(t.LogLines)
	c.Links = slices.Clone(t.Links)
	return &c
}

// SortTasks returns a new slice ordered by status rank, then last touch
// (older first), then id.
func SortTasks(tasks []Task) []Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b Task) int {
		if c := a.Status.Rank() - b.Status.Rank(); c != 0 {
			return c
		}
		if c := a.LastTouch.Compare(b.LastTouch); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Project is a directory containing a task store.
type Project struct {
	RootDir  string `json:"root_dir"`
	TasksDir string `json:"tasks_dir"`
}

// ErrInvalidProject is returned by NewProject for blank paths.
var ErrInvalidProject = errors.New("invalid project")

// NewProject creates a Project, rejecting blank paths.
func NewProject(rootDir, tasksDir string) (Project, error) {
	if strings.TrimSpace(rootDir) == "" {
		return Project{}, fmt.Errorf("%w: root_dir must be a non-empty string", ErrInvalidProject)
	}
	if strings.TrimSpace(tasksDir) == "" {
		return Project{}, fmt.Errorf("%w: tasks_dir must be a non-empty string", ErrInvalidProject)
	}
	return Project{RootDir: rootDir, TasksDir: tasksDir}, nil
}

// Date truncates t to a calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
