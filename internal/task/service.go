package task

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Clock supplies the current calendar date.
type Clock interface {
	Today() time.Time
}

// ClockFunc adapts a function to Clock. The result is truncated to a date.
type ClockFunc func() time.Time

func (f ClockFunc) Today() time.Time {
	return Date(f())
}

// SystemClock reads the local wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Prompter asks the user for a single line of input.
// It returns an error (io.EOF included) when no input is available.
type Prompter interface {
	Prompt(label string) (string, error)
}

// Service creates tasks and applies the mutating actions. It is the only
// code that changes a Task; every change appends one log line, bumps
// last_touch and persists the task with Write.
//
// A nil Prompter makes the service non-interactive: missing input is an
// error instead of a question.
type Service struct {
	clock    Clock
	prompter Prompter
	logger   *slog.Logger
}

// NewService creates a new task service. A nil clock means SystemClock and a
// nil logger means slog.Default().
func NewService(clock Clock, prompter Prompter, logger *slog.Logger) *Service {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		clock:    clock,
		prompter: prompter,
		logger:   logger,
	}
}

// SetStatus moves the task to status. A next action is required unless the
// new status is done, in which case the next action is cleared.
func (s *Service) SetStatus(t *Task, taskDir string, status Status, message, nextAction string) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q (allowed: %s)", status, allowedStatuses())
	}

	msg, err := s.require(message, "Message")
	if err != nil {
		return err
	}

	next := t.Clone()
	if status != StatusDone {
		na, err := s.require(nextAction, "Next action")
		if err != nil {
			return err
		}
		next.NextAction = na
	} else {
		next.NextAction = ""
	}
	next.Status = status

	if status == StatusDone {
		s.appendLog(next, "done", msg)
	} else {
		s.appendLog(next, "status", fmt.Sprintf("%s - %s", status, msg))
	}
	return s.commit(t, next, taskDir)
}

// SetNextAction replaces the next action. Done tasks have no next action, so
// this returns ErrForbiddenTransition for them.
func (s *Service) SetNextAction(t *Task, taskDir string, nextAction, message string) error {
	if t.Status == StatusDone {
		return fmt.Errorf("%w: cannot set next action on done task", ErrForbiddenTransition)
	}

	msg, err := s.require(message, "Message")
	if err != nil {
		return err
	}
	na, err := s.require(nextAction, "Next action")
	if err != nil {
		return err
	}

	next := t.Clone()
	next.NextAction = na
	s.appendLog(next, "next", fmt.Sprintf("%s - %s", na, msg))
	return s.commit(t, next, taskDir)
}

// Touch records activity without changing status or next action.
func (s *Service) Touch(t *Task, taskDir string, message string) error {
	msg, err := s.require(message, "Message")
	if err != nil {
		return err
	}

	next := t.Clone()
	s.appendLog(next, "touch", "- "+msg)
	return s.commit(t, next, taskDir)
}

func (s *Service) require(value, label string) (string, error) {
	if v := strings.TrimSpace(value); v != "" {
		return v, nil
	}
	if s.prompter == nil {
		return "", &InputRequiredError{Field: label}
	}

	answer, err := s.prompter.Prompt(label)
	if err != nil {
		return "", &InputRequiredError{Field: label}
	}
	if v := strings.TrimSpace(answer); v != "" {
		return v, nil
	}
	return "", &InputRequiredError{Field: label}
}

func (s *Service) appendLog(t *Task, tag, detail string) {
	today := s.clock.Today()
	t.LogLines = append(t.LogLines, fmt.Sprintf("%s: [%s] %s", FormatDate(today), tag, detail))
	t.LastTouch = today
}

// commit persists next and, only once the write succeeded, copies it into t.
func (s *Service) commit(t, next *Task, taskDir string) error {
	if err := Write(taskDir, next); err != nil {
		return err
	}
	*t = *next
	s.logger.Debug("task_updated", "task_id", t.ID, "status", t.Status, "entry", t.LogLines[len(t.LogLines)-1])
	return nil
}
