package task

import "errors"

var (
	// ErrInputRequired matches every *InputRequiredError.
	ErrInputRequired = errors.New("required input missing")

	// ErrForbiddenTransition is returned when an action is not allowed for
	// the task's current status.
	ErrForbiddenTransition = errors.New("forbidden transition")

	// ErrAborted is returned when the user declines to create a task store.
	ErrAborted = errors.New("aborted")

	// ErrTaskNotFound is returned when a task id does not resolve to a directory.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoStore is returned when a directory has no task store.
	ErrNoStore = errors.New("no task store")

	// ErrTaskExists is returned when a new task directory already exists.
	ErrTaskExists = errors.New("task already exists")
)

// ParseError reports a structurally invalid task directory.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return e.Path + ": " + e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InputRequiredError reports a required value that was neither supplied nor
// obtainable from the prompter.
type InputRequiredError struct {
	Field string
}

func (e *InputRequiredError) Error() string {
	return e.Field + " is required"
}

func (e *InputRequiredError) Is(target error) bool {
	return target == ErrInputRequired
}
