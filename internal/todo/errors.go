package todo

import "errors"

// ValidationError reports user input that violates a Task invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

var (
	// ErrEmptyTitle is returned by Add and Update for a blank title.
	ErrEmptyTitle = &ValidationError{Field: "title", Reason: "cannot be empty"}

	// ErrInvalidRecord marks a persisted record that cannot become a Task.
	ErrInvalidRecord = errors.New("invalid task record")
)
