package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when every allowed submission was
	// rejected.
	ErrTooManyAttempts = errors.New("tui: too many rejected submissions")
	// ErrNilContext is returned when Run is called without a context.
	ErrNilContext = errors.New("tui: context is required")
	// ErrNilState is returned when a session is built without a form state.
	ErrNilState = errors.New("tui: form state is nil")
)
