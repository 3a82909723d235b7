package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoActions is returned by Run when no element has a handler bound.
	ErrNoActions = errors.New("tui: no bound actions")
	// ErrPathNotFound rejects file paths that do not exist.
	ErrPathNotFound = errors.New("tui: file not found")
)
