package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolUnavailable indicates the worker pool could not be created.
	ErrPoolUnavailable = errors.New("worker pool unavailable")
	// ErrTaskPanic indicates a task panicked and was recovered.
	ErrTaskPanic = errors.New("task panicked")
)

// BatchSetupError aborts a run before any extraction task starts.
type BatchSetupError struct {
	Workers int
	Err     error
}

func (e *BatchSetupError) Error() string {
	return fmt.Sprintf("batch setup failed with %d workers: %v", e.Workers, e.Err)
}

func (e *BatchSetupError) Unwrap() error {
	return e.Err
}
