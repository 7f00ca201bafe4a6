package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("catalog: not found")
	ErrInvalidName       = errors.New("catalog: name must not be empty")
	ErrDuplicateCategory = errors.New("catalog: category already exists")
	ErrLastCategory      = errors.New("catalog: at least one category must remain")
	ErrUnknownCategory   = errors.New("catalog: unknown category")
)

// SyncError reports a remote write that kept failing after retries. The
// workspace reloads from the store before returning it; Reloaded tells
// whether that reload succeeded.
type SyncError struct {
	Op        string
	Err       error
	Reloaded  bool
	ReloadErr error
}

func (e *SyncError) Error() string {
	if e.ReloadErr != nil {
		return fmt.Sprintf("catalog: %s: %v (reload failed: %v)", e.Op, e.Err, e.ReloadErr)
	}
	return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
