package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentifier is returned when a raw identifier cannot be
	// normalized. It is surfaced to the caller and never retried.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrCacheMiss is returned by cache repositories when no live entry
	// exists for a key.
	ErrCacheMiss = errors.New("cache entry not found")

	// ErrNotRunning is returned when an event arrives while the
	// coordinator is not accepting events.
	ErrNotRunning = errors.New("monitoring is not running")

	// ErrPermissionDenied is returned when the notification capability
	// has not been granted. The pipeline degrades to log-only.
	ErrPermissionDenied = errors.New("notification permission not granted")
)

// LookupError wraps a failed remote lookup. Failures are never cached;
// the next natural event retries the same path.
type LookupError struct {
	Identifier string
	Err        error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup failed for %s: %v", e.Identifier, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// ListenerError reports the platform channels that could not be
// registered during start. Other channels keep running.
type ListenerError struct {
	Failed map[Channel]string
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("no listener could be registered: %v", e.Failed)
}
