package export

import "fmt"

// Error is a rasterization failure. Exports are idempotent, so every Error is
// safe to retry and leaves the on-screen preview untouched.
type Error struct {
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export %s failed: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("export %s failed: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether repeating the export may succeed.
func (e *Error) Retryable() bool {
	return true
}
