package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/cv-builder/internal/types"
)

// ErrSaveInProgress is returned when a save of the same section of the same
// CV is already running.
var ErrSaveInProgress = errors.New("save already in progress")

// Operations reported by SectionError.
const (
	OpLoad = "load"
	OpSave = "save"
)

// SectionError scopes a failure to one section. The rest of the document is
// unaffected.
type SectionError struct {
	Section types.Section
	Op      string
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Section, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the operation may succeed. Invalid
// input and cancelled requests are not retryable.
func (e *SectionError) Retryable() bool {
	var verr *types.ValidationError
	switch {
	case errors.As(e.Err, &verr):
		return false
	case errors.Is(e.Err, context.Canceled):
		return false
	}
	return true
}
