package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// ErrGeneration matches every engine failure, timeouts included
var ErrGeneration = errors.New("report generation failed")

// ErrInvalidOutput marks engine output that cannot be turned into a report.
// Asking the engine again will not help.
var ErrInvalidOutput = errors.New("invalid engine output")

// GenerationError wraps an engine failure with the sport it happened for
type GenerationError struct {
	Sport models.Sport
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating %s report: %v", e.Sport, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// TimeoutError means the engine did not answer before its deadline. It is
// a generation failure: errors.Is matches ErrGeneration, but errors.As into
// *GenerationError does not, so check for *TimeoutError first.
type TimeoutError struct {
	Sport   models.Sport
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generating %s report: engine timed out after %s", e.Sport, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrGeneration
}
