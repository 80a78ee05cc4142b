package store

import (
	"errors"
	"fmt"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

var (
	// ErrNotFound is matched by every lookup or transition on a missing row
	ErrNotFound = errors.New("not found")

	// ErrConflict is matched by transitions whose precondition does not hold
	ErrConflict = errors.New("conflict")
)

// PersistenceError is any database failure during a write. The
// surrounding transaction has been rolled back when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// StateTransitionError means a publish or unpublish precondition failed
type StateTransitionError struct {
	ReportID string
	Current  models.ReportStatus // empty when the report does not exist
	Target   models.ReportStatus
}

func (e *StateTransitionError) Error() string {
	if e.Current == "" {
		return fmt.Sprintf("report %s not found", e.ReportID)
	}
	return fmt.Sprintf("report %s cannot move from %s to %s", e.ReportID, e.Current, e.Target)
}

// Is matches ErrNotFound for missing reports and ErrConflict otherwise
func (e *StateTransitionError) Is(target error) bool {
	if e.Current == "" {
		return target == ErrNotFound
	}
	return target == ErrConflict
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
