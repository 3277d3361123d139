package domain

import (
	"errors"
	"fmt"
)

// All engine errors are recoverable and reportable to the caller; none
// are fatal to the process.
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrUnavailable     = errors.New("tool is unavailable")
	ErrInvalidState    = errors.New("invalid state transition")
	ErrConflict        = errors.New("interval conflicts with existing bookings")
)

// ConflictError carries the conflicting set so the caller can display
// what blocked the request. Matches ErrConflict under errors.Is.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval conflicts with %d existing booking(s)", len(e.Conflicts))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
