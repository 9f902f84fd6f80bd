package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinels for errors.Is classification by the hosting layer.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyRequest    = errors.New("planning request has no venues")
	ErrNoFeasibleRoute = errors.New("no feasible route")
	ErrCancelled       = errors.New("solve cancelled")
)

// InvalidInputError reports malformed coordinates or request fields.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// InvalidScheduleError reports overlapping or malformed opening intervals.
type InvalidScheduleError struct {
	VenueID string
	Day     time.Weekday
	Reason  string
}

func (e *InvalidScheduleError) Error() string {
	if e.VenueID == "" {
		return fmt.Sprintf("invalid schedule on %s: %s", e.Day, e.Reason)
	}
	return fmt.Sprintf("invalid schedule for venue %q on %s: %s", e.VenueID, e.Day, e.Reason)
}

func (e *InvalidScheduleError) Unwrap() error { return ErrInvalidInput }

// NoFeasibleRouteError is returned when full coverage is required but at
// least one venue cannot be reached inside the horizon.
type NoFeasibleRouteError struct {
	Unreachable []string
}

func (e *NoFeasibleRouteError) Error() string {
	if len(e.Unreachable) == 0 {
		return ErrNoFeasibleRoute.Error()
	}
	return fmt.Sprintf("%s: unreachable venues [%s]", ErrNoFeasibleRoute, strings.Join(e.Unreachable, ", "))
}

func (e *NoFeasibleRouteError) Unwrap() error { return ErrNoFeasibleRoute }

// CancelledError is returned when the caller's context ends mid-solve.
// Cause holds the context error.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	if e.Cause == nil {
		return ErrCancelled.Error()
	}
	return fmt.Sprintf("%s: %v", ErrCancelled, e.Cause)
}

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }

func (e *CancelledError) Unwrap() error { return e.Cause }
