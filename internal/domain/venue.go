package domain

import (
	"fmt"
	"time"
)

// Venue is a tapas bar that can be visited during its opening hours.
// Venues are loaded per request and never mutated while solving.
type Venue struct {
	Point
	Name     string
	Schedule WeeklySchedule
	// Minimum time the traveller stays once the visit begins.
	Dwell time.Duration
}

// Validate checks the venue location, schedule and dwell.
func (v Venue) Validate() error {
	if v.ID == "" {
		return &InvalidInputError{Field: "venue.id", Reason: "must not be empty"}
	}
	if err := v.Point.Validate(); err != nil {
		return err
	}
	if v.Dwell < 0 {
		return &InvalidInputError{Field: "venue.dwell", Reason: fmt.Sprintf("venue %q: dwell %s must not be negative", v.ID, v.Dwell)}
	}
	if err := v.Schedule.Validate(); err != nil {
		if se, ok := err.(*InvalidScheduleError); ok {
			se.VenueID = v.ID
			return se
		}
		return err
	}
	return nil
}
