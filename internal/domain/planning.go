package domain

import (
	"fmt"
	"time"
)

// Objective selects what the optimizer minimizes or maximizes.
type Objective int

const (
	// Visit every requested venue, minimizing total elapsed time.
	ObjectiveCoverAll Objective = iota
	// Visit as many venues as possible within the horizon.
	ObjectiveMaxVenues
)

func (o Objective) String() string {
	switch o {
	case ObjectiveCoverAll:
		return "cover_all"
	case ObjectiveMaxVenues:
		return "max_venues"
	default:
		return fmt.Sprintf("objective(%d)", int(o))
	}
}

// ParseObjective maps the wire names to an Objective. Empty means cover_all.
func ParseObjective(s string) (Objective, error) {
	switch s {
	case "", "cover_all":
		return ObjectiveCoverAll, nil
	case "max_venues":
		return ObjectiveMaxVenues, nil
	default:
		return 0, &InvalidInputError{Field: "objective", Reason: fmt.Sprintf("unknown objective %q", s)}
	}
}

// PlanningRequest describes one route planning problem.
type PlanningRequest struct {
	Venues  []Venue
	Start   Point
	StartAt time.Time
	// Maximum elapsed time from StartAt. Zero uses the planner default.
	Horizon       time.Duration
	Objective     Objective
	ReturnToStart bool
}

// Validate checks request-level invariants; venue schedules are checked
// again when unrolled.
func (r PlanningRequest) Validate() error {
	if len(r.Venues) == 0 {
		return ErrEmptyRequest
	}
	if r.StartAt.IsZero() {
		return &InvalidInputError{Field: "start_at", Reason: "must be set"}
	}
	if r.Horizon < 0 {
		return &InvalidInputError{Field: "horizon", Reason: fmt.Sprintf("%s must not be negative", r.Horizon)}
	}
	if r.Objective != ObjectiveCoverAll && r.Objective != ObjectiveMaxVenues {
		return &InvalidInputError{Field: "objective", Reason: r.Objective.String()}
	}
	if err := r.Start.Validate(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(r.Venues))
	for _, v := range r.Venues {
		if err := v.Validate(); err != nil {
			return err
		}
		if _, ok := seen[v.ID]; ok {
			return &InvalidInputError{Field: "venues", Reason: fmt.Sprintf("duplicate venue %q", v.ID)}
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}
