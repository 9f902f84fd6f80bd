package domain

import "time"

// Stop is one visit of the itinerary.
// The traveller arrives at ArriveAt, waits Wait until the venue is open
// (StartAt), stays for the dwell and leaves at DepartAt.
type Stop struct {
	VenueID  string
	Name     string
	ArriveAt time.Time
	Wait     time.Duration
	StartAt  time.Time
	DepartAt time.Time
	// Travel time of the leg ending at this stop.
	Travel time.Duration
}

// Itinerary is the planned visiting order. It is a result value and is
// never mutated after it is returned.
type Itinerary struct {
	Stops     []Stop
	StartAt   time.Time
	EndAt     time.Time
	Objective Objective
	// Set when the optional return leg to the start point is included.
	ReturnLeg    time.Duration
	TotalElapsed time.Duration
	TotalTravel  time.Duration
	TotalWait    time.Duration
	// False when produced by the heuristic path (no optimality guarantee).
	Exact bool
	// Venues left out of a max_venues plan.
	Unvisited []string
}

// VenueIDs returns the visiting order.
func (it *Itinerary) VenueIDs() []string {
	ids := make([]string, 0, len(it.Stops))
	for _, s := range it.Stops {
		ids = append(ids, s.VenueID)
	}
	return ids
}
