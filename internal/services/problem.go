package services

import (
	"cmp"
	"slices"
	"tapas-route-service/internal/domain"
	"time"
)

// Window is an opening window expressed as offsets from the request start.
type Window struct {
	Open  time.Duration
	Close time.Duration
}

// Problem is the solver input. Node 0 of Matrix is the start point and
// node i+1 is venue i. Venue indices are ranks in ascending-ID order, so
// comparing index sequences compares ID sequences.
type Problem struct {
	Matrix        domain.CostMatrix
	Windows       [][]Window
	Dwell         []time.Duration
	Horizon       time.Duration
	Objective     domain.Objective
	ReturnToStart bool
}

// Venues returns the number of venues.
func (p *Problem) Venues() int { return len(p.Dwell) }

func (p *Problem) travel(from, to int) time.Duration { return p.Matrix.At(from, to) }

// earliestStart returns when a visit to venue v can begin for a traveller
// arriving at arrive: the first window where the visit starts before the
// close and the dwell ends no later than the close and the horizon.
func (p *Problem) earliestStart(v int, arrive time.Duration) (time.Duration, bool) {
	dwell := p.Dwell[v]
	for _, w := range p.Windows[v] {
		start := max(arrive, w.Open)
		if start >= w.Close {
			continue
		}
		if end := start + dwell; end > w.Close || end > p.Horizon {
			continue
		}
		return start, true
	}
	return 0, false
}

// Visit holds the timeline of one stop as offsets from the request start.
type Visit struct {
	Venue  int
	Travel time.Duration
	Arrive time.Duration
	Wait   time.Duration
	Start  time.Duration
	Depart time.Duration
}

// score is what routes are ranked by.
type score struct {
	count   int
	elapsed time.Duration
	wait    time.Duration
	rankSum int
}

// compareScores returns a negative number when a ranks before b: more
// venues (max_venues only), then lower elapsed, lower wait, lower rank sum.
func (p *Problem) compareScores(a, b score) int {
	if p.Objective == domain.ObjectiveMaxVenues && a.count != b.count {
		return cmp.Compare(b.count, a.count)
	}
	if c := cmp.Compare(a.elapsed, b.elapsed); c != 0 {
		return c
	}
	if c := cmp.Compare(a.wait, b.wait); c != 0 {
		return c
	}
	return cmp.Compare(a.rankSum, b.rankSum)
}

// compareRoutes ranks two complete routes, falling back to the
// lexicographic order of venue indices.
func (p *Problem) compareRoutes(a score, orderA []int, b score, orderB []int) int {
	if c := p.compareScores(a, b); c != 0 {
		return c
	}
	return slices.Compare(orderA, orderB)
}

// simulate walks the order from the start and returns the visits and the
// route score. ok is false when a venue cannot be visited in time or the
// return leg does not fit in the horizon.
func (p *Problem) simulate(order []int) ([]Visit, score, bool) {
	visits := make([]Visit, 0, len(order))
	var (
		now  time.Duration
		wait time.Duration
		rank int
		cur  = 0
	)

	for _, v := range order {
		leg := p.travel(cur, v+1)
		arrive := now + leg
		start, ok := p.earliestStart(v, arrive)
		if !ok {
			return nil, score{}, false
		}
		depart := start + p.Dwell[v]

		visits = append(visits, Visit{
			Venue:  v,
			Travel: leg,
			Arrive: arrive,
			Wait:   start - arrive,
			Start:  start,
			Depart: depart,
		})
		wait += start - arrive
		rank += v + 1
		now = depart
		cur = v + 1
	}

	end, ok := p.finish(cur, now)
	if !ok {
		return nil, score{}, false
	}

	return visits, score{count: len(order), elapsed: end, wait: wait, rankSum: rank}, true
}

// finish adds the optional return leg from node and checks the horizon.
func (p *Problem) finish(node int, depart time.Duration) (time.Duration, bool) {
	if !p.ReturnToStart || node == 0 {
		return depart, depart <= p.Horizon
	}
	end := depart + p.travel(node, 0)
	return end, end <= p.Horizon
}
