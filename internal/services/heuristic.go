package services

import (
	"context"
	"slices"
	"tapas-route-service/internal/domain"
	"time"
)

// localSearch builds a feasible route greedily and improves it with
// first-improvement moves until no move helps or maxIterations moves were
// accepted.
//
// Construction repeatedly appends the unvisited venue with the earliest
// feasible departure (lower index on ties). Venues left over are then
// inserted at their best feasible position. The improvement phase tries,
// in a fixed scanning order, exchanging two stops, relocating one stop and
// (max_venues) inserting a venue still outside the route. A move is
// accepted when the route stays feasible and ranks strictly better.
//
// The scan is deterministic: the same problem always yields the same route.
func localSearch(ctx context.Context, p *Problem, maxIterations int) (*Solution, error) {
	order := construct(p)
	order = insertLeftovers(p, order)

	_, cur, ok := p.simulate(order)
	if !ok {
		// construct and insertLeftovers only keep feasible routes.
		return nil, &UnreachableError{Venues: missingFrom(p, nil)}
	}

	for it := 0; it < maxIterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, &domain.CancelledError{Cause: err}
		}

		next, s, improved := improve(p, order, cur)
		if !improved {
			break
		}
		order, cur = next, s
	}

	if err := ctx.Err(); err != nil {
		return nil, &domain.CancelledError{Cause: err}
	}

	if p.Objective == domain.ObjectiveCoverAll && len(order) < p.Venues() {
		return nil, &UnreachableError{Venues: unreachableFrom(p, order)}
	}
	if len(order) == 0 {
		return nil, &UnreachableError{Venues: missingFrom(p, nil)}
	}

	return newSolution(p, order, false)
}

// construct is the nearest-feasible-neighbour seed. "Nearest" means the
// earliest departure, which accounts for travel, waiting and dwell.
func construct(p *Problem) []int {
	n := p.Venues()
	visited := make([]bool, n)
	order := make([]int, 0, n)

	var (
		cur int
		now time.Duration
	)
	for len(order) < n {
		best, bestDepart := -1, now
		for v := 0; v < n; v++ {
			if visited[v] {
				continue
			}
			start, ok := p.earliestStart(v, now+p.travel(cur, v+1))
			if !ok {
				continue
			}
			depart := start + p.Dwell[v]
			if _, ok := p.finish(v+1, depart); !ok {
				continue
			}
			if best < 0 || depart < bestDepart {
				best, bestDepart = v, depart
			}
		}
		if best < 0 {
			break
		}
		visited[best] = true
		order = append(order, best)
		cur, now = best+1, bestDepart
	}

	return order
}

// insertLeftovers tries every venue missing from order at each position and
// keeps the best feasible placement. Venues are tried in index order.
func insertLeftovers(p *Problem, order []int) []int {
	for _, v := range missingFrom(p, order) {
		var (
			best      []int
			bestScore score
		)
		for pos := 0; pos <= len(order); pos++ {
			cand := insertAt(order, pos, v)
			_, s, ok := p.simulate(cand)
			if !ok {
				continue
			}
			if best == nil || p.compareRoutes(s, cand, bestScore, best) < 0 {
				best, bestScore = cand, s
			}
		}
		if best != nil {
			order = best
		}
	}
	return order
}

// improve returns the first strictly better feasible neighbour of order.
func improve(p *Problem, order []int, cur score) ([]int, score, bool) {
	better := func(cand []int) (score, bool) {
		_, s, ok := p.simulate(cand)
		if !ok {
			return score{}, false
		}
		return s, p.compareRoutes(s, cand, cur, order) < 0
	}

	if p.Objective == domain.ObjectiveMaxVenues {
		for _, v := range missingFrom(p, order) {
			for pos := 0; pos <= len(order); pos++ {
				cand := insertAt(order, pos, v)
				if s, ok := better(cand); ok {
					return cand, s, true
				}
			}
		}
	}

	// pairwise exchange
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			cand := slices.Clone(order)
			cand[i], cand[j] = cand[j], cand[i]
			if s, ok := better(cand); ok {
				return cand, s, true
			}
		}
	}

	// single relocation
	for i := 0; i < len(order); i++ {
		rest := slices.Delete(slices.Clone(order), i, i+1)
		for j := 0; j <= len(rest); j++ {
			if j == i {
				continue
			}
			cand := insertAt(rest, j, order[i])
			if s, ok := better(cand); ok {
				return cand, s, true
			}
		}
	}

	return nil, score{}, false
}

func insertAt(order []int, pos, v int) []int {
	out := make([]int, 0, len(order)+1)
	out = append(out, order[:pos]...)
	out = append(out, v)
	return append(out, order[pos:]...)
}

// missingFrom lists the venues not in order, ascending.
func missingFrom(p *Problem, order []int) []int {
	in := make([]bool, p.Venues())
	for _, v := range order {
		in[v] = true
	}
	var out []int
	for v := range in {
		if !in[v] {
			out = append(out, v)
		}
	}
	return out
}

// unreachableFrom names venues that cannot be visited even alone; when all
// of them can, it names those missing from the best route found.
func unreachableFrom(p *Problem, order []int) []int {
	var alone []int
	for v := 0; v < p.Venues(); v++ {
		if _, _, ok := p.simulate([]int{v}); !ok {
			alone = append(alone, v)
		}
	}
	if len(alone) > 0 {
		return alone
	}
	return missingFrom(p, order)
}
