package services

import (
	"context"
	"math/bits"
	"slices"
	"tapas-route-service/internal/domain"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// maxExactVenues bounds the DP table at n·2ⁿ label sets.
const maxExactVenues = 18

// masksPerTask is how many subsets of one layer a worker relaxes at a time.
const masksPerTask = 256

// label is one non-dominated way to have visited exactly mask and stand at
// last: the departure from last, the waiting and travel accumulated on the
// way, and the label it extends (pred venue, index in that venue's set;
// pred is -1 for the start point).
type label struct {
	finish  time.Duration
	wait    time.Duration
	travel  time.Duration
	pred    int8
	predIdx int32
}

type dpTable struct {
	n    int
	sets [][]label
}

func (t *dpTable) at(mask uint32, last int) []label {
	return t.sets[int(mask)*t.n+last]
}

// path reconstructs the visiting order of label idx at (mask, last).
func (t *dpTable) path(mask uint32, last, idx int) []int {
	seq := make([]int, bits.OnesCount32(mask))
	for i := len(seq) - 1; i >= 0; i-- {
		seq[i] = last
		l := t.at(mask, last)[idx]
		mask ^= 1 << last
		last, idx = int(l.pred), int(l.predIdx)
	}
	return seq
}

// heldKarp solves the problem exactly with a bitmask dynamic program over
// (visited set, last venue) extended with time windows.
//
// For a fixed continuation the route ends no later when the prefix departs
// earlier, and its total wait is the end minus all travel and dwell. A label
// is therefore dropped only when another label of the same key departs no
// later and has travelled no less (and, on equal travel, has the smaller
// venue sequence). Every route that could still win under the full ranking
// keeps a label.
//
// Layers are processed by popcount. Layer k reads only layer k-1 and each
// subset writes only its own label sets, so the subsets of a layer are
// relaxed in parallel without locking. ctx is checked between layers.
//
// Time complexity:  O(n² · 2ⁿ · L²), L the labels kept per key (small)
// Memory complexity: O(n · 2ⁿ · L)
func heldKarp(ctx context.Context, p *Problem, workers int) (*Solution, error) {
	n := p.Venues()
	full := uint32(1)<<n - 1

	t := &dpTable{n: n, sets: make([][]label, (int(full)+1)*n)}

	layers := make([][]uint32, n+1)
	for mask := uint32(1); mask <= full; mask++ {
		k := bits.OnesCount32(mask)
		layers[k] = append(layers[k], mask)
	}

	for v := 0; v < n; v++ {
		leg := p.travel(0, v+1)
		start, ok := p.earliestStart(v, leg)
		if !ok {
			continue
		}
		t.sets[(1<<v)*n+v] = []label{{finish: start + p.Dwell[v], wait: start - leg, travel: leg, pred: -1}}
	}

	for k := 2; k <= n; k++ {
		if err := ctx.Err(); err != nil {
			return nil, &domain.CancelledError{Cause: err}
		}

		layer := layers[k]
		wp := pool.New().WithMaxGoroutines(workers)
		for lo := 0; lo < len(layer); lo += masksPerTask {
			batch := layer[lo:min(lo+masksPerTask, len(layer))]
			wp.Go(func() {
				for _, mask := range batch {
					relax(p, t, mask)
				}
			})
		}
		wp.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, &domain.CancelledError{Cause: err}
	}

	return selectBest(p, t, full)
}

// relax computes the label sets of mask from the sets of mask minus one venue.
func relax(p *Problem, t *dpTable, mask uint32) {
	for last := 0; last < t.n; last++ {
		if mask&(1<<last) == 0 {
			continue
		}
		prev := mask ^ (1 << last)

		var set []label
		for k := 0; k < t.n; k++ {
			if prev&(1<<k) == 0 {
				continue
			}
			for idx, from := range t.at(prev, k) {
				leg := p.travel(k+1, last+1)
				arrive := from.finish + leg
				start, ok := p.earliestStart(last, arrive)
				if !ok {
					continue
				}
				set = t.insert(prev, set, label{
					finish:  start + p.Dwell[last],
					wait:    from.wait + start - arrive,
					travel:  from.travel + leg,
					pred:    int8(k),
					predIdx: int32(idx),
				})
			}
		}
		t.sets[int(mask)*t.n+last] = set
	}
}

// insert adds cand to the set of one key unless a kept label dominates it,
// and drops the labels cand dominates. prev is the mask the labels extend.
func (t *dpTable) insert(prev uint32, set []label, cand label) []label {
	for _, l := range set {
		if t.dominates(prev, l, cand) {
			return set
		}
	}
	kept := set[:0]
	for _, l := range set {
		if !t.dominates(prev, cand, l) {
			kept = append(kept, l)
		}
	}
	return append(kept, cand)
}

// dominates reports whether a is at least as good as b for every
// continuation. Both end at the same venue after visiting the same set.
func (t *dpTable) dominates(prev uint32, a, b label) bool {
	if a.finish > b.finish || a.travel < b.travel {
		return false
	}
	if a.travel > b.travel {
		return true
	}
	return slices.Compare(
		t.path(prev, int(a.pred), int(a.predIdx)),
		t.path(prev, int(b.pred), int(b.predIdx)),
	) <= 0
}

// selectBest picks the winning state for the objective. Full coverage only
// considers the complete set; max_venues considers every reachable subset.
func selectBest(p *Problem, t *dpTable, full uint32) (*Solution, error) {
	var (
		best      []int
		bestScore score
	)

	consider := func(mask uint32) {
		for last := 0; last < t.n; last++ {
			if mask&(1<<last) == 0 {
				continue
			}
			for idx, l := range t.at(mask, last) {
				end, ok := p.finish(last+1, l.finish)
				if !ok {
					continue
				}
				s := score{count: bits.OnesCount32(mask), elapsed: end, wait: l.wait, rankSum: rankSum(mask)}
				if best != nil && p.compareScores(s, bestScore) > 0 {
					continue
				}
				order := t.path(mask, last, idx)
				if best == nil || p.compareRoutes(s, order, bestScore, best) < 0 {
					best, bestScore = order, s
				}
			}
		}
	}

	if p.Objective == domain.ObjectiveMaxVenues {
		for mask := uint32(1); mask <= full; mask++ {
			consider(mask)
		}
	} else {
		consider(full)
	}

	if best == nil {
		return nil, unreachableError(p, t, full)
	}

	return newSolution(p, best, true)
}

// unreachableError names venues no state ever reached. When every venue is
// reachable on its own but no complete route exists, it names the venues
// missing from the largest feasible subset.
func unreachableError(p *Problem, t *dpTable, full uint32) error {
	reached := make([]bool, t.n)
	var (
		largest     uint32
		largestSize int
	)
	for mask := uint32(1); mask <= full; mask++ {
		for last := 0; last < t.n; last++ {
			if mask&(1<<last) == 0 || !anyFinishes(p, t.at(mask, last), last) {
				continue
			}
			reached[last] = true
			if size := bits.OnesCount32(mask); size > largestSize {
				largest, largestSize = mask, size
			}
		}
	}

	var missing []int
	for v := 0; v < t.n; v++ {
		if !reached[v] {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		for v := 0; v < t.n; v++ {
			if largest&(1<<v) == 0 {
				missing = append(missing, v)
			}
		}
	}

	return &UnreachableError{Venues: missing}
}

func anyFinishes(p *Problem, set []label, last int) bool {
	for _, l := range set {
		if _, ok := p.finish(last+1, l.finish); ok {
			return true
		}
	}
	return false
}

func rankSum(mask uint32) int {
	sum := 0
	for mask != 0 {
		v := bits.TrailingZeros32(mask)
		sum += v + 1
		mask &= mask - 1
	}
	return sum
}
