package services

import (
	"context"
	"fmt"
	"runtime"
	"tapas-route-service/internal/domain"
	"time"
)

// Strategy forces a solver path.
type Strategy int

const (
	// Exact up to ExactThreshold venues, heuristic above.
	StrategyAuto Strategy = iota
	StrategyExact
	StrategyHeuristic
)

func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyExact:
		return "exact"
	case StrategyHeuristic:
		return "heuristic"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a CLI name to a Strategy. Empty means auto.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "auto":
		return StrategyAuto, nil
	case "exact":
		return StrategyExact, nil
	case "heuristic":
		return StrategyHeuristic, nil
	default:
		return 0, &domain.InvalidInputError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %q", s)}
	}
}

type OptimizerOptions struct {
	// Largest venue count solved exactly under StrategyAuto.
	ExactThreshold int
	// Cap on accepted local search moves.
	MaxIterations int
	Strategy      Strategy
	// Goroutines per DP layer. Zero means GOMAXPROCS.
	Workers int
}

func DefaultOptimizerOptions() OptimizerOptions {
	return OptimizerOptions{
		ExactThreshold: 16,
		MaxIterations:  2000,
		Strategy:       StrategyAuto,
	}
}

// Solution is an optimized visiting order with its timeline.
// Order holds venue indices of the Problem.
type Solution struct {
	Order     []int
	Visits    []Visit
	Elapsed   time.Duration
	Travel    time.Duration
	Wait      time.Duration
	ReturnLeg time.Duration
	Exact     bool
}

// UnreachableError is the optimizer's infeasibility result. Venues holds
// problem indices; the planner turns it into a domain.NoFeasibleRouteError.
type UnreachableError struct {
	Venues []int
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s: venues %v", domain.ErrNoFeasibleRoute, e.Venues)
}

func (e *UnreachableError) Unwrap() error { return domain.ErrNoFeasibleRoute }

type Optimizer struct {
	opts OptimizerOptions
}

func NewOptimizer(opts OptimizerOptions) (*Optimizer, error) {
	if opts.ExactThreshold < 0 || opts.ExactThreshold > maxExactVenues {
		return nil, fmt.Errorf("new optimizer: exact threshold must be between 0 and %d, got %d", maxExactVenues, opts.ExactThreshold)
	}
	if opts.MaxIterations < 0 {
		return nil, fmt.Errorf("new optimizer: max iterations must not be negative, got %d", opts.MaxIterations)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Optimizer{opts: opts}, nil
}

// Optimize returns the best route for p under its objective.
//
// Problems up to ExactThreshold venues are solved exactly; larger ones use
// local search. A cancelled ctx yields *domain.CancelledError and never a
// partial route.
func (o *Optimizer) Optimize(ctx context.Context, p *Problem) (*Solution, error) {
	if err := checkProblem(p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.CancelledError{Cause: err}
	}

	n := p.Venues()
	switch o.opts.Strategy {
	case StrategyExact:
		if n > maxExactVenues {
			return nil, &domain.InvalidInputError{
				Field:  "venues",
				Reason: fmt.Sprintf("exact strategy supports at most %d venues, got %d", maxExactVenues, n),
			}
		}
		return heldKarp(ctx, p, o.opts.Workers)
	case StrategyHeuristic:
		return localSearch(ctx, p, o.opts.MaxIterations)
	default:
		if n <= o.opts.ExactThreshold {
			return heldKarp(ctx, p, o.opts.Workers)
		}
		return localSearch(ctx, p, o.opts.MaxIterations)
	}
}

func checkProblem(p *Problem) error {
	n := p.Venues()
	if n == 0 {
		return domain.ErrEmptyRequest
	}
	if p.Matrix.Size() != n+1 {
		return &domain.InvalidInputError{
			Field:  "matrix",
			Reason: fmt.Sprintf("size %d does not match %d venues plus the start", p.Matrix.Size(), n),
		}
	}
	if len(p.Windows) != n {
		return &domain.InvalidInputError{
			Field:  "windows",
			Reason: fmt.Sprintf("%d window lists for %d venues", len(p.Windows), n),
		}
	}
	return nil
}

// newSolution replays order to fill in the timeline and totals.
func newSolution(p *Problem, order []int, exact bool) (*Solution, error) {
	visits, s, ok := p.simulate(order)
	if !ok {
		return nil, fmt.Errorf("optimize: route %v is not feasible", order)
	}

	sol := &Solution{
		Order:   order,
		Visits:  visits,
		Elapsed: s.elapsed,
		Wait:    s.wait,
		Exact:   exact,
	}
	for _, v := range visits {
		sol.Travel += v.Travel
	}
	if p.ReturnToStart && len(order) > 0 {
		sol.ReturnLeg = p.travel(order[len(order)-1]+1, 0)
		sol.Travel += sol.ReturnLeg
	}

	return sol, nil
}
