package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"tapas-route-service/internal/domain"
	"tapas-route-service/internal/platform/obs"
	"tapas-route-service/internal/ports"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultStartID = "start"

// Planner turns planning requests into itineraries.
// It holds no per-request state and is safe for concurrent use.
type Planner struct {
	model          ports.DistanceModel
	optimizer      *Optimizer
	defaultHorizon time.Duration
	// Schedules are read in this location. Nil keeps StartAt's location.
	loc *time.Location
}

func NewPlanner(model ports.DistanceModel, optimizer *Optimizer, defaultHorizon time.Duration, loc *time.Location) (*Planner, error) {
	if model == nil {
		return nil, errors.New("new planner: distance model is required")
	}
	if optimizer == nil {
		return nil, errors.New("new planner: optimizer is required")
	}
	if defaultHorizon <= 0 {
		return nil, fmt.Errorf("new planner: default horizon must be positive, got %s", defaultHorizon)
	}
	return &Planner{model: model, optimizer: optimizer, defaultHorizon: defaultHorizon, loc: loc}, nil
}

// Solve validates the request, builds the travel matrix and opening windows,
// optimizes the visiting order and returns the itinerary.
func (p *Planner) Solve(ctx context.Context, req domain.PlanningRequest) (it *domain.Itinerary, err error) {
	defer obs.Time(ctx, "services.Solve")(&err)

	if req.Horizon == 0 {
		req.Horizon = p.defaultHorizon
	}
	if req.Start.ID == "" {
		req.Start.ID = defaultStartID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if p.loc != nil {
		req.StartAt = req.StartAt.In(p.loc)
	}

	venues := slices.Clone(req.Venues)
	slices.SortFunc(venues, func(a, b domain.Venue) int { return strings.Compare(a.ID, b.ID) })
	for _, v := range venues {
		if v.ID == req.Start.ID {
			return nil, &domain.InvalidInputError{Field: "start.id", Reason: fmt.Sprintf("%q is also a venue id", v.ID)}
		}
	}

	points := make([]domain.Point, 0, len(venues)+1)
	points = append(points, req.Start)
	for _, v := range venues {
		points = append(points, v.Point)
	}

	model := p.model
	// Prefer a per-request prepared matrix when the model is backed by an external metric.
	if mp, ok := model.(ports.MatrixPreparer); ok {
		model, err = mp.Prepare(ctx, points)
		if err != nil {
			return nil, fmt.Errorf("solve: prepare distance matrix: %w", err)
		}
	}

	matrix, err := BuildCostMatrix(model, points)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	horizonEnd := req.StartAt.Add(req.Horizon)
	problem := &Problem{
		Matrix:        matrix,
		Windows:       make([][]Window, len(venues)),
		Dwell:         make([]time.Duration, len(venues)),
		Horizon:       req.Horizon,
		Objective:     req.Objective,
		ReturnToStart: req.ReturnToStart,
	}
	for i, v := range venues {
		windows, err := WindowsWithin(v.Schedule, req.StartAt, horizonEnd)
		if err != nil {
			var se *domain.InvalidScheduleError
			if errors.As(err, &se) {
				se.VenueID = v.ID
			}
			return nil, err
		}
		problem.Windows[i] = toOffsets(windows, req.StartAt)
		problem.Dwell[i] = v.Dwell
	}

	sol, err := p.optimizer.Optimize(ctx, problem)
	if err != nil {
		var ue *UnreachableError
		if errors.As(err, &ue) {
			ids := make([]string, 0, len(ue.Venues))
			for _, i := range ue.Venues {
				ids = append(ids, venues[i].ID)
			}
			return nil, &domain.NoFeasibleRouteError{Unreachable: ids}
		}
		return nil, err
	}

	it = buildItinerary(req, venues, sol)
	log.Debug().
		Str("req_id", obs.RequestID(ctx)).
		Int("venues", len(venues)).
		Int("stops", len(it.Stops)).
		Bool("exact", it.Exact).
		Dur("elapsed", it.TotalElapsed).
		Msg("route planned")

	return it, nil
}

func toOffsets(windows []domain.TimeWindow, origin time.Time) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		out = append(out, Window{Open: w.Open.Sub(origin), Close: w.Close.Sub(origin)})
	}
	return out
}

func buildItinerary(req domain.PlanningRequest, venues []domain.Venue, sol *Solution) *domain.Itinerary {
	it := &domain.Itinerary{
		Stops:        make([]domain.Stop, 0, len(sol.Visits)),
		StartAt:      req.StartAt,
		EndAt:        req.StartAt.Add(sol.Elapsed),
		Objective:    req.Objective,
		ReturnLeg:    sol.ReturnLeg,
		TotalElapsed: sol.Elapsed,
		TotalTravel:  sol.Travel,
		TotalWait:    sol.Wait,
		Exact:        sol.Exact,
	}

	visited := make([]bool, len(venues))
	for _, v := range sol.Visits {
		venue := venues[v.Venue]
		visited[v.Venue] = true
		it.Stops = append(it.Stops, domain.Stop{
			VenueID:  venue.ID,
			Name:     venue.Name,
			ArriveAt: req.StartAt.Add(v.Arrive),
			Wait:     v.Wait,
			StartAt:  req.StartAt.Add(v.Start),
			DepartAt: req.StartAt.Add(v.Depart),
			Travel:   v.Travel,
		})
	}
	for i, ok := range visited {
		if !ok {
			it.Unvisited = append(it.Unvisited, venues[i].ID)
		}
	}

	return it
}
