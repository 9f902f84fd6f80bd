package services

import (
	"context"
	"tapas-route-service/internal/adapters/distance"
	"tapas-route-service/internal/domain"
	"tapas-route-service/internal/ports"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlanner(t *testing.T, model ports.DistanceModel) *Planner {
	t.Helper()
	planner, err := NewPlanner(model, newTestOptimizer(t, StrategyAuto), 12*time.Hour, nil)
	require.NoError(t, err)
	return planner
}

func matrixModel(t *testing.T, pairs ...distance.Pair) *distance.MatrixModel {
	t.Helper()
	// Pairs are listed one way; the reverse leg takes the same time.
	all := make([]distance.Pair, 0, 2*len(pairs))
	for _, p := range pairs {
		all = append(all, p, distance.Pair{From: p.To, To: p.From, Duration: p.Duration})
	}
	m, err := distance.NewMatrixModel(all)
	require.NoError(t, err)
	return m
}

func venue(id string, dwell time.Duration, s domain.WeeklySchedule) domain.Venue {
	return domain.Venue{
		Point:    domain.Point{ID: id, Lat: 38.71, Lon: -9.14},
		Name:     "Tasca " + id,
		Schedule: s,
		Dwell:    dwell,
	}
}

// Monday 09:00: A opens 10:00-14:00 twenty minutes away, B closes at 09:30
// and is forty minutes away. Nearest-first would head to B and fail.
func mondayScenario(t *testing.T, objective domain.Objective) (*Planner, domain.PlanningRequest) {
	var a, b domain.WeeklySchedule
	a.Add(time.Monday, 10*time.Hour, 14*time.Hour)
	b.Add(time.Monday, 8*time.Hour, 9*time.Hour+30*time.Minute)

	model := matrixModel(t,
		distance.Pair{From: "start", To: "A", Duration: 20 * time.Minute},
		distance.Pair{From: "start", To: "B", Duration: 40 * time.Minute},
		distance.Pair{From: "A", To: "B", Duration: 10 * time.Minute},
	)

	req := domain.PlanningRequest{
		Venues:    []domain.Venue{venue("B", 15*time.Minute, b), venue("A", 30*time.Minute, a)},
		Start:     domain.Point{Lat: 0, Lon: 0},
		StartAt:   at(0, 9, 0),
		Horizon:   8 * time.Hour,
		Objective: objective,
	}
	return newTestPlanner(t, model), req
}

func TestSolveMondayScenario(t *testing.T) {
	t.Run("cover all reports B", func(t *testing.T) {
		planner, req := mondayScenario(t, domain.ObjectiveCoverAll)

		it, err := planner.Solve(context.Background(), req)
		assert.Nil(t, it)

		var nfe *domain.NoFeasibleRouteError
		require.ErrorAs(t, err, &nfe)
		assert.Equal(t, []string{"B"}, nfe.Unreachable)
		assert.ErrorIs(t, err, domain.ErrNoFeasibleRoute)
	})

	t.Run("max venues keeps A", func(t *testing.T) {
		planner, req := mondayScenario(t, domain.ObjectiveMaxVenues)

		it, err := planner.Solve(context.Background(), req)
		require.NoError(t, err)

		require.Len(t, it.Stops, 1)
		stop := it.Stops[0]
		assert.Equal(t, "A", stop.VenueID)
		assert.Equal(t, "Tasca A", stop.Name)
		assert.Equal(t, at(0, 9, 20), stop.ArriveAt)
		assert.Equal(t, 40*time.Minute, stop.Wait)
		assert.Equal(t, at(0, 10, 0), stop.StartAt)
		assert.Equal(t, at(0, 10, 30), stop.DepartAt)

		assert.Equal(t, []string{"B"}, it.Unvisited)
		assert.Equal(t, 90*time.Minute, it.TotalElapsed)
		assert.Equal(t, at(0, 10, 30), it.EndAt)
		assert.True(t, it.Exact)
	})
}

func TestSolveOrdersTiesByID(t *testing.T) {
	open := domain.Everyday(domain.DayInterval{Open: 0, Close: domain.Day})
	model := matrixModel(t,
		distance.Pair{From: "start", To: "bar-1", Duration: 5 * time.Minute},
		distance.Pair{From: "start", To: "bar-2", Duration: 5 * time.Minute},
		distance.Pair{From: "start", To: "bar-3", Duration: 5 * time.Minute},
		distance.Pair{From: "bar-1", To: "bar-2", Duration: 5 * time.Minute},
		distance.Pair{From: "bar-1", To: "bar-3", Duration: 5 * time.Minute},
		distance.Pair{From: "bar-2", To: "bar-3", Duration: 5 * time.Minute},
	)

	req := domain.PlanningRequest{
		Venues: []domain.Venue{
			venue("bar-3", 20*time.Minute, open),
			venue("bar-1", 20*time.Minute, open),
			venue("bar-2", 20*time.Minute, open),
		},
		StartAt: at(0, 18, 0),
	}

	planner := newTestPlanner(t, model)
	first, err := planner.Solve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"bar-1", "bar-2", "bar-3"}, first.VenueIDs())
	assert.Equal(t, 75*time.Minute, first.TotalElapsed)
	assert.Equal(t, 15*time.Minute, first.TotalTravel)
	assert.Empty(t, first.Unvisited)

	second, err := planner.Solve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSolveRejectsBadRequests(t *testing.T) {
	open := domain.Everyday(domain.DayInterval{Open: 0, Close: domain.Day})
	model := matrixModel(t, distance.Pair{From: "start", To: "A", Duration: time.Minute})
	planner := newTestPlanner(t, model)

	var broken domain.WeeklySchedule
	broken.Add(time.Monday, 14*time.Hour, 10*time.Hour).Add(time.Monday, 20*time.Hour, 22*time.Hour)

	tests := []struct {
		name string
		req  domain.PlanningRequest
		want error
	}{
		{
			name: "no venues",
			req:  domain.PlanningRequest{StartAt: at(0, 9, 0)},
			want: domain.ErrEmptyRequest,
		},
		{
			name: "latitude out of range",
			req: domain.PlanningRequest{
				Venues:  []domain.Venue{venue("A", time.Minute, open)},
				Start:   domain.Point{Lat: 91},
				StartAt: at(0, 9, 0),
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "start shares a venue id",
			req: domain.PlanningRequest{
				Venues:  []domain.Venue{venue("start", time.Minute, open)},
				StartAt: at(0, 9, 0),
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "broken schedule",
			req: domain.PlanningRequest{
				Venues:  []domain.Venue{venue("A", time.Minute, broken)},
				StartAt: at(0, 9, 0),
			},
			want: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := planner.Solve(context.Background(), tt.req)
			assert.Nil(t, it)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSolveUsesDefaultHorizon(t *testing.T) {
	var late domain.WeeklySchedule
	late.Add(time.Monday, 20*time.Hour, 23*time.Hour)
	model := matrixModel(t, distance.Pair{From: "start", To: "A", Duration: time.Minute})

	planner, err := NewPlanner(model, newTestOptimizer(t, StrategyAuto), 2*time.Hour, nil)
	require.NoError(t, err)

	_, err = planner.Solve(context.Background(), domain.PlanningRequest{
		Venues:  []domain.Venue{venue("A", 30*time.Minute, late)},
		StartAt: at(0, 9, 0),
	})
	assert.ErrorIs(t, err, domain.ErrNoFeasibleRoute)
}

type countingPreparer struct {
	*distance.MatrixModel
	calls int
}

func (c *countingPreparer) Prepare(_ context.Context, points []domain.Point) (ports.DistanceModel, error) {
	c.calls++
	return c.MatrixModel, nil
}

func TestSolvePreparesMatrixOnce(t *testing.T) {
	open := domain.Everyday(domain.DayInterval{Open: 0, Close: domain.Day})
	prep := &countingPreparer{MatrixModel: matrixModel(t,
		distance.Pair{From: "start", To: "A", Duration: time.Minute},
		distance.Pair{From: "start", To: "B", Duration: 2 * time.Minute},
		distance.Pair{From: "A", To: "B", Duration: 3 * time.Minute},
	)}

	it, err := newTestPlanner(t, prep).Solve(context.Background(), domain.PlanningRequest{
		Venues:        []domain.Venue{venue("A", 0, open), venue("B", 0, open)},
		StartAt:       at(0, 9, 0),
		ReturnToStart: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, prep.calls)
	// start -> A -> B -> start = 1 + 3 + 2; B first gives the same total but A ranks first.
	assert.Equal(t, []string{"A", "B"}, it.VenueIDs())
	assert.Equal(t, 2*time.Minute, it.ReturnLeg)
	assert.Equal(t, 6*time.Minute, it.TotalElapsed)
}
