package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"tapas-route-service/internal/adapters/distance"
	"tapas-route-service/internal/adapters/repositories"
	"tapas-route-service/internal/api/dto"
	"tapas-route-service/internal/domain"
	"tapas-route-service/internal/services"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	var lunch domain.WeeklySchedule
	lunch.Add(time.Monday, 12*time.Hour, 15*time.Hour)

	repo := repositories.NewMemoryVenueRepository([]domain.Venue{
		{
			Point:    domain.Point{ID: "pinoquio", Lat: 38.71584, Lon: -9.14075},
			Name:     "Pinóquio",
			Schedule: domain.Everyday(domain.DayInterval{Open: 12 * time.Hour, Close: domain.Day}),
			Dwell:    45 * time.Minute,
		},
		{
			Point:    domain.Point{ID: "o-trevo", Lat: 38.71074, Lon: -9.14359},
			Name:     "O Trevo",
			Schedule: lunch,
			Dwell:    20 * time.Minute,
		},
	})

	model, err := distance.NewHaversineModel(4.5)
	require.NoError(t, err)
	optimizer, err := services.NewOptimizer(services.DefaultOptimizerOptions())
	require.NoError(t, err)
	planner, err := services.NewPlanner(model, optimizer, 12*time.Hour, time.UTC)
	require.NoError(t, err)

	return NewRouter(repo, planner)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestListTapas(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/tapas", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.ListVenuesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Venues, 2)

	trevo := res.Venues[0]
	assert.Equal(t, "o-trevo", trevo.ID)
	assert.Equal(t, "O Trevo", trevo.Name)
	assert.InDelta(t, 38.71074, trevo.Lat, 1e-9)
	assert.Equal(t, 20, trevo.DwellMinutes)
	assert.Equal(t, []string{"12:00-15:00"}, trevo.Hours["monday"])
	assert.Empty(t, trevo.Hours["tuesday"])
}

func TestPlanRoute(t *testing.T) {
	body := `{
		"start": {"lat": 38.7139, "lon": -9.1394},
		"start_at": "2026-01-05T11:30:00Z",
		"horizon_minutes": 300
	}`

	rec := do(t, newTestRouter(t), http.MethodPost, "/routes", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	require.Len(t, res.Stops, 2)
	assert.Equal(t, "cover_all", res.Objective)
	assert.True(t, res.Exact)
	for _, s := range res.Stops {
		assert.False(t, s.StartAt.Before(s.ArriveAt))
		assert.GreaterOrEqual(t, s.StartAt.Hour(), 12)
	}
	assert.Equal(t, res.EndAt.Sub(res.StartAt), time.Duration(res.TotalElapsedSeconds)*time.Second)
}

func TestPlanRouteErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		status int
		want   string
	}{
		{name: "wrong method", method: http.MethodGet, status: http.StatusMethodNotAllowed},
		{name: "bad json", method: http.MethodPost, body: `{"start":`, status: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, body: `{"truck_count": 3}`, status: http.StatusBadRequest},
		{name: "missing start", method: http.MethodPost, body: `{}`, status: http.StatusBadRequest},
		{
			name:   "unknown objective",
			method: http.MethodPost,
			body:   `{"start":{"lat":38.7,"lon":-9.1},"objective":"fastest"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown venue",
			method: http.MethodPost,
			body:   `{"start":{"lat":38.7,"lon":-9.1},"venue_ids":["nowhere"]}`,
			status: http.StatusBadRequest,
			want:   "nowhere",
		},
		{
			name:   "closed on tuesday",
			method: http.MethodPost,
			body:   `{"start":{"lat":38.7139,"lon":-9.1394},"start_at":"2026-01-06T11:30:00Z","venue_ids":["o-trevo"]}`,
			status: http.StatusUnprocessableEntity,
			want:   "o-trevo",
		},
	}

	h := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, "/routes", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var res dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.NotEmpty(t, res.Error)
			if tt.want != "" {
				assert.Contains(t, rec.Body.String(), tt.want)
			}
		})
	}
}

func TestMaxVenuesReportsUnvisited(t *testing.T) {
	body := `{
		"start": {"lat": 38.7139, "lon": -9.1394},
		"start_at": "2026-01-06T18:00:00Z",
		"objective": "max_venues"
	}`

	rec := do(t, newTestRouter(t), http.MethodPost, "/routes", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Stops, 1)
	assert.Equal(t, "pinoquio", res.Stops[0].VenueID)
	assert.Equal(t, []string{"o-trevo"}, res.Unvisited)
}

func TestRequestIDIsPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()

	newTestRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}
