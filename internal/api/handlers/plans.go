package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"tapas-route-service/internal/api/dto"
	"tapas-route-service/internal/domain"
	"tapas-route-service/internal/ports"
	"tapas-route-service/internal/services"
	"time"

	"github.com/jinzhu/copier"
)

type PlanHandler struct {
	Repo    ports.VenueRepository
	Planner *services.Planner
	// Clock for requests without start_at.
	Now func() time.Time
}

// Plan resolves the requested venues from the catalog and returns the
// optimized visiting order.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if req.Start == nil || req.Start.Lat == nil || req.Start.Lon == nil {
		writeError(w, r, http.StatusBadRequest, "start.lat and start.lon are required")
		return
	}
	if req.HorizonMinutes < 0 {
		writeError(w, r, http.StatusBadRequest, "horizon_minutes must not be negative")
		return
	}
	objective, err := domain.ParseObjective(req.Objective)
	if err != nil {
		writeDomainError(w, r, "plan route", err)
		return
	}

	startAt := h.now()
	if req.StartAt != nil {
		startAt = *req.StartAt
	}

	var venues []domain.Venue
	if len(req.VenueIDs) == 0 {
		venues, err = h.Repo.ListVenues(r.Context())
	} else {
		venues, err = h.Repo.GetVenues(r.Context(), req.VenueIDs)
	}
	if err != nil {
		writeDomainError(w, r, "load venues", err)
		return
	}

	it, err := h.Planner.Solve(r.Context(), domain.PlanningRequest{
		Venues:        venues,
		Start:         domain.Point{Lat: *req.Start.Lat, Lon: *req.Start.Lon},
		StartAt:       startAt,
		Horizon:       time.Duration(req.HorizonMinutes) * time.Minute,
		Objective:     objective,
		ReturnToStart: req.ReturnToStart,
	})
	if err != nil {
		writeDomainError(w, r, "plan route", err)
		return
	}

	res, err := toPlanResponse(it)
	if err != nil {
		writeDomainError(w, r, "plan route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *PlanHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func toPlanResponse(it *domain.Itinerary) (dto.PlanResponse, error) {
	res := dto.PlanResponse{
		StartAt:             it.StartAt,
		EndAt:               it.EndAt,
		Objective:           it.Objective.String(),
		Exact:               it.Exact,
		TotalElapsedSeconds: seconds(it.TotalElapsed),
		TotalTravelSeconds:  seconds(it.TotalTravel),
		TotalWaitSeconds:    seconds(it.TotalWait),
		ReturnLegSeconds:    seconds(it.ReturnLeg),
		Stops:               make([]dto.PlanStopResponse, 0, len(it.Stops)),
		Unvisited:           it.Unvisited,
	}

	for _, s := range it.Stops {
		var stop dto.PlanStopResponse
		if err := copier.Copy(&stop, &s); err != nil {
			return dto.PlanResponse{}, fmt.Errorf("map stop %q: %w", s.VenueID, err)
		}
		stop.WaitSeconds = seconds(s.Wait)
		stop.TravelSeconds = seconds(s.Travel)
		res.Stops = append(res.Stops, stop)
	}

	return res, nil
}

func seconds(d time.Duration) int64 { return int64(d / time.Second) }
