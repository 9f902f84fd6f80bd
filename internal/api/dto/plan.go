package dto

import "time"

type PointRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type PlanRequest struct {
	Start          *PointRequest `json:"start"`
	StartAt        *time.Time    `json:"start_at"`
	HorizonMinutes int           `json:"horizon_minutes"`
	// "cover_all" (default) or "max_venues".
	Objective string `json:"objective"`
	// Empty plans over the whole catalog.
	VenueIDs      []string `json:"venue_ids"`
	ReturnToStart bool     `json:"return_to_start"`
}

type PlanStopResponse struct {
	VenueID       string    `json:"venue_id"`
	Name          string    `json:"name"`
	ArriveAt      time.Time `json:"arrive_at"`
	WaitSeconds   int64     `json:"wait_seconds"`
	StartAt       time.Time `json:"start_at"`
	DepartAt      time.Time `json:"depart_at"`
	TravelSeconds int64     `json:"travel_seconds"`
}

type PlanResponse struct {
	StartAt             time.Time          `json:"start_at"`
	EndAt               time.Time          `json:"end_at"`
	Objective           string             `json:"objective"`
	Exact               bool               `json:"exact"`
	TotalElapsedSeconds int64              `json:"total_elapsed_seconds"`
	TotalTravelSeconds  int64              `json:"total_travel_seconds"`
	TotalWaitSeconds    int64              `json:"total_wait_seconds"`
	ReturnLegSeconds    int64              `json:"return_leg_seconds,omitempty"`
	Stops               []PlanStopResponse `json:"stops"`
	Unvisited           []string           `json:"unvisited,omitempty"`
}

type ErrorResponse struct {
	Error       string   `json:"error"`
	Unreachable []string `json:"unreachable,omitempty"`
}
