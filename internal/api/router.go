package api

import (
	"net/http"
	"tapas-route-service/internal/api/handlers"
	"tapas-route-service/internal/ports"
	"tapas-route-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.VenueRepository, planner *services.Planner) http.Handler {
	mux := http.NewServeMux()

	venueHandler := &handlers.VenueHandler{Repo: repo}
	planHandler := &handlers.PlanHandler{Repo: repo, Planner: planner}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/tapas", venueHandler.List)
	mux.HandleFunc("/routes", planHandler.Plan)

	return requestIDMiddleware(loggingMiddleware(mux))
}
