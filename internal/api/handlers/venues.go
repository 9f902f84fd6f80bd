package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"tapas-route-service/internal/api/dto"
	"tapas-route-service/internal/domain"
	"tapas-route-service/internal/ports"
	"time"

	"github.com/jinzhu/copier"
)

// VenueHandler exposes the read-only venue catalog.
type VenueHandler struct {
	Repo ports.VenueRepository
}

func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	venues, err := h.Repo.ListVenues(r.Context())
	if err != nil {
		writeDomainError(w, r, "list venues", err)
		return
	}

	res := dto.ListVenuesResponse{Venues: make([]dto.VenueResponse, 0, len(venues))}
	for _, v := range venues {
		out, err := toVenueResponse(v)
		if err != nil {
			writeDomainError(w, r, "list venues", err)
			return
		}
		res.Venues = append(res.Venues, out)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toVenueResponse(v domain.Venue) (dto.VenueResponse, error) {
	var out dto.VenueResponse
	if err := copier.Copy(&out, &v); err != nil {
		return dto.VenueResponse{}, fmt.Errorf("map venue %q: %w", v.ID, err)
	}
	out.DwellMinutes = int(v.Dwell / time.Minute)
	out.Hours = formatHours(v.Schedule)
	return out, nil
}

// formatHours renders a schedule keyed by lowercase weekday, HH:MM-HH:MM.
func formatHours(s domain.WeeklySchedule) map[string][]string {
	hours := make(map[string][]string, len(s.Days))
	for day, intervals := range s.Days {
		out := make([]string, 0, len(intervals))
		for _, iv := range intervals {
			out = append(out, clock(iv.Open)+"-"+clock(iv.Close))
		}
		hours[strings.ToLower(time.Weekday(day).String())] = out
	}
	return hours
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}
