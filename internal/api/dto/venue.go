package dto

type VenueResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Lat          float64             `json:"lat"`
	Lon          float64             `json:"lon"`
	DwellMinutes int                 `json:"dwell_minutes"`
	Hours        map[string][]string `json:"hours"`
}

type ListVenuesResponse struct {
	Venues []VenueResponse `json:"venues"`
}
