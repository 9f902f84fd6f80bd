package repositories

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"tapas-route-service/internal/domain"
	"time"

	"gopkg.in/yaml.v3"
)

// VenueSeed is one catalog entry of the seed file.
//
//	- id: ramiro
//	  name: Cervejaria Ramiro
//	  lat: 38.7206
//	  lon: -9.1358
//	  dwell: 45m
//	  hours:
//	    daily: ["12:00-00:30"]
//	    monday: []
type VenueSeed struct {
	ID    string              `yaml:"id"`
	Name  string              `yaml:"name"`
	Lat   float64             `yaml:"lat"`
	Lon   float64             `yaml:"lon"`
	Dwell string              `yaml:"dwell"`
	Hours map[string][]string `yaml:"hours"`
}

type seedFile struct {
	Venues []VenueSeed `yaml:"venues"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Read and parse a YAML venue catalog.
func LoadSeedFile(path string) ([]domain.Venue, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", path, err)
	}
	venues, err := ParseSeed(bytes)
	if err != nil {
		return nil, fmt.Errorf("load seed %q: %w", path, err)
	}
	return venues, nil
}

// ParseSeed decodes a YAML catalog. A day listed explicitly replaces the
// "daily" intervals for that day; an empty list means closed.
func ParseSeed(data []byte) ([]domain.Venue, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	venues := make([]domain.Venue, 0, len(f.Venues))
	seen := make(map[string]struct{}, len(f.Venues))
	for i, item := range f.Venues {
		v, err := item.toVenue()
		if err != nil {
			return nil, fmt.Errorf("venue at index %d: %w", i+1, err)
		}
		if _, ok := seen[v.ID]; ok {
			return nil, fmt.Errorf("venue at index %d: duplicate id %q", i+1, v.ID)
		}
		seen[v.ID] = struct{}{}
		venues = append(venues, v)
	}
	return venues, nil
}

func (s VenueSeed) toVenue() (domain.Venue, error) {
	v := domain.Venue{
		Point: domain.Point{ID: strings.TrimSpace(s.ID), Lat: s.Lat, Lon: s.Lon},
		Name:  strings.TrimSpace(s.Name),
	}

	if s.Dwell != "" {
		d, err := time.ParseDuration(s.Dwell)
		if err != nil {
			return domain.Venue{}, &domain.InvalidInputError{Field: "dwell", Reason: fmt.Sprintf("venue %q: %v", v.ID, err)}
		}
		v.Dwell = d
	}

	if daily, ok := s.Hours["daily"]; ok {
		for d := range v.Schedule.Days {
			if err := addIntervals(&v.Schedule, time.Weekday(d), daily); err != nil {
				return domain.Venue{}, fmt.Errorf("venue %q: %w", v.ID, err)
			}
		}
	}
	for name, intervals := range s.Hours {
		if name == "daily" {
			continue
		}
		day, ok := weekdays[strings.ToLower(name)]
		if !ok {
			return domain.Venue{}, &domain.InvalidInputError{Field: "hours", Reason: fmt.Sprintf("venue %q: unknown day %q", v.ID, name)}
		}
		v.Schedule.Days[day] = nil
		if err := addIntervals(&v.Schedule, day, intervals); err != nil {
			return domain.Venue{}, fmt.Errorf("venue %q: %w", v.ID, err)
		}
	}

	if err := v.Validate(); err != nil {
		return domain.Venue{}, err
	}
	return v, nil
}

func addIntervals(s *domain.WeeklySchedule, day time.Weekday, intervals []string) error {
	for _, raw := range intervals {
		open, close, ok := strings.Cut(raw, "-")
		if !ok {
			return &domain.InvalidInputError{Field: "hours", Reason: fmt.Sprintf("%s: %q is not HH:MM-HH:MM", day, raw)}
		}
		o, err := parseClock(open)
		if err != nil {
			return err
		}
		c, err := parseClock(close)
		if err != nil {
			return err
		}
		s.Add(day, o, c)
	}
	return nil
}

// parseClock reads HH:MM as an offset from midnight. 24:00 is allowed.
func parseClock(s string) (time.Duration, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if !ok || errH != nil || errM != nil || h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, &domain.InvalidInputError{Field: "hours", Reason: fmt.Sprintf("%q is not a valid HH:MM time", s)}
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
