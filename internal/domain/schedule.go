package domain

import (
	"fmt"
	"time"
)

const Day = 24 * time.Hour

// DayInterval is one opening interval expressed as offsets from local
// midnight. A Close at or before Open means the venue closes after
// midnight on the following day. {0, 24h} is open all day.
type DayInterval struct {
	Open  time.Duration
	Close time.Duration
}

// Span returns the normalized [open, close) offsets, with close past 24h
// for intervals crossing midnight.
func (d DayInterval) Span() (time.Duration, time.Duration) {
	if d.Close <= d.Open {
		return d.Open, d.Close + Day
	}
	return d.Open, d.Close
}

// WeeklySchedule holds the recurring opening intervals of a venue,
// indexed by time.Weekday (Sunday = 0).
type WeeklySchedule struct {
	Days [7][]DayInterval
}

// Add appends an interval for the given weekday.
func (s *WeeklySchedule) Add(day time.Weekday, open, close time.Duration) *WeeklySchedule {
	s.Days[day] = append(s.Days[day], DayInterval{Open: open, Close: close})
	return s
}

// Everyday builds a schedule repeating the same intervals on all days.
func Everyday(intervals ...DayInterval) WeeklySchedule {
	var s WeeklySchedule
	for d := range s.Days {
		s.Days[d] = append([]DayInterval(nil), intervals...)
	}
	return s
}

// IsClosedAllWeek reports whether no day has any interval.
func (s WeeklySchedule) IsClosedAllWeek() bool {
	for _, d := range s.Days {
		if len(d) > 0 {
			return false
		}
	}
	return true
}

// Validate checks bounds, ordering and overlap inside each day.
// Only the last interval of a day may cross midnight.
func (s WeeklySchedule) Validate() error {
	for day, intervals := range s.Days {
		wd := time.Weekday(day)
		var prevClose time.Duration
		for i, iv := range intervals {
			if iv.Open < 0 || iv.Open >= Day {
				return &InvalidScheduleError{Day: wd, Reason: fmt.Sprintf("interval #%d opens at %s, want [0, 24h)", i+1, iv.Open)}
			}
			if iv.Close < 0 || iv.Close > Day {
				return &InvalidScheduleError{Day: wd, Reason: fmt.Sprintf("interval #%d closes at %s, want [0, 24h]", i+1, iv.Close)}
			}
			if iv.Open == iv.Close {
				return &InvalidScheduleError{Day: wd, Reason: fmt.Sprintf("interval #%d is empty", i+1)}
			}
			open, close := iv.Span()
			if i > 0 && open < prevClose {
				return &InvalidScheduleError{Day: wd, Reason: fmt.Sprintf("interval #%d overlaps or precedes interval #%d", i+1, i)}
			}
			if close > Day && i != len(intervals)-1 {
				return &InvalidScheduleError{Day: wd, Reason: fmt.Sprintf("interval #%d crosses midnight but is not the last of the day", i+1)}
			}
			prevClose = close
		}
	}
	return nil
}

// TimeWindow is a concrete [Open, Close) interval during which a visit may happen.
type TimeWindow struct {
	Open  time.Time
	Close time.Time
}

// Contains reports whether t is inside [Open, Close).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Open) && t.Before(w.Close)
}
