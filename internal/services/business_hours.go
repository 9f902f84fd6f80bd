package services

import (
	"fmt"
	"tapas-route-service/internal/domain"
	"time"

	"github.com/dromara/carbon/v2"
)

// WindowsWithin unrolls a weekly schedule into absolute opening windows
// intersecting [rangeStart, rangeEnd), in rangeStart's location.
//
// Intervals are normalized to instants before any comparison, so hours
// crossing midnight are handled like any other window. Windows that touch
// (one closes exactly when the next opens) are merged; windows that overlap
// are rejected. The first and last windows are clipped to the range.
func WindowsWithin(s domain.WeeklySchedule, rangeStart, rangeEnd time.Time) ([]domain.TimeWindow, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if !rangeEnd.After(rangeStart) {
		return nil, nil
	}

	loc := rangeStart.Location()
	out := make([]domain.TimeWindow, 0, 8)

	// Start one day early: yesterday's late interval may still be open.
	day := carbon.NewCarbon(rangeStart).StartOfDay().SubDay()
	for ; day.StdTime().Before(rangeEnd); day = day.AddDay() {
		date := day.StdTime().In(loc)

		for _, iv := range s.Days[date.Weekday()] {
			openOff, closeOff := iv.Span()
			w := domain.TimeWindow{Open: atOffset(date, openOff), Close: atOffset(date, closeOff)}

			if len(out) > 0 {
				last := &out[len(out)-1]
				if w.Open.Before(last.Close) {
					return nil, &domain.InvalidScheduleError{
						Day:    date.Weekday(),
						Reason: fmt.Sprintf("interval opening at %s overlaps the previous day's interval", iv.Open),
					}
				}
				if w.Open.Equal(last.Close) {
					last.Close = w.Close
					continue
				}
			}
			out = append(out, w)
		}
	}

	clipped := out[:0]
	for _, w := range out {
		if !w.Close.After(rangeStart) || !w.Open.Before(rangeEnd) {
			continue
		}
		if w.Open.Before(rangeStart) {
			w.Open = rangeStart
		}
		if w.Close.After(rangeEnd) {
			w.Close = rangeEnd
		}
		clipped = append(clipped, w)
	}

	return clipped, nil
}

// IsOpenAt reports whether the venue is open at instant t.
func IsOpenAt(s domain.WeeklySchedule, t time.Time) (bool, error) {
	windows, err := WindowsWithin(s, t, t.Add(time.Nanosecond))
	if err != nil {
		return false, err
	}
	return len(windows) > 0, nil
}

// NextOpeningAfter returns t itself when the venue is open at t, otherwise
// the next opening instant before horizonEnd. The boolean is false when the
// venue does not open again inside the horizon.
func NextOpeningAfter(s domain.WeeklySchedule, t, horizonEnd time.Time) (time.Time, bool, error) {
	windows, err := WindowsWithin(s, t, horizonEnd)
	if err != nil {
		return time.Time{}, false, err
	}
	if len(windows) == 0 {
		return time.Time{}, false, nil
	}
	return windows[0].Open, true, nil
}

// atOffset returns the wall-clock instant offset from local midnight of date.
// time.Date normalizes offsets past 24h into the following day.
func atOffset(date time.Time, offset time.Duration) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, int(offset/time.Second), 0, date.Location())
}
