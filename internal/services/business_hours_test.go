package services

import (
	"tapas-route-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 5 January 2026.
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return monday.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestWindowsWithin(t *testing.T) {
	tests := []struct {
		name     string
		schedule func() domain.WeeklySchedule
		from, to time.Time
		want     []domain.TimeWindow
	}{
		{
			name: "lunch and dinner on monday",
			schedule: func() domain.WeeklySchedule {
				var s domain.WeeklySchedule
				s.Add(time.Monday, 12*time.Hour, 15*time.Hour).Add(time.Monday, 19*time.Hour, 23*time.Hour)
				return s
			},
			from: at(0, 9, 0), to: at(1, 9, 0),
			want: []domain.TimeWindow{
				{Open: at(0, 12, 0), Close: at(0, 15, 0)},
				{Open: at(0, 19, 0), Close: at(0, 23, 0)},
			},
		},
		{
			name: "sunday late hours still open on monday morning",
			schedule: func() domain.WeeklySchedule {
				var s domain.WeeklySchedule
				s.Add(time.Sunday, 22*time.Hour, 2*time.Hour)
				return s
			},
			from: at(0, 0, 30), to: at(0, 12, 0),
			want: []domain.TimeWindow{{Open: at(0, 0, 30), Close: at(0, 2, 0)}},
		},
		{
			name: "touching windows merge across midnight",
			schedule: func() domain.WeeklySchedule {
				var s domain.WeeklySchedule
				s.Add(time.Monday, 20*time.Hour, 0).Add(time.Tuesday, 0, 3*time.Hour)
				return s
			},
			from: at(0, 18, 0), to: at(1, 12, 0),
			want: []domain.TimeWindow{{Open: at(0, 20, 0), Close: at(1, 3, 0)}},
		},
		{
			name: "open all day is one window clipped to the range",
			schedule: func() domain.WeeklySchedule {
				return domain.Everyday(domain.DayInterval{Open: 0, Close: domain.Day})
			},
			from: at(0, 9, 0), to: at(2, 9, 0),
			want: []domain.TimeWindow{{Open: at(0, 9, 0), Close: at(2, 9, 0)}},
		},
		{
			name:     "closed all week",
			schedule: func() domain.WeeklySchedule { return domain.WeeklySchedule{} },
			from:     at(0, 9, 0), to: at(7, 9, 0),
			want:     []domain.TimeWindow{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WindowsWithin(tt.schedule(), tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowsWithinRejectsOverlapAcrossMidnight(t *testing.T) {
	var s domain.WeeklySchedule
	s.Add(time.Monday, 22*time.Hour, 3*time.Hour).Add(time.Tuesday, 1*time.Hour, 4*time.Hour)

	_, err := WindowsWithin(s, at(0, 12, 0), at(1, 12, 0))

	var se *domain.InvalidScheduleError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, time.Tuesday, se.Day)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWindowsWithinRejectsInvalidSchedule(t *testing.T) {
	var s domain.WeeklySchedule
	s.Add(time.Friday, 18*time.Hour, 18*time.Hour)

	_, err := WindowsWithin(s, at(0, 0, 0), at(7, 0, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIsOpenAt(t *testing.T) {
	var s domain.WeeklySchedule
	s.Add(time.Monday, 10*time.Hour, 14*time.Hour)

	for _, tc := range []struct {
		at   time.Time
		open bool
	}{
		{at(0, 9, 59), false},
		{at(0, 10, 0), true},
		{at(0, 13, 59), true},
		{at(0, 14, 0), false},
		{at(1, 11, 0), false},
	} {
		open, err := IsOpenAt(s, tc.at)
		require.NoError(t, err)
		assert.Equal(t, tc.open, open, tc.at.String())
	}
}

func TestNextOpeningAfter(t *testing.T) {
	var s domain.WeeklySchedule
	s.Add(time.Monday, 10*time.Hour, 14*time.Hour).Add(time.Wednesday, 10*time.Hour, 14*time.Hour)

	next, ok, err := NextOpeningAfter(s, at(0, 11, 0), at(0, 20, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, at(0, 11, 0), next, "open now returns the instant itself")

	next, ok, err = NextOpeningAfter(s, at(0, 15, 0), at(3, 0, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, at(2, 10, 0), next)

	_, ok, err = NextOpeningAfter(s, at(0, 15, 0), at(2, 9, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}
