package model

import (
	"time"

	"slotify/pkg/clock"
)

// DayHours is one day's entry in a weekly hours map. When Open is true both
// Start and End must hold well-formed "HH:MM" values with Start < End.
type DayHours struct {
	Open  bool   `json:"open" bson:"open"`
	Start string `json:"start,omitempty" bson:"start,omitempty"`
	End   string `json:"end,omitempty" bson:"end,omitempty"`
}

// WeeklyHours maps day keys to that day's hours. A missing key is treated as
// closed. The map is replaced wholesale through the settings endpoint, never
// patched per day.
type WeeklyHours map[clock.DayKey]DayHours

type Business struct {
	ID          string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string      `json:"name" bson:"name" validate:"required,min=2,max=100"`
	TimeZone    string      `json:"time_zone,omitempty" bson:"time_zone,omitempty" validate:"omitempty,timezone"`
	WeeklyHours WeeklyHours `json:"weekly_hours" bson:"weekly_hours" validate:"omitempty"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type BusinessUpdate struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	TimeZone string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}

// WeekdayHours builds a Monday-through-Friday schedule with the given
// "HH:MM" open and close times, weekend closed.
func WeekdayHours(start, end string) WeeklyHours {
	weekdays := DayHours{Open: true, Start: start, End: end}
	return WeeklyHours{
		clock.Sunday:    {Open: false},
		clock.Monday:    weekdays,
		clock.Tuesday:   weekdays,
		clock.Wednesday: weekdays,
		clock.Thursday:  weekdays,
		clock.Friday:    weekdays,
		clock.Saturday:  {Open: false},
	}
}

// DefaultWeeklyHours returns the deterministic fallback schedule: Monday
// through Friday 09:00-17:00, weekend closed. Services with access to
// configuration use Config.DefaultSchedule instead, which derives the times
// from the configured defaults.
func DefaultWeeklyHours() WeeklyHours {
	return WeekdayHours("09:00", "17:00")
}
