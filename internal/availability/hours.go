// Package availability implements the scheduling core: resolving weekly
// business hours, matching blocked-time ranges (one-off and recurring),
// generating offerable time slots and validating proposed appointments
// against all of the above.
//
// Every function in this package is a deterministic transform over its
// inputs. There is no I/O, no internal state and no locking; callers are
// expected to serialize read-validate-write cycles per owner themselves
// (see the appointments service's advisory lock).
package availability

import (
	"time"

	"slotify/pkg/clock"
	"slotify/pkg/model"
)

// OpenWindow is a day's open interval as absolute instants.
type OpenWindow struct {
	Start time.Time
	End   time.Time
}

// IsOpenOn reports whether the business is open at all on date's weekday.
// A missing day key counts as closed.
func IsOpenOn(date time.Time, hours model.WeeklyHours) bool {
	day, ok := hours[clock.DayKeyOf(date)]
	return ok && day.Open
}

// OpenInterval resolves date's open window to absolute instants. The second
// return value is false when the day is closed or its stored clock times do
// not parse.
func OpenInterval(date time.Time, hours model.WeeklyHours) (OpenWindow, bool) {
	day, ok := hours[clock.DayKeyOf(date)]
	if !ok || !day.Open {
		return OpenWindow{}, false
	}

	start, err := clock.Parse(day.Start)
	if err != nil {
		return OpenWindow{}, false
	}
	end, err := clock.Parse(day.End)
	if err != nil {
		return OpenWindow{}, false
	}
	if !start.Before(end) {
		return OpenWindow{}, false
	}

	return OpenWindow{
		Start: start.OnDate(date),
		End:   end.OnDate(date),
	}, true
}

// IsWithinBusinessHours reports whether instant falls inside the day's open
// window, inclusive of both endpoints. An appointment starting exactly at
// closing time counts as within hours here; whether it fits is the slot
// generator's and conflict validator's concern. A day marked closed is never
// within hours, even if stale clock times are still present on the record.
func IsWithinBusinessHours(instant time.Time, hours model.WeeklyHours) bool {
	window, ok := OpenInterval(instant, hours)
	if !ok {
		return false
	}
	return withinInclusive(instant, window.Start, window.End)
}

// withinInclusive is the boundary-inclusive interval test used for business
// hours and direct blocked-time hits. Appointment overlap deliberately uses
// the stricter half-open Overlaps instead; the asymmetry is intended.
func withinInclusive(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// Overlaps is the strict half-open interval intersection test: [start1,end1)
// and [start2,end2) overlap iff each starts before the other ends. Touching
// intervals do not overlap.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}
