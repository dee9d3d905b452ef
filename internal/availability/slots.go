package availability

import (
	"time"

	"slotify/pkg/clock"
	"slotify/pkg/model"
)

// DefaultIncrementMinutes is the slot walk step used when the caller passes
// a non-positive increment.
const DefaultIncrementMinutes = 15

// BusyInterval is an already-committed interval (a non-cancelled appointment)
// that makes overlapping slots unavailable.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// GenerateSlots produces the ordered candidate start times for date, walking
// the day's open window in incrementMin steps. A candidate is only emitted
// when its full duration fits before closing time, so no offered slot can run
// past close. Each slot is marked unavailable when it strictly overlaps a
// busy interval or any part of it is blocked; callers filter on Available
// when presenting choices, or use the flags to distinguish display states.
//
// A closed day yields no slots regardless of duration or existing bookings.
func GenerateSlots(date time.Time, hours model.WeeklyHours, durationMin int, busy []BusyInterval, blocked []model.BlockedTime, incrementMin int) []model.TimeSlot {
	if durationMin <= 0 {
		return nil
	}
	if incrementMin <= 0 {
		incrementMin = DefaultIncrementMinutes
	}

	window, ok := OpenInterval(date, hours)
	if !ok {
		return nil
	}

	openStart := clock.MinuteOfDay(window.Start)
	openEnd := clock.MinuteOfDay(window.End)

	var slots []model.TimeSlot
	for m := openStart; m+durationMin <= openEnd; m += incrementMin {
		slotStart := clock.FromMinutes(m).OnDate(date)
		slotEnd := clock.AddMinutes(slotStart, durationMin)

		available := !overlapsAny(slotStart, slotEnd, busy) &&
			!SpanBlocked(slotStart, slotEnd, blocked)

		slots = append(slots, model.TimeSlot{
			Time:      clock.FromMinutes(m).String(),
			Available: available,
		})
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []BusyInterval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
