package availability

import (
	"time"

	"slotify/pkg/clock"
	"slotify/pkg/model"
)

// IsBlocked reports whether instant is covered by any of the owner's blocked
// ranges, either as a direct hit inside a concrete interval or through a
// recurring pattern. The result is a logical OR over all ranges.
func IsBlocked(instant time.Time, ranges []model.BlockedTime) bool {
	for i := range ranges {
		if covers(&ranges[i], instant) {
			return true
		}
	}
	return false
}

func covers(r *model.BlockedTime, instant time.Time) bool {
	// Direct hit on the concrete interval, boundary inclusive.
	if withinInclusive(instant, r.StartTime, r.EndTime) {
		return true
	}
	if !r.IsRecurring {
		return false
	}
	// RecurrenceEnd is inclusive: an occurrence on the end instant itself
	// still matches.
	if r.RecurrenceEnd != nil && instant.After(*r.RecurrenceEnd) {
		return false
	}
	return matchesRecurrence(instant, r)
}

// matchesRecurrence applies the shared minute-of-day span test behind a
// per-pattern day predicate: daily matches every day, weekly the template's
// weekday, monthly the template's day of month. Validation rejects recurring
// templates whose time-of-day span crosses midnight, so start <= end holds
// here.
func matchesRecurrence(instant time.Time, r *model.BlockedTime) bool {
	if !dayMatches(instant, r) {
		return false
	}
	m := clock.MinuteOfDay(instant)
	return m >= clock.MinuteOfDay(r.StartTime) && m <= clock.MinuteOfDay(r.EndTime)
}

func dayMatches(instant time.Time, r *model.BlockedTime) bool {
	switch r.RecurrenceType {
	case model.RecurrenceDaily:
		return true
	case model.RecurrenceWeekly:
		return instant.Weekday() == r.StartTime.Weekday()
	case model.RecurrenceMonthly:
		return instant.Day() == r.StartTime.Day()
	default:
		return false
	}
}

// SpanBlocked reports whether any part of [start, end) is blocked, not just
// the start instant. Concrete ranges use the strict interval intersection;
// recurring ranges compare minute-of-day spans on matching days, which covers
// occurrences lying wholly inside the proposed interval.
func SpanBlocked(start, end time.Time, ranges []model.BlockedTime) bool {
	for i := range ranges {
		r := &ranges[i]
		if Overlaps(start, end, r.StartTime, r.EndTime) {
			return true
		}
		if r.IsRecurring && recurringSpanHit(start, end, r) {
			return true
		}
	}
	return false
}

// recurringSpanHit walks every calendar day [start, end) touches and tests
// that day's segment against the template's minute-of-day span, so a span
// crossing midnight can hit an occurrence on either side of the boundary.
// The segment test is end-inclusive on the blocked side, matching the direct
// hit in covers.
func recurringSpanHit(start, end time.Time, r *model.BlockedTime) bool {
	blockStart := clock.MinuteOfDay(r.StartTime)
	blockEnd := clock.MinuteOfDay(r.EndTime)

	for dayStart := start; dayStart.Before(end); {
		dayEnd := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 0, 0, 0, 0, dayStart.Location()).AddDate(0, 0, 1)
		segEnd := dayEnd
		if end.Before(segEnd) {
			segEnd = end
		}

		withinRecurrence := r.RecurrenceEnd == nil || !dayStart.After(*r.RecurrenceEnd)
		if withinRecurrence && dayMatches(dayStart, r) {
			segStart := clock.MinuteOfDay(dayStart)
			segSpanEnd := segStart + int(segEnd.Sub(dayStart)/time.Minute)
			if segStart <= blockEnd && segSpanEnd > blockStart {
				return true
			}
		}
		dayStart = dayEnd
	}
	return false
}
