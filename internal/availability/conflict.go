package availability

import (
	"fmt"
	"time"

	"slotify/pkg/clock"
	"slotify/pkg/model"
)

// Reject reason codes. INVALID_RANGE and OUTSIDE_HOURS map to HTTP 400 at the
// boundary; DAY_CLOSED, TIME_BLOCKED and CONFLICT map to 409.
const (
	ReasonInvalidRange = "INVALID_RANGE"
	ReasonDayClosed    = "DAY_CLOSED"
	ReasonOutsideHours = "OUTSIDE_HOURS"
	ReasonTimeBlocked  = "TIME_BLOCKED"
	ReasonConflict     = "CONFLICT"
)

// ConflictSummary describes one existing appointment a proposal collides
// with, in the shape callers display to the end user.
type ConflictSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Result is the outcome of validating a proposed appointment. It is a
// first-class value, not an error: a reject is an expected answer the caller
// presents to the user, and retrying with unchanged input reproduces it.
type Result struct {
	OK        bool
	Reason    string
	Message   string
	Conflicts []ConflictSummary
}

func accept() Result {
	return Result{OK: true}
}

func reject(reason, message string) Result {
	return Result{Reason: reason, Message: message}
}

// HoursViolation reports whether the result is a business-hours reject
// (closed day or outside the open window). The appointments service treats
// these separately when hours enforcement is configured to warn-only.
func (r Result) HoursViolation() bool {
	return r.Reason == ReasonDayClosed || r.Reason == ReasonOutsideHours
}

// ValidationInput carries everything needed to judge a proposed interval.
// Existing must already be scoped to the proposal's owner.
type ValidationInput struct {
	Start    time.Time
	End      time.Time
	Hours    model.WeeklyHours
	Blocked  []model.BlockedTime
	Existing []model.Appointment

	// ExcludeID skips one appointment during the overlap scan, so a
	// reschedule does not conflict with itself.
	ExcludeID string
}

// ValidateAppointment runs the ordered checks on a proposal: range sanity,
// business hours (closed day reported separately from an out-of-window
// time), blocked ranges over the whole span, then strict overlap against the
// owner's existing non-cancelled appointments. The first failing check
// determines the reported reason; touching intervals are accepted.
func ValidateAppointment(in ValidationInput) Result {
	if !in.Start.Before(in.End) {
		return reject(ReasonInvalidRange, "end time must be after start time")
	}

	if !IsWithinBusinessHours(in.Start, in.Hours) {
		if !IsOpenOn(in.Start, in.Hours) {
			return reject(ReasonDayClosed,
				fmt.Sprintf("business is closed on %s", clock.DayKeyOf(in.Start)))
		}
		return reject(ReasonOutsideHours, "requested time is outside business hours")
	}

	if SpanBlocked(in.Start, in.End, in.Blocked) {
		return reject(ReasonTimeBlocked, "requested time falls in a blocked period")
	}

	var conflicts []ConflictSummary
	for i := range in.Existing {
		other := &in.Existing[i]
		if other.ID == in.ExcludeID {
			continue
		}
		if !other.Blocks() {
			continue
		}
		if Overlaps(in.Start, in.End, other.StartTime, other.EndTime) {
			conflicts = append(conflicts, ConflictSummary{
				ID:        other.ID,
				Title:     other.Title,
				StartTime: other.StartTime,
				EndTime:   other.EndTime,
			})
		}
	}
	if len(conflicts) > 0 {
		res := reject(ReasonConflict, "requested time overlaps an existing appointment")
		res.Conflicts = conflicts
		return res
	}

	return accept()
}
