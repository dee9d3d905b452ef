// Package clock provides the time primitives the scheduling engine is built
// on: lowercase day-of-week keys, validated "HH:MM" clock times and
// minute-of-day arithmetic. Everything here is pure and locale-independent.
package clock

import (
	"fmt"
	"regexp"
	"time"
)

// DayKey identifies a weekday slot in a weekly hours map. The seven values
// below are the only valid keys.
type DayKey string

const (
	Sunday    DayKey = "sunday"
	Monday    DayKey = "monday"
	Tuesday   DayKey = "tuesday"
	Wednesday DayKey = "wednesday"
	Thursday  DayKey = "thursday"
	Friday    DayKey = "friday"
	Saturday  DayKey = "saturday"
)

// dayKeys is indexed by time.Weekday (0 = Sunday).
var dayKeys = [7]DayKey{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// AllDayKeys returns the seven day keys in Sunday-first order.
func AllDayKeys() [7]DayKey {
	return dayKeys
}

// DayKeyOf maps a date's weekday to its DayKey.
func DayKeyOf(t time.Time) DayKey {
	return dayKeys[int(t.Weekday())]
}

// Valid reports whether d is one of the seven day keys.
func (d DayKey) Valid() bool {
	for _, k := range dayKeys {
		if d == k {
			return true
		}
	}
	return false
}

// FormatError reports a malformed clock-time string. It always indicates a
// caller bug and is never retried.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid clock time %q, expected HH:MM in 24-hour format", e.Input)
}

// ClockTime is a validated time of day stored as minutes since midnight,
// always in [0, 1439]. Construct it through Parse or FromMinutes so malformed
// input is rejected before it reaches any arithmetic.
type ClockTime int

const minutesPerDay = 1440

var clockTimeRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// Parse converts an "HH:MM" string to a ClockTime. A single-digit hour is
// accepted ("9:30"), matching the format stored by the settings forms.
func Parse(s string) (ClockTime, error) {
	if !clockTimeRegex.MatchString(s) {
		return 0, &FormatError{Input: s}
	}

	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, &FormatError{Input: s}
	}
	return ClockTime(hour*60 + minute), nil
}

// FromMinutes converts minutes since midnight to a ClockTime. Values outside
// [0, 1439] wrap modulo 1440, so day arithmetic can be done in plain minutes
// and converted back without range bookkeeping.
func FromMinutes(m int) ClockTime {
	m %= minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return ClockTime(m)
}

// Minutes returns the minutes-since-midnight value.
func (c ClockTime) Minutes() int {
	return int(c)
}

// String formats the clock time as zero-padded "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Before reports whether c is strictly earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool {
	return c < other
}

// OnDate combines the clock time with date's calendar day in date's location.
func (c ClockTime) OnDate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(c)/60, int(c)%60, 0, 0, date.Location())
}

// MinuteOfDay returns t's time of day in minutes since midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// AddMinutes shifts t by n minutes. Hour and day rollover is handled by the
// time package, not by manual arithmetic.
func AddMinutes(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * time.Minute)
}
