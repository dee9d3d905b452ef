package model

import (
	"time"
)

const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// BlockedTime is an owner-defined interval during which no appointment may be
// booked, independent of business hours. A recurring range is a template: its
// time of day (plus day of week for weekly, day of month for monthly) repeats
// until RecurrenceEnd, or indefinitely when RecurrenceEnd is nil.
type BlockedTime struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID        string     `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	StartTime      time.Time  `json:"start_time" bson:"start_time" validate:"required"`
	EndTime        time.Time  `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Reason         string     `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=200"`
	IsRecurring    bool       `json:"is_recurring" bson:"is_recurring"`
	RecurrenceType string     `json:"recurrence_type,omitempty" bson:"recurrence_type,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	RecurrenceEnd  *time.Time `json:"recurrence_end,omitempty" bson:"recurrence_end,omitempty" validate:"omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type BlockedTimeUpdate struct {
	StartTime      *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	Reason         string     `json:"reason,omitempty" validate:"omitempty,max=200"`
	IsRecurring    *bool      `json:"is_recurring,omitempty" validate:"omitempty"`
	RecurrenceType string     `json:"recurrence_type,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	RecurrenceEnd  *time.Time `json:"recurrence_end,omitempty" validate:"omitempty"`
}
