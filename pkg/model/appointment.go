package model

import (
	"time"
)

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

type Appointment struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID   string    `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	ClientID  string    `json:"client_id" bson:"client_id" validate:"required,mongodb"`
	ServiceID string    `json:"service_id,omitempty" bson:"service_id,omitempty" validate:"omitempty,mongodb"`
	Title     string    `json:"title" bson:"title" validate:"required,min=2,max=100"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=scheduled confirmed cancelled completed no_show"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type AppointmentUpdate struct {
	Title     string     `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	ServiceID string     `json:"service_id,omitempty" validate:"omitempty,mongodb"`
	StartTime *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	Status    string     `json:"status,omitempty" validate:"omitempty,oneof=scheduled confirmed cancelled completed no_show"`
}

// Blocks reports whether the appointment occupies its interval for conflict
// purposes. Cancelled appointments keep their history but never block.
func (a *Appointment) Blocks() bool {
	return a.Status != StatusCancelled
}
