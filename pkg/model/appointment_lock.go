package model

import "time"

// AppointmentLock is an advisory lock serializing booking writes per owner
// and slot. It closes the window between the overlap check and the insert,
// so two concurrent bookings cannot both validate against a stale snapshot.
type AppointmentLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
