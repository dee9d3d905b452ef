package model

// TimeSlot is one candidate offering for a (date, duration) availability
// query. It is ephemeral and never persisted.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}
