package service

import (
	"context"
	"time"

	"slotify/internal/availability"
	apperrors "slotify/pkg/errors"
	"slotify/pkg/model"
)

// maxDayAppointments bounds the busy-interval fetch for one owner-day.
const maxDayAppointments = 500

// DailySlots returns the candidate start times for one owner and date. Slots
// overlapping a non-cancelled appointment or a blocked range are marked
// unavailable rather than omitted, so callers can render a full day grid.
func (s *appointmentService) DailySlots(ctx context.Context, ownerID string, date time.Time, durationMin, incrementMin int) ([]model.TimeSlot, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("OwnerID is required")
	}
	if durationMin <= 0 {
		durationMin = s.cfg.DefaultDurationMin
	}
	if incrementMin <= 0 {
		incrementMin = s.cfg.DefaultSlotIncrementMin
	}

	hours := s.ownerHours(ctx, ownerID)
	blocked := s.ownerBlocked(ctx, ownerID)

	busy, err := s.dayBusyIntervals(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}

	slots := availability.GenerateSlots(date, hours, durationMin, busy, blocked, incrementMin)

	s.cfg.Log.Debug("Generated daily slots",
		"owner_id", ownerID,
		"date", date.Format("2006-01-02"),
		"duration_min", durationMin,
		"increment_min", incrementMin,
		"slot_count", len(slots),
	)
	return slots, nil
}

// dayBusyIntervals loads the owner's non-cancelled appointments touching the
// given calendar day.
func (s *appointmentService) dayBusyIntervals(ctx context.Context, ownerID string, date time.Time) ([]availability.BusyInterval, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	appointments, err := s.repo.FindByOwner(ctx, ownerID, &dayStart, &dayEnd, maxDayAppointments, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to load appointments for slot generation",
			"owner_id", ownerID,
			"date", dayStart,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load appointments", err)
	}

	busy := make([]availability.BusyInterval, 0, len(appointments))
	for _, a := range appointments {
		if !a.Blocks() {
			continue
		}
		busy = append(busy, availability.BusyInterval{
			Start: a.StartTime,
			End:   a.EndTime,
		})
	}
	return busy, nil
}
