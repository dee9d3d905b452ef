package validator

import (
	"testing"
	"time"

	"slotify/pkg/logger"
	"slotify/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func TestValidateBlockedTime(t *testing.T) {
	v := NewBlockedTimeValidator(testLogger())

	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	recurrenceEnd := start.AddDate(0, 3, 0)
	pastRecurrenceEnd := start.AddDate(0, -1, 0)

	tests := []struct {
		name      string
		blocked   *model.BlockedTime
		wantError bool
	}{
		{
			name: "one-off range",
			blocked: &model.BlockedTime{
				OwnerID:   "507f1f77bcf86cd799439011",
				StartTime: start,
				EndTime:   start.Add(time.Hour),
				Reason:    "Dentist",
			},
			wantError: false,
		},
		{
			name: "one-off range crossing midnight",
			blocked: &model.BlockedTime{
				OwnerID:   "507f1f77bcf86cd799439011",
				StartTime: time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC),
				EndTime:   time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC),
			},
			wantError: false,
		},
		{
			name: "end before start",
			blocked: &model.BlockedTime{
				OwnerID:   "507f1f77bcf86cd799439011",
				StartTime: start,
				EndTime:   start.Add(-time.Hour),
			},
			wantError: true,
		},
		{
			name: "recurring weekly",
			blocked: &model.BlockedTime{
				OwnerID:        "507f1f77bcf86cd799439011",
				StartTime:      start,
				EndTime:        start.Add(time.Hour),
				IsRecurring:    true,
				RecurrenceType: model.RecurrenceWeekly,
			},
			wantError: false,
		},
		{
			name: "recurring with end date",
			blocked: &model.BlockedTime{
				OwnerID:        "507f1f77bcf86cd799439011",
				StartTime:      start,
				EndTime:        start.Add(time.Hour),
				IsRecurring:    true,
				RecurrenceType: model.RecurrenceDaily,
				RecurrenceEnd:  &recurrenceEnd,
			},
			wantError: false,
		},
		{
			name: "recurring without type",
			blocked: &model.BlockedTime{
				OwnerID:     "507f1f77bcf86cd799439011",
				StartTime:   start,
				EndTime:     start.Add(time.Hour),
				IsRecurring: true,
			},
			wantError: true,
		},
		{
			name: "recurring crossing midnight",
			blocked: &model.BlockedTime{
				OwnerID:        "507f1f77bcf86cd799439011",
				StartTime:      time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
				EndTime:        time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC),
				IsRecurring:    true,
				RecurrenceType: model.RecurrenceDaily,
			},
			wantError: true,
		},
		{
			name: "recurrence end before start",
			blocked: &model.BlockedTime{
				OwnerID:        "507f1f77bcf86cd799439011",
				StartTime:      start,
				EndTime:        start.Add(time.Hour),
				IsRecurring:    true,
				RecurrenceType: model.RecurrenceMonthly,
				RecurrenceEnd:  &pastRecurrenceEnd,
			},
			wantError: true,
		},
		{
			name: "recurrence type without recurring flag",
			blocked: &model.BlockedTime{
				OwnerID:        "507f1f77bcf86cd799439011",
				StartTime:      start,
				EndTime:        start.Add(time.Hour),
				RecurrenceType: model.RecurrenceWeekly,
			},
			wantError: true,
		},
		{
			name: "recurrence end without recurring flag",
			blocked: &model.BlockedTime{
				OwnerID:       "507f1f77bcf86cd799439011",
				StartTime:     start,
				EndTime:       start.Add(time.Hour),
				RecurrenceEnd: &recurrenceEnd,
			},
			wantError: true,
		},
		{
			name: "unknown recurrence type",
			blocked: &model.BlockedTime{
				OwnerID:        "507f1f77bcf86cd799439011",
				StartTime:      start,
				EndTime:        start.Add(time.Hour),
				IsRecurring:    true,
				RecurrenceType: "yearly",
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.blocked)
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateBlockedTimeUpdate(t *testing.T) {
	v := NewBlockedTimeValidator(testLogger())

	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	badEnd := start.Add(-time.Minute)

	tests := []struct {
		name      string
		update    *model.BlockedTimeUpdate
		wantError bool
	}{
		{
			name:      "empty update",
			update:    &model.BlockedTimeUpdate{},
			wantError: false,
		},
		{
			name:      "reason only",
			update:    &model.BlockedTimeUpdate{Reason: "Vacation"},
			wantError: false,
		},
		{
			name:      "both times valid",
			update:    &model.BlockedTimeUpdate{StartTime: &start, EndTime: &end},
			wantError: false,
		},
		{
			name:      "end not after start",
			update:    &model.BlockedTimeUpdate{StartTime: &start, EndTime: &badEnd},
			wantError: true,
		},
		{
			name:      "unknown recurrence type",
			update:    &model.BlockedTimeUpdate{RecurrenceType: "biweekly"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(tt.update)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateUpdate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
