package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appointmentserrors "slotify/internal/appointments/errors"
	"slotify/internal/appointments/repository"
	"slotify/internal/appointments/validator"
	"slotify/internal/availability"
	"slotify/pkg/config"
	apperrors "slotify/pkg/errors"
	"slotify/pkg/kafka"
	"slotify/pkg/model"
	"slotify/pkg/sanitizer"
)

// HoursSource resolves an owner's weekly business hours. The appointments
// service treats a resolution failure as "use the default schedule" and logs
// it, so scheduling keeps working while the business record is missing or
// malformed.
type HoursSource interface {
	WeeklyHoursForOwner(ctx context.Context, ownerID string) (model.WeeklyHours, error)
}

// BlockedTimeSource lists an owner's blocked-time ranges for conflict checks
// and slot generation.
type BlockedTimeSource interface {
	ActiveForOwner(ctx context.Context, ownerID string) ([]model.BlockedTime, error)
}

// DurationSource resolves a catalog service's duration, used to default an
// appointment's end time when the request omits it.
type DurationSource interface {
	DurationMin(ctx context.Context, serviceID string) (int, error)
}

type AppointmentService interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error)
	Update(ctx context.Context, id string, updates *model.AppointmentUpdate) error
	Delete(ctx context.Context, id string) error
	SearchByOwner(ctx context.Context, ownerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Appointment, int64, error)
	DailySlots(ctx context.Context, ownerID string, date time.Time, durationMin, incrementMin int) ([]model.TimeSlot, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.AppointmentLockRepository
	validator *validator.AppointmentValidator
	hours     HoursSource
	blocked   BlockedTimeSource
	durations DurationSource
	events    *kafka.Producer
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.AppointmentLockRepository,
	validator *validator.AppointmentValidator,
	hours HoursSource,
	blocked BlockedTimeSource,
	durations DurationSource,
	events *kafka.Producer,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		hours:     hours,
		blocked:   blocked,
		durations: durations,
		events:    events,
		cfg:       cfg,
	}
}

func (s *appointmentService) Create(ctx context.Context, appointment *model.Appointment) error {
	s.applyDefaults(ctx, appointment)
	s.sanitize(appointment)
	if err := s.validate(appointment); err != nil {
		return err
	}

	// Advisory lock serializes concurrent bookings for the same owner+start
	lockID, err := s.acquireSlotLock(ctx, appointment.OwnerID, appointment.StartTime)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release appointment lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkAvailability(sessCtx, appointment, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, appointment); err != nil {
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create appointment", "error", err)
		return err
	}

	s.cfg.Log.Info("Appointment created successfully",
		"id", appointment.ID,
		"owner_id", appointment.OwnerID,
		"start_time", appointment.StartTime,
	)
	s.publishEvent(kafka.EventAppointmentCreated, appointment)
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appointmentserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}

	return appointment, nil
}

func (s *appointmentService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error) {
	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appointments, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list appointments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve appointments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return appointments, count, nil
}

func (s *appointmentService) Update(ctx context.Context, id string, updates *model.AppointmentUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Appointment ID cannot be empty")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appointmentserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid appointment ID format")
		}
		return apperrors.Internal("Failed to check appointment existence", err)
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Appointment update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}
	merged := s.mergeAppointmentUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// A cancelled appointment frees its slot, so skip the availability
		// checks when the update is a cancellation.
		if merged.Blocks() {
			if err := s.checkAvailability(sessCtx, merged, id); err != nil {
				return err
			}
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return apperrors.Internal("Failed to update appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update appointment", "id", id, "error", err)
		return err
	}
	s.cfg.Log.Info("Appointment updated successfully", "id", id)
	if merged.Status == model.StatusCancelled && existing.Status != model.StatusCancelled {
		s.publishEvent(kafka.EventAppointmentCancelled, merged)
	} else {
		s.publishEvent(kafka.EventAppointmentUpdated, merged)
	}
	return nil
}

func (s *appointmentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, appointmentserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Appointment", id)
			}
			if errors.Is(err, appointmentserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid appointment ID format")
			}
			return apperrors.Internal("Failed to delete appointment", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Appointment deleted successfully", "id", id)
	return nil
}

func (s *appointmentService) SearchByOwner(ctx context.Context, ownerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if ownerID == "" {
		return nil, 0, apperrors.InvalidInput("OwnerID is required")
	}

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByOwner(ctx, ownerID, startTime, endTime)
		if err != nil {
			s.cfg.Log.Error("Failed to count appointments by search",
				"owner_id", ownerID,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count appointments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		appointments, err = s.repo.FindByOwner(ctx, ownerID, startTime, endTime, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search appointments",
				"owner_id", ownerID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search appointments", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Appointment search completed",
		"owner_id", ownerID,
		"count", len(appointments),
		"total_count", count,
	)
	return appointments, count, nil
}

// --- Helpers ---

func (s *appointmentService) sanitize(a *model.Appointment) {
	a.Title = sanitizer.NormalizeTitle(a.Title)
}

func (s *appointmentService) applyDefaults(ctx context.Context, a *model.Appointment) {
	if a.Status == "" {
		a.Status = model.StatusScheduled
	}
	if a.EndTime.IsZero() && !a.StartTime.IsZero() {
		a.EndTime = a.StartTime.Add(time.Duration(s.defaultDuration(ctx, a.ServiceID)) * time.Minute)
	}
}

// defaultDuration prefers the catalog service's duration, falling back to the
// configured default when no service is referenced or the lookup fails.
func (s *appointmentService) defaultDuration(ctx context.Context, serviceID string) int {
	if serviceID != "" && s.durations != nil {
		durationMin, err := s.durations.DurationMin(ctx, serviceID)
		if err == nil && durationMin > 0 {
			return durationMin
		}
		if err != nil {
			s.cfg.Log.Warn("Failed to resolve service duration, using default",
				"service_id", serviceID,
				"error", err,
			)
		}
	}
	return s.cfg.DefaultDurationMin
}

func (s *appointmentService) mergeAppointmentUpdates(existing *model.Appointment, updates *model.AppointmentUpdate) *model.Appointment {
	merged := *existing

	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.ServiceID != "" {
		merged.ServiceID = updates.ServiceID
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func (s *appointmentService) validate(appointment *model.Appointment) error {
	if err := s.validator.Validate(appointment); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// checkAvailability runs the full conflict pipeline against the owner's
// hours, blocked ranges and existing appointments. excludeID is the
// appointment being rescheduled, or "" on create.
func (s *appointmentService) checkAvailability(ctx context.Context, appointment *model.Appointment, excludeID string) error {
	hours := s.ownerHours(ctx, appointment.OwnerID)
	blocked := s.ownerBlocked(ctx, appointment.OwnerID)

	// Only appointments overlapping the proposed window can conflict
	const maxOverlapCheck = 30
	overlapping, err := s.repo.FindByOwner(ctx, appointment.OwnerID, &appointment.StartTime, &appointment.EndTime, maxOverlapCheck, 0)
	if err != nil {
		return apperrors.Internal("Failed to check existing appointments", err)
	}

	existing := make([]model.Appointment, 0, len(overlapping))
	for _, a := range overlapping {
		existing = append(existing, *a)
	}

	result := availability.ValidateAppointment(availability.ValidationInput{
		Start:     appointment.StartTime,
		End:       appointment.EndTime,
		Hours:     hours,
		Blocked:   blocked,
		Existing:  existing,
		ExcludeID: excludeID,
	})
	if result.OK {
		return nil
	}

	if result.HoursViolation() && s.cfg.HoursEnforcement == config.HoursEnforcementWarn {
		s.cfg.Log.Warn("Appointment outside business hours accepted (enforcement=warn)",
			"owner_id", appointment.OwnerID,
			"start_time", appointment.StartTime,
			"reason", result.Reason,
		)
		return nil
	}

	return s.rejectError(result)
}

// rejectError maps a validation reject onto the HTTP error taxonomy: bad
// requests for malformed or out-of-hours ranges, conflicts for everything the
// client could resolve by picking another time.
func (s *appointmentService) rejectError(result availability.Result) error {
	switch result.Reason {
	case availability.ReasonInvalidRange, availability.ReasonOutsideHours:
		return apperrors.InvalidInput(result.Message)
	case availability.ReasonConflict:
		return apperrors.Conflict(result.Message).WithDetails(map[string]any{
			"reason":    result.Reason,
			"conflicts": result.Conflicts,
		})
	default:
		return apperrors.Conflict(result.Message).WithDetails(map[string]any{
			"reason": result.Reason,
		})
	}
}

func (s *appointmentService) ownerHours(ctx context.Context, ownerID string) model.WeeklyHours {
	if s.hours == nil {
		return s.cfg.DefaultSchedule()
	}
	hours, err := s.hours.WeeklyHoursForOwner(ctx, ownerID)
	if err != nil {
		s.cfg.Log.Warn("Failed to resolve business hours, using default schedule",
			"owner_id", ownerID,
			"error", err,
		)
		return s.cfg.DefaultSchedule()
	}
	if len(hours) == 0 {
		return s.cfg.DefaultSchedule()
	}
	return hours
}

func (s *appointmentService) ownerBlocked(ctx context.Context, ownerID string) []model.BlockedTime {
	if s.blocked == nil {
		return nil
	}
	blocked, err := s.blocked.ActiveForOwner(ctx, ownerID)
	if err != nil {
		s.cfg.Log.Warn("Failed to load blocked times",
			"owner_id", ownerID,
			"error", err,
		)
		return nil
	}
	return blocked
}

func (s *appointmentService) publishEvent(eventType string, appointment *model.Appointment) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := kafka.NewMessage().
		WithKey(appointment.OwnerID).
		WithEventType(eventType).
		WithSource("appointments").
		WithSchemaVersion("1").
		WithValue(appointment).
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"event_type", eventType,
			"appointment_id", appointment.ID,
			"error", err,
		)
	}
}

// acquireSlotLock creates an advisory lock to prevent concurrent booking creation
// Returns the lock ID if successful, or conflict error if lock already exists
func (s *appointmentService) acquireSlotLock(ctx context.Context, ownerID string, startTime time.Time) (string, error) {
	lockID := fmt.Sprintf("appointment_lock_%s_%d", ownerID, startTime.Unix())

	lock := &model.AppointmentLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.BookingLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire appointment lock", err)
	}

	return lockID, nil
}

// releaseSlotLock removes the advisory lock
func (s *appointmentService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
