package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"slotify/internal/availability"
	blockedtimeserrors "slotify/internal/blockedtimes/errors"
	"slotify/internal/blockedtimes/repository"
	"slotify/internal/blockedtimes/validator"
	"slotify/pkg/config"
	apperrors "slotify/pkg/errors"
	"slotify/pkg/kafka"
	"slotify/pkg/model"
	"slotify/pkg/sanitizer"
)

type BlockedTimeService interface {
	Create(ctx context.Context, blockedTime *model.BlockedTime) error
	GetByID(ctx context.Context, id string) (*model.BlockedTime, error)
	GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.BlockedTime, int64, error)
	Update(ctx context.Context, id string, updates *model.BlockedTimeUpdate) error
	Delete(ctx context.Context, id string) error
	ActiveForOwner(ctx context.Context, ownerID string) ([]model.BlockedTime, error)
}

type blockedTimeService struct {
	repo      repository.BlockedTimeRepository
	validator *validator.BlockedTimeValidator
	events    *kafka.Producer
	cfg       *config.Config
}

func NewBlockedTimeService(
	repo repository.BlockedTimeRepository,
	validator *validator.BlockedTimeValidator,
	events *kafka.Producer,
	cfg *config.Config,
) BlockedTimeService {
	return &blockedTimeService{
		repo:      repo,
		validator: validator,
		events:    events,
		cfg:       cfg,
	}
}

func (s *blockedTimeService) Create(ctx context.Context, blockedTime *model.BlockedTime) error {
	s.sanitize(blockedTime)
	if err := s.validate(blockedTime); err != nil {
		return err
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, blockedTime, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, blockedTime); err != nil {
			return apperrors.Internal("Failed to create blocked time", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create blocked time", "error", err)
		return err
	}

	s.cfg.Log.Info("Blocked time created successfully",
		"id", blockedTime.ID,
		"owner_id", blockedTime.OwnerID,
		"is_recurring", blockedTime.IsRecurring,
	)
	s.publishEvent(kafka.EventBlockedTimeCreated, blockedTime)
	return nil
}

func (s *blockedTimeService) GetByID(ctx context.Context, id string) (*model.BlockedTime, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Blocked time ID cannot be empty")
	}

	blockedTime, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, blockedtimeserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Blocked time", id)
		}
		if errors.Is(err, blockedtimeserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid blocked time ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve blocked time", err)
	}

	return blockedTime, nil
}

func (s *blockedTimeService) GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.BlockedTime, int64, error) {
	if ownerID == "" {
		return nil, 0, apperrors.InvalidInput("OwnerID is required")
	}

	var count int64
	var blockedTimes []*model.BlockedTime
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByOwner(ctx, ownerID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count blocked times", "owner_id", ownerID, "error", errCount)
			errCount = apperrors.Internal("Failed to count blocked times", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		blockedTimes, errFind = s.repo.FindByOwner(ctx, ownerID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list blocked times", "owner_id", ownerID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve blocked times", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return blockedTimes, count, nil
}

func (s *blockedTimeService) Update(ctx context.Context, id string, updates *model.BlockedTimeUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Blocked time ID cannot be empty")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, blockedtimeserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Blocked time", id)
		}
		if errors.Is(err, blockedtimeserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid blocked time ID format")
		}
		return apperrors.Internal("Failed to check blocked time existence", err)
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Blocked time update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}
	merged := s.mergeBlockedTimeUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, merged, id); err != nil {
			return err
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return apperrors.Internal("Failed to update blocked time", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update blocked time", "id", id, "error", err)
		return err
	}
	s.cfg.Log.Info("Blocked time updated successfully", "id", id)
	return nil
}

func (s *blockedTimeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Blocked time ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, blockedtimeserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Blocked time", id)
			}
			return apperrors.Internal("Failed to delete blocked time", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Blocked time deleted successfully", "id", id)
	s.publishEvent(kafka.EventBlockedTimeDeleted, existing)
	return nil
}

// ActiveForOwner returns every blocked range for the owner in the value form
// the availability engine consumes.
func (s *blockedTimeService) ActiveForOwner(ctx context.Context, ownerID string) ([]model.BlockedTime, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("OwnerID is required")
	}

	blockedTimes, err := s.repo.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load blocked times", err)
	}

	result := make([]model.BlockedTime, 0, len(blockedTimes))
	for _, bt := range blockedTimes {
		result = append(result, *bt)
	}
	return result, nil
}

// --- Helpers ---

func (s *blockedTimeService) sanitize(bt *model.BlockedTime) {
	bt.Reason = sanitizer.NormalizeReason(bt.Reason)
}

func (s *blockedTimeService) validate(blockedTime *model.BlockedTime) error {
	if err := s.validator.Validate(blockedTime); err != nil {
		s.cfg.Log.Warn("Blocked time validation failed", "error", err)
		return apperrors.Validation("Blocked time validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *blockedTimeService) mergeBlockedTimeUpdates(existing *model.BlockedTime, updates *model.BlockedTimeUpdate) *model.BlockedTime {
	merged := *existing

	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Reason != "" {
		merged.Reason = updates.Reason
	}
	if updates.IsRecurring != nil {
		merged.IsRecurring = *updates.IsRecurring
		if !merged.IsRecurring {
			merged.RecurrenceType = ""
			merged.RecurrenceEnd = nil
		}
	}
	if updates.RecurrenceType != "" {
		merged.RecurrenceType = updates.RecurrenceType
	}
	if updates.RecurrenceEnd != nil {
		merged.RecurrenceEnd = updates.RecurrenceEnd
	}

	return &merged
}

// verifyNoOverlap rejects a range that collides with the owner's existing
// blocked ranges, concrete or recurring. A recurring template is checked
// through its first occurrence, which catches collisions with one-off ranges
// and with templates repeating on the same days.
func (s *blockedTimeService) verifyNoOverlap(ctx context.Context, blockedTime *model.BlockedTime, excludeID string) error {
	others, err := s.repo.FindAllByOwner(ctx, blockedTime.OwnerID)
	if err != nil {
		return apperrors.Internal("Failed to check existing blocked times", err)
	}

	remaining := make([]model.BlockedTime, 0, len(others))
	for _, other := range others {
		if other.ID == excludeID {
			continue
		}
		remaining = append(remaining, *other)
	}

	if availability.SpanBlocked(blockedTime.StartTime, blockedTime.EndTime, remaining) {
		return apperrors.Conflict(fmt.Sprintf(
			"Blocked time overlaps an existing blocked range (%s - %s)",
			blockedTime.StartTime.Format(time.RFC3339),
			blockedTime.EndTime.Format(time.RFC3339),
		))
	}
	return nil
}

func (s *blockedTimeService) publishEvent(eventType string, blockedTime *model.BlockedTime) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := kafka.NewMessage().
		WithKey(blockedTime.OwnerID).
		WithEventType(eventType).
		WithSource("appointments").
		WithSchemaVersion("1").
		WithValue(blockedTime).
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish blocked time event",
			"event_type", eventType,
			"blocked_time_id", blockedTime.ID,
			"error", err,
		)
	}
}
