package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	businesseserrors "slotify/internal/businesses/errors"
	"slotify/internal/businesses/repository"
	"slotify/internal/businesses/validator"
	"slotify/pkg/config"
	apperrors "slotify/pkg/errors"
	"slotify/pkg/kafka"
	"slotify/pkg/model"
	"slotify/pkg/sanitizer"
)

type BusinessService interface {
	Create(ctx context.Context, business *model.Business) error
	GetByID(ctx context.Context, id string) (*model.Business, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Business, int64, error)
	UpdateProfile(ctx context.Context, id string, updates *model.BusinessUpdate) error
	UpdateWeeklyHours(ctx context.Context, id string, hours model.WeeklyHours) error
	Delete(ctx context.Context, id string) error
	WeeklyHoursForOwner(ctx context.Context, ownerID string) (model.WeeklyHours, error)
}

type businessService struct {
	repo      repository.BusinessRepository
	validator *validator.BusinessValidator
	events    *kafka.Producer
	cfg       *config.Config
}

func NewBusinessService(
	repo repository.BusinessRepository,
	validator *validator.BusinessValidator,
	events *kafka.Producer,
	cfg *config.Config,
) BusinessService {
	return &businessService{
		repo:      repo,
		validator: validator,
		events:    events,
		cfg:       cfg,
	}
}

func (s *businessService) Create(ctx context.Context, business *model.Business) error {
	business.Name = sanitizer.NormalizeName(business.Name)
	if len(business.WeeklyHours) == 0 {
		business.WeeklyHours = s.cfg.DefaultSchedule()
	}

	if err := s.validator.Validate(business); err != nil {
		s.cfg.Log.Warn("Business validation failed", "error", err)
		return apperrors.Validation("Business validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, business); err != nil {
		s.cfg.Log.Error("Failed to create business", "error", err)
		return apperrors.Internal("Failed to create business", err)
	}

	s.cfg.Log.Info("Business created successfully", "id", business.ID, "name", business.Name)
	return nil
}

func (s *businessService) GetByID(ctx context.Context, id string) (*model.Business, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Business ID cannot be empty")
	}

	business, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, businesseserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Business", id)
		}
		if errors.Is(err, businesseserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid business ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve business", err)
	}

	return business, nil
}

func (s *businessService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Business, int64, error) {
	var count int64
	var businesses []*model.Business
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count businesses", "error", errCount)
			errCount = apperrors.Internal("Failed to count businesses", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		businesses, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list businesses", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve businesses", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return businesses, count, nil
}

func (s *businessService) UpdateProfile(ctx context.Context, id string, updates *model.BusinessUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Business ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Business update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}

	if _, err := s.repo.UpdateProfile(ctx, id, &merged); err != nil {
		if errors.Is(err, businesseserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Business", id)
		}
		s.cfg.Log.Error("Failed to update business", "id", id, "error", err)
		return apperrors.Internal("Failed to update business", err)
	}

	s.cfg.Log.Info("Business profile updated successfully", "id", id)
	return nil
}

// UpdateWeeklyHours replaces the whole weekly schedule after per-day
// validation. Existing appointments outside the new hours are left alone;
// the new schedule only constrains future bookings.
func (s *businessService) UpdateWeeklyHours(ctx context.Context, id string, hours model.WeeklyHours) error {
	if id == "" {
		return apperrors.InvalidInput("Business ID cannot be empty")
	}
	if len(hours) == 0 {
		return apperrors.InvalidInput("Weekly hours cannot be empty")
	}

	if err := s.validator.ValidateWeeklyHours(hours); err != nil {
		s.cfg.Log.Warn("Weekly hours validation failed", "id", id, "error", err)
		return apperrors.Validation("Weekly hours validation failed", map[string]any{"error": err.Error()})
	}

	business, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.repo.UpdateWeeklyHours(ctx, id, hours); err != nil {
		if errors.Is(err, businesseserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Business", id)
		}
		s.cfg.Log.Error("Failed to update weekly hours", "id", id, "error", err)
		return apperrors.Internal("Failed to update weekly hours", err)
	}

	s.cfg.Log.Info("Weekly hours updated successfully", "id", id)
	s.publishHoursUpdated(business, hours)
	return nil
}

func (s *businessService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Business ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, businesseserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Business", id)
			}
			if errors.Is(err, businesseserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid business ID format")
			}
			return apperrors.Internal("Failed to delete business", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Business deleted successfully", "id", id)
	return nil
}

// WeeklyHoursForOwner resolves the hours map the availability engine should
// use for an owner. A business without stored hours gets the default
// schedule.
func (s *businessService) WeeklyHoursForOwner(ctx context.Context, ownerID string) (model.WeeklyHours, error) {
	business, err := s.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(business.WeeklyHours) == 0 {
		return s.cfg.DefaultSchedule(), nil
	}
	return business.WeeklyHours, nil
}

func (s *businessService) publishHoursUpdated(business *model.Business, hours model.WeeklyHours) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := kafka.NewMessage().
		WithKey(business.ID).
		WithEventType(kafka.EventBusinessHoursUpdated).
		WithSource("businesses").
		WithSchemaVersion("1").
		WithValue(map[string]any{
			"business_id":  business.ID,
			"weekly_hours": hours,
		}).
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish hours updated event",
			"business_id", business.ID,
			"error", err,
		)
	}
}
