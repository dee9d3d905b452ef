package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	validatorlib "github.com/go-playground/validator/v10"

	serviceserrors "slotify/internal/services/errors"
	"slotify/internal/services/repository"
	"slotify/pkg/config"
	apperrors "slotify/pkg/errors"
	"slotify/pkg/model"
	"slotify/pkg/sanitizer"
)

type CatalogServiceService interface {
	Create(ctx context.Context, svc *model.CatalogService) error
	GetByID(ctx context.Context, id string) (*model.CatalogService, error)
	GetByOwner(ctx context.Context, ownerID string, visibleOnly bool, limit int, offset int64) ([]*model.CatalogService, int64, error)
	Update(ctx context.Context, id string, updates *model.CatalogServiceUpdate) error
	Delete(ctx context.Context, id string) error
	DurationMin(ctx context.Context, serviceID string) (int, error)
}

type catalogServiceService struct {
	repo     repository.CatalogServiceRepository
	validate *validatorlib.Validate
	cfg      *config.Config
}

func NewCatalogServiceService(repo repository.CatalogServiceRepository, cfg *config.Config) CatalogServiceService {
	return &catalogServiceService{
		repo:     repo,
		validate: validatorlib.New(),
		cfg:      cfg,
	}
}

func (s *catalogServiceService) Create(ctx context.Context, svc *model.CatalogService) error {
	svc.Name = sanitizer.NormalizeName(svc.Name)
	svc.Description = sanitizer.TrimAndNormalize(svc.Description)

	if err := s.structValidate(svc); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create service", "error", err)
		return apperrors.Internal("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created successfully",
		"id", svc.ID,
		"owner_id", svc.OwnerID,
		"duration_min", svc.DurationMin,
	)
	return nil
}

func (s *catalogServiceService) GetByID(ctx context.Context, id string) (*model.CatalogService, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, serviceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, serviceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}

	return svc, nil
}

func (s *catalogServiceService) GetByOwner(ctx context.Context, ownerID string, visibleOnly bool, limit int, offset int64) ([]*model.CatalogService, int64, error) {
	if ownerID == "" {
		return nil, 0, apperrors.InvalidInput("OwnerID is required")
	}

	var count int64
	var services []*model.CatalogService
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByOwner(ctx, ownerID, visibleOnly)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count services", "owner_id", ownerID, "error", errCount)
			errCount = apperrors.Internal("Failed to count services", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		services, errFind = s.repo.FindByOwner(ctx, ownerID, visibleOnly, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list services", "owner_id", ownerID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve services", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return services, count, nil
}

func (s *catalogServiceService) Update(ctx context.Context, id string, updates *model.CatalogServiceUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Service ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validate.Struct(updates); err != nil {
		s.cfg.Log.Warn("Service update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": translate(err)})
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Description != "" {
		merged.Description = sanitizer.TrimAndNormalize(updates.Description)
	}
	if updates.DurationMin != nil {
		merged.DurationMin = *updates.DurationMin
	}
	if updates.PriceCents != nil {
		merged.PriceCents = *updates.PriceCents
	}
	if updates.IsVisible != nil {
		merged.IsVisible = *updates.IsVisible
	}

	if err := s.structValidate(&merged); err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, id, &merged); err != nil {
		if errors.Is(err, serviceserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service", id)
		}
		s.cfg.Log.Error("Failed to update service", "id", id, "error", err)
		return apperrors.Internal("Failed to update service", err)
	}

	s.cfg.Log.Info("Service updated successfully", "id", id)
	return nil
}

func (s *catalogServiceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Service ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, serviceserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, serviceserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid service ID format")
		}
		return apperrors.Internal("Failed to delete service", err)
	}

	s.cfg.Log.Info("Service deleted successfully", "id", id)
	return nil
}

// DurationMin resolves a service's duration for appointment end-time
// defaulting.
func (s *catalogServiceService) DurationMin(ctx context.Context, serviceID string) (int, error) {
	svc, err := s.GetByID(ctx, serviceID)
	if err != nil {
		return 0, err
	}
	return svc.DurationMin, nil
}

func (s *catalogServiceService) structValidate(svc *model.CatalogService) error {
	if err := s.validate.Struct(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed", "error", err)
		return apperrors.Validation("Service validation failed", map[string]any{"error": translate(err)})
	}
	return nil
}

func translate(err error) string {
	var validationErrs validatorlib.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	var messages []string
	for _, e := range validationErrs {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
		case "mongodb":
			messages = append(messages, fmt.Sprintf("%s must be a valid MongoDB ObjectID", e.Field()))
		default:
			messages = append(messages, e.Error())
		}
	}
	return strings.Join(messages, "; ")
}
