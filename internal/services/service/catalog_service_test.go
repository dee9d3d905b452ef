package service

import (
	"context"
	"testing"
	"time"

	validatorlib "github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	serviceserrors "slotify/internal/services/errors"
	"slotify/pkg/config"
	apperrors "slotify/pkg/errors"
	"slotify/pkg/logger"
	"slotify/pkg/model"
)

const testOwnerID = "507f1f77bcf86cd799439011"

// Mock repository for testing
type mockCatalogServiceRepository struct {
	createFunc       func(ctx context.Context, svc *model.CatalogService) error
	findByIDFunc     func(ctx context.Context, id string) (*model.CatalogService, error)
	findByOwnerFunc  func(ctx context.Context, ownerID string, visibleOnly bool, limit int, offset int64) ([]*model.CatalogService, error)
	countByOwnerFunc func(ctx context.Context, ownerID string, visibleOnly bool) (int64, error)
	updateFunc       func(ctx context.Context, id string, svc *model.CatalogService) (*mongo.UpdateResult, error)
	deleteFunc       func(ctx context.Context, id string) error
}

func (m *mockCatalogServiceRepository) Create(ctx context.Context, svc *model.CatalogService) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, svc)
	}
	return nil
}

func (m *mockCatalogServiceRepository) FindByID(ctx context.Context, id string) (*model.CatalogService, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCatalogServiceRepository) FindByOwner(ctx context.Context, ownerID string, visibleOnly bool, limit int, offset int64) ([]*model.CatalogService, error) {
	if m.findByOwnerFunc != nil {
		return m.findByOwnerFunc(ctx, ownerID, visibleOnly, limit, offset)
	}
	return []*model.CatalogService{}, nil
}

func (m *mockCatalogServiceRepository) CountByOwner(ctx context.Context, ownerID string, visibleOnly bool) (int64, error) {
	if m.countByOwnerFunc != nil {
		return m.countByOwnerFunc(ctx, ownerID, visibleOnly)
	}
	return 0, nil
}

func (m *mockCatalogServiceRepository) Update(ctx context.Context, id string, svc *model.CatalogService) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, svc)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockCatalogServiceRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	}
}

func newTestService(cfg *config.Config, repo *mockCatalogServiceRepository) *catalogServiceService {
	return &catalogServiceService{
		repo:     repo,
		validate: validatorlib.New(),
		cfg:      cfg,
	}
}

func TestCreate_ValidatesDurationBounds(t *testing.T) {
	cfg := testConfig()
	service := newTestService(cfg, &mockCatalogServiceRepository{})

	tests := []struct {
		name        string
		durationMin int
		wantError   bool
	}{
		{name: "minimum duration", durationMin: 5, wantError: false},
		{name: "typical duration", durationMin: 60, wantError: false},
		{name: "maximum duration", durationMin: 480, wantError: false},
		{name: "too short", durationMin: 3, wantError: true},
		{name: "too long", durationMin: 600, wantError: true},
		{name: "missing", durationMin: 0, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &model.CatalogService{
				OwnerID:     testOwnerID,
				Name:        "Haircut",
				DurationMin: tt.durationMin,
			}
			err := service.Create(context.Background(), svc)
			if (err != nil) != tt.wantError {
				t.Errorf("Create() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestCreate_NormalizesText(t *testing.T) {
	cfg := testConfig()

	var created *model.CatalogService
	repo := &mockCatalogServiceRepository{
		createFunc: func(ctx context.Context, svc *model.CatalogService) error {
			created = svc
			return nil
		},
	}
	service := newTestService(cfg, repo)

	svc := &model.CatalogService{
		OwnerID:     testOwnerID,
		Name:        "  Hot   Towel   Shave  ",
		Description: " The  classic. ",
		DurationMin: 30,
	}
	if err := service.Create(context.Background(), svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Name != "Hot Towel Shave" {
		t.Errorf("expected normalized name, got %q", created.Name)
	}
	if created.Description != "The classic." {
		t.Errorf("expected normalized description, got %q", created.Description)
	}
}

func TestDurationMin_ResolvesFromCatalog(t *testing.T) {
	cfg := testConfig()

	repo := &mockCatalogServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.CatalogService, error) {
			return &model.CatalogService{
				ID:          id,
				OwnerID:     testOwnerID,
				Name:        "Haircut",
				DurationMin: 45,
			}, nil
		},
	}
	service := newTestService(cfg, repo)

	durationMin, err := service.DurationMin(context.Background(), "507f1f77bcf86cd799439050")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if durationMin != 45 {
		t.Errorf("expected duration 45, got %d", durationMin)
	}
}

func TestDurationMin_UnknownService(t *testing.T) {
	cfg := testConfig()

	repo := &mockCatalogServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.CatalogService, error) {
			return nil, serviceserrors.ErrNotFound
		},
	}
	service := newTestService(cfg, repo)

	_, err := service.DurationMin(context.Background(), "507f1f77bcf86cd799439050")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUpdate_MergePreservesUnsetFields(t *testing.T) {
	cfg := testConfig()

	const serviceID = "507f1f77bcf86cd799439050"
	existing := &model.CatalogService{
		ID:          serviceID,
		OwnerID:     testOwnerID,
		Name:        "Haircut",
		DurationMin: 45,
		PriceCents:  3500,
		IsVisible:   true,
	}

	var updated *model.CatalogService
	repo := &mockCatalogServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.CatalogService, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, svc *model.CatalogService) (*mongo.UpdateResult, error) {
			updated = svc
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	service := newTestService(cfg, repo)

	hidden := false
	err := service.Update(context.Background(), serviceID, &model.CatalogServiceUpdate{
		IsVisible: &hidden,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IsVisible {
		t.Error("expected service to be hidden after update")
	}
	if updated.DurationMin != 45 || updated.PriceCents != 3500 || updated.Name != "Haircut" {
		t.Errorf("untouched fields must survive the merge, got %+v", updated)
	}
}
