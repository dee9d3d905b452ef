package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"slotify/internal/businesses/validator"
	"slotify/pkg/clock"
	"slotify/pkg/config"
	mongotx "slotify/pkg/db/mongo"
	apperrors "slotify/pkg/errors"
	"slotify/pkg/logger"
	"slotify/pkg/model"
)

const testBusinessID = "507f1f77bcf86cd799439011"

// Mock repository for testing
type mockBusinessRepository struct {
	createFunc             func(ctx context.Context, business *model.Business) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Business, error)
	findAllFunc            func(ctx context.Context, limit int, offset int64) ([]*model.Business, error)
	updateProfileFunc      func(ctx context.Context, id string, business *model.Business) (*mongo.UpdateResult, error)
	updateWeeklyHoursFunc  func(ctx context.Context, id string, hours model.WeeklyHours) (*mongo.UpdateResult, error)
	deleteFunc             func(ctx context.Context, id string) error
	countFunc              func(ctx context.Context) (int64, error)
	executeTransactionFunc func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBusinessRepository) Create(ctx context.Context, business *model.Business) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, business)
	}
	return nil
}

func (m *mockBusinessRepository) FindByID(ctx context.Context, id string) (*model.Business, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBusinessRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Business, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Business{}, nil
}

func (m *mockBusinessRepository) UpdateProfile(ctx context.Context, id string, business *model.Business) (*mongo.UpdateResult, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, id, business)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockBusinessRepository) UpdateWeeklyHours(ctx context.Context, id string, hours model.WeeklyHours) (*mongo.UpdateResult, error) {
	if m.updateWeeklyHoursFunc != nil {
		return m.updateWeeklyHoursFunc(ctx, id, hours)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockBusinessRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBusinessRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockBusinessRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	return fn(nil)
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:              log,
		ReadTimeout:      5 * time.Second,
		DefaultOpenTime:  "09:00",
		DefaultCloseTime: "17:00",
	}
}

func newTestService(cfg *config.Config, repo *mockBusinessRepository) *businessService {
	return &businessService{
		repo:      repo,
		validator: validator.NewBusinessValidator(cfg.Log),
		cfg:       cfg,
	}
}

func TestCreate_AppliesDefaultHours(t *testing.T) {
	cfg := testConfig()

	var created *model.Business
	repo := &mockBusinessRepository{
		createFunc: func(ctx context.Context, business *model.Business) error {
			created = business
			return nil
		},
	}
	service := newTestService(cfg, repo)

	business := &model.Business{Name: "  Corner   Barbershop  "}
	if err := service.Create(context.Background(), business); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
	if created.Name != "Corner Barbershop" {
		t.Errorf("expected normalized name, got %q", created.Name)
	}
	if len(created.WeeklyHours) != 7 {
		t.Errorf("expected default schedule with 7 days, got %d entries", len(created.WeeklyHours))
	}
	monday := created.WeeklyHours[clock.Monday]
	if !monday.Open || monday.Start != "09:00" || monday.End != "17:00" {
		t.Errorf("unexpected default Monday hours: %+v", monday)
	}
	if created.WeeklyHours[clock.Sunday].Open {
		t.Error("default schedule should be closed on Sunday")
	}
}

func TestCreate_DefaultHoursFollowConfiguredTimes(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultOpenTime = "08:00"
	cfg.DefaultCloseTime = "20:00"

	var created *model.Business
	repo := &mockBusinessRepository{
		createFunc: func(ctx context.Context, business *model.Business) error {
			created = business
			return nil
		},
	}
	service := newTestService(cfg, repo)

	if err := service.Create(context.Background(), &model.Business{Name: "Late Shift"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	monday := created.WeeklyHours[clock.Monday]
	if monday.Start != "08:00" || monday.End != "20:00" {
		t.Errorf("default schedule must follow the configured times, got %+v", monday)
	}
}

func TestCreate_KeepsSubmittedHours(t *testing.T) {
	cfg := testConfig()

	var created *model.Business
	repo := &mockBusinessRepository{
		createFunc: func(ctx context.Context, business *model.Business) error {
			created = business
			return nil
		},
	}
	service := newTestService(cfg, repo)

	business := &model.Business{
		Name: "Night Salon",
		WeeklyHours: model.WeeklyHours{
			clock.Saturday: {Open: true, Start: "12:00", End: "22:00"},
		},
	}
	if err := service.Create(context.Background(), business); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created.WeeklyHours) != 1 {
		t.Errorf("submitted hours should not be replaced, got %d entries", len(created.WeeklyHours))
	}
}

func TestUpdateWeeklyHours_ReplacesWholeWeek(t *testing.T) {
	cfg := testConfig()

	existing := &model.Business{
		ID:          testBusinessID,
		Name:        "Corner Barbershop",
		WeeklyHours: model.DefaultWeeklyHours(),
	}

	var storedHours model.WeeklyHours
	repo := &mockBusinessRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Business, error) {
			return existing, nil
		},
		updateWeeklyHoursFunc: func(ctx context.Context, id string, hours model.WeeklyHours) (*mongo.UpdateResult, error) {
			storedHours = hours
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	service := newTestService(cfg, repo)

	newHours := model.WeeklyHours{
		clock.Monday:  {Open: true, Start: "10:00", End: "14:00"},
		clock.Tuesday: {Open: false},
	}
	if err := service.UpdateWeeklyHours(context.Background(), testBusinessID, newHours); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(storedHours) != 2 {
		t.Fatalf("hours should be replaced wholesale, got %d entries", len(storedHours))
	}
	if storedHours[clock.Monday].End != "14:00" {
		t.Errorf("unexpected stored Monday hours: %+v", storedHours[clock.Monday])
	}
}

func TestUpdateWeeklyHours_RejectsInvalidDay(t *testing.T) {
	cfg := testConfig()
	service := newTestService(cfg, &mockBusinessRepository{})

	err := service.UpdateWeeklyHours(context.Background(), testBusinessID, model.WeeklyHours{
		clock.Monday: {Open: true, Start: "17:00", End: "09:00"},
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateWeeklyHours_RejectsEmptyMap(t *testing.T) {
	cfg := testConfig()
	service := newTestService(cfg, &mockBusinessRepository{})

	err := service.UpdateWeeklyHours(context.Background(), testBusinessID, model.WeeklyHours{})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestWeeklyHoursForOwner_FallsBackToDefault(t *testing.T) {
	cfg := testConfig()

	repo := &mockBusinessRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Business, error) {
			return &model.Business{ID: id, Name: "Corner Barbershop"}, nil
		},
	}
	service := newTestService(cfg, repo)

	hours, err := service.WeeklyHoursForOwner(context.Background(), testBusinessID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hours[clock.Monday].Open || hours[clock.Monday].Start != "09:00" {
		t.Errorf("expected default schedule for business without stored hours, got %+v", hours)
	}
}

func TestWeeklyHoursForOwner_UsesStoredHours(t *testing.T) {
	cfg := testConfig()

	stored := model.WeeklyHours{
		clock.Wednesday: {Open: true, Start: "07:00", End: "12:00"},
	}
	repo := &mockBusinessRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Business, error) {
			return &model.Business{ID: id, Name: "Early Birds", WeeklyHours: stored}, nil
		},
	}
	service := newTestService(cfg, repo)

	hours, err := service.WeeklyHoursForOwner(context.Background(), testBusinessID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hours[clock.Wednesday].Start != "07:00" {
		t.Errorf("expected stored hours, got %+v", hours)
	}
}

func TestUpdateProfile_MergesFields(t *testing.T) {
	cfg := testConfig()

	existing := &model.Business{
		ID:       testBusinessID,
		Name:     "Corner Barbershop",
		TimeZone: "America/New_York",
	}

	var updated *model.Business
	repo := &mockBusinessRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Business, error) {
			return existing, nil
		},
		updateProfileFunc: func(ctx context.Context, id string, business *model.Business) (*mongo.UpdateResult, error) {
			updated = business
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	service := newTestService(cfg, repo)

	err := service.UpdateProfile(context.Background(), testBusinessID, &model.BusinessUpdate{
		Name: "Corner Barbers",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Corner Barbers" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	if updated.TimeZone != "America/New_York" {
		t.Errorf("untouched fields must survive the merge, got %q", updated.TimeZone)
	}
}
