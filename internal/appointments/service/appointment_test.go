package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"slotify/internal/appointments/validator"
	"slotify/internal/availability"
	"slotify/pkg/config"
	mongotx "slotify/pkg/db/mongo"
	apperrors "slotify/pkg/errors"
	"slotify/pkg/logger"
	"slotify/pkg/model"
)

const (
	testOwnerID  = "507f1f77bcf86cd799439011"
	testClientID = "507f1f77bcf86cd799439012"
)

// Mock repository for testing
type mockAppointmentRepository struct {
	createFunc             func(ctx context.Context, appointment *model.Appointment) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Appointment, error)
	findAllFunc            func(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error)
	updateFunc             func(ctx context.Context, id string, appointment *model.Appointment) (*mongo.UpdateResult, error)
	deleteFunc             func(ctx context.Context, id string) error
	findByOwnerFunc        func(ctx context.Context, ownerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Appointment, error)
	countByOwnerFunc       func(ctx context.Context, ownerID string, startTime, endTime *time.Time) (int64, error)
	countFunc              func(ctx context.Context) (int64, error)
	executeTransactionFunc func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, appointment)
	}
	return nil
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAppointmentRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) Update(ctx context.Context, id string, appointment *model.Appointment) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, appointment)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockAppointmentRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockAppointmentRepository) FindByOwner(ctx context.Context, ownerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Appointment, error) {
	if m.findByOwnerFunc != nil {
		return m.findByOwnerFunc(ctx, ownerID, startTime, endTime, limit, offset)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) CountByOwner(ctx context.Context, ownerID string, startTime, endTime *time.Time) (int64, error) {
	if m.countByOwnerFunc != nil {
		return m.countByOwnerFunc(ctx, ownerID, startTime, endTime)
	}
	return 0, nil
}

func (m *mockAppointmentRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	return fn(nil)
}

type mockLockRepository struct {
	createFunc func(ctx context.Context, lock *model.AppointmentLock) (*model.AppointmentLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.AppointmentLock) (*model.AppointmentLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

type mockHoursSource struct {
	hoursFunc func(ctx context.Context, ownerID string) (model.WeeklyHours, error)
}

func (m *mockHoursSource) WeeklyHoursForOwner(ctx context.Context, ownerID string) (model.WeeklyHours, error) {
	if m.hoursFunc != nil {
		return m.hoursFunc(ctx, ownerID)
	}
	return model.DefaultWeeklyHours(), nil
}

type mockBlockedSource struct {
	activeFunc func(ctx context.Context, ownerID string) ([]model.BlockedTime, error)
}

func (m *mockBlockedSource) ActiveForOwner(ctx context.Context, ownerID string) ([]model.BlockedTime, error) {
	if m.activeFunc != nil {
		return m.activeFunc(ctx, ownerID)
	}
	return nil, nil
}

type mockDurationSource struct {
	durationFunc func(ctx context.Context, serviceID string) (int, error)
}

func (m *mockDurationSource) DurationMin(ctx context.Context, serviceID string) (int, error) {
	if m.durationFunc != nil {
		return m.durationFunc(ctx, serviceID)
	}
	return 0, nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:                     log,
		ReadTimeout:             5 * time.Second,
		DefaultOpenTime:         "09:00",
		DefaultCloseTime:        "17:00",
		DefaultDurationMin:      60,
		DefaultSlotIncrementMin: 15,
		BookingLockTTL:          10 * time.Second,
		HoursEnforcement:        config.HoursEnforcementReject,
	}
}

func newTestService(cfg *config.Config, repo *mockAppointmentRepository, locks *mockLockRepository) *appointmentService {
	return &appointmentService{
		repo:      repo,
		lockRepo:  locks,
		validator: validator.NewAppointmentValidator(cfg.Log),
		hours:     &mockHoursSource{},
		blocked:   &mockBlockedSource{},
		durations: &mockDurationSource{},
		cfg:       cfg,
	}
}

// Monday inside the default 09:00-17:00 schedule.
func mondayAt(hour int) time.Time {
	return time.Date(2026, 3, 9, hour, 0, 0, 0, time.UTC)
}

func TestCreate_Success(t *testing.T) {
	cfg := testConfig()

	var created *model.Appointment
	var lockAcquired, lockReleased bool

	repo := &mockAppointmentRepository{
		createFunc: func(ctx context.Context, appointment *model.Appointment) error {
			created = appointment
			return nil
		},
	}
	locks := &mockLockRepository{
		createFunc: func(ctx context.Context, lock *model.AppointmentLock) (*model.AppointmentLock, error) {
			lockAcquired = true
			return lock, nil
		},
		deleteFunc: func(ctx context.Context, lockID string) error {
			lockReleased = true
			return nil
		},
	}

	service := newTestService(cfg, repo, locks)

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Haircut",
		StartTime: mondayAt(10),
		EndTime:   mondayAt(11),
	}

	if err := service.Create(context.Background(), appointment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
	if created.Status != model.StatusScheduled {
		t.Errorf("expected default status %q, got %q", model.StatusScheduled, created.Status)
	}
	if !lockAcquired {
		t.Error("expected advisory lock to be acquired")
	}
	if !lockReleased {
		t.Error("expected advisory lock to be released")
	}
}

func TestCreate_DefaultsEndTimeFromService(t *testing.T) {
	cfg := testConfig()
	repo := &mockAppointmentRepository{}
	service := newTestService(cfg, repo, &mockLockRepository{})
	service.durations = &mockDurationSource{
		durationFunc: func(ctx context.Context, serviceID string) (int, error) {
			return 45, nil
		},
	}

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		ServiceID: "507f1f77bcf86cd799439013",
		Title:     "Beard trim",
		StartTime: mondayAt(10),
	}

	if err := service.Create(context.Background(), appointment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantEnd := mondayAt(10).Add(45 * time.Minute)
	if !appointment.EndTime.Equal(wantEnd) {
		t.Errorf("expected end time %v from service duration, got %v", wantEnd, appointment.EndTime)
	}
}

func TestCreate_DefaultsEndTimeFromConfig(t *testing.T) {
	cfg := testConfig()
	service := newTestService(cfg, &mockAppointmentRepository{}, &mockLockRepository{})

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Consultation",
		StartTime: mondayAt(10),
	}

	if err := service.Create(context.Background(), appointment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantEnd := mondayAt(10).Add(60 * time.Minute)
	if !appointment.EndTime.Equal(wantEnd) {
		t.Errorf("expected end time %v from configured default, got %v", wantEnd, appointment.EndTime)
	}
}

func TestCreate_ConflictWithExistingAppointment(t *testing.T) {
	cfg := testConfig()

	repo := &mockAppointmentRepository{
		findByOwnerFunc: func(ctx context.Context, ownerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Appointment, error) {
			return []*model.Appointment{
				{
					ID:        "507f1f77bcf86cd799439099",
					OwnerID:   ownerID,
					Title:     "Existing booking",
					StartTime: mondayAt(10).Add(30 * time.Minute),
					EndTime:   mondayAt(11).Add(30 * time.Minute),
					Status:    model.StatusScheduled,
				},
			}, nil
		},
	}
	service := newTestService(cfg, repo, &mockLockRepository{})

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Haircut",
		StartTime: mondayAt(10),
		EndTime:   mondayAt(11),
	}

	err := service.Create(context.Background(), appointment)
	if err == nil {
		t.Fatal("expected conflict error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
	if appErr.Details["reason"] != availability.ReasonConflict {
		t.Errorf("expected reason %s in details, got %v", availability.ReasonConflict, appErr.Details["reason"])
	}
	conflicts, ok := appErr.Details["conflicts"].([]availability.ConflictSummary)
	if !ok || len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict summary in details, got %v", appErr.Details["conflicts"])
	}
	if conflicts[0].ID != "507f1f77bcf86cd799439099" {
		t.Errorf("unexpected conflicting appointment: %+v", conflicts[0])
	}
}

func TestCreate_TouchingAppointmentsDoNotConflict(t *testing.T) {
	cfg := testConfig()

	repo := &mockAppointmentRepository{
		findByOwnerFunc: func(ctx context.Context, ownerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Appointment, error) {
			// Ends exactly when the proposal starts
			return []*model.Appointment{
				{
					ID:        "507f1f77bcf86cd799439099",
					OwnerID:   ownerID,
					Title:     "Earlier booking",
					StartTime: mondayAt(9),
					EndTime:   mondayAt(10),
					Status:    model.StatusScheduled,
				},
			}, nil
		},
	}
	service := newTestService(cfg, repo, &mockLockRepository{})

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Haircut",
		StartTime: mondayAt(10),
		EndTime:   mondayAt(11),
	}

	if err := service.Create(context.Background(), appointment); err != nil {
		t.Errorf("back-to-back booking should be accepted, got %v", err)
	}
}

func TestCreate_CancelledAppointmentsDoNotConflict(t *testing.T) {
	cfg := testConfig()

	repo := &mockAppointmentRepository{
		findByOwnerFunc: func(ctx context.Context, ownerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Appointment, error) {
			return []*model.Appointment{
				{
					ID:        "507f1f77bcf86cd799439099",
					OwnerID:   ownerID,
					Title:     "Cancelled booking",
					StartTime: mondayAt(10),
					EndTime:   mondayAt(11),
					Status:    model.StatusCancelled,
				},
			}, nil
		},
	}
	service := newTestService(cfg, repo, &mockLockRepository{})

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Haircut",
		StartTime: mondayAt(10),
		EndTime:   mondayAt(11),
	}

	if err := service.Create(context.Background(), appointment); err != nil {
		t.Errorf("slot freed by cancellation should be bookable, got %v", err)
	}
}

func TestCreate_DayClosed(t *testing.T) {
	cfg := testConfig()
	service := newTestService(cfg, &mockAppointmentRepository{}, &mockLockRepository{})

	// Default schedule is closed on Sunday
	sunday := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Haircut",
		StartTime: sunday,
		EndTime:   sunday.Add(time.Hour),
	}

	err := service.Create(context.Background(), appointment)
	if err == nil {
		t.Fatal("expected closed-day rejection, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if appErr.Details["reason"] != availability.ReasonDayClosed {
		t.Errorf("expected reason %s, got %v", availability.ReasonDayClosed, appErr.Details["reason"])
	}
}

func TestCreate_OutsideHoursRejected(t *testing.T) {
	cfg := testConfig()
	service := newTestService(cfg, &mockAppointmentRepository{}, &mockLockRepository{})

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Late haircut",
		StartTime: mondayAt(19),
		EndTime:   mondayAt(20),
	}

	err := service.Create(context.Background(), appointment)
	if err == nil {
		t.Fatal("expected out-of-hours rejection, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestCreate_OutsideHoursWarnMode(t *testing.T) {
	cfg := testConfig()
	cfg.HoursEnforcement = config.HoursEnforcementWarn

	var created bool
	repo := &mockAppointmentRepository{
		createFunc: func(ctx context.Context, appointment *model.Appointment) error {
			created = true
			return nil
		},
	}
	service := newTestService(cfg, repo, &mockLockRepository{})

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Late haircut",
		StartTime: mondayAt(19),
		EndTime:   mondayAt(20),
	}

	if err := service.Create(context.Background(), appointment); err != nil {
		t.Fatalf("warn mode should accept out-of-hours booking, got %v", err)
	}
	if !created {
		t.Error("expected appointment to be persisted")
	}
}

func TestCreate_WarnModeStillRejectsConflicts(t *testing.T) {
	cfg := testConfig()
	cfg.HoursEnforcement = config.HoursEnforcementWarn

	repo := &mockAppointmentRepository{
		findByOwnerFunc: func(ctx context.Context, ownerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Appointment, error) {
			return []*model.Appointment{
				{
					ID:        "507f1f77bcf86cd799439099",
					OwnerID:   ownerID,
					Title:     "Existing booking",
					StartTime: mondayAt(10),
					EndTime:   mondayAt(11),
					Status:    model.StatusScheduled,
				},
			}, nil
		},
	}
	service := newTestService(cfg, repo, &mockLockRepository{})

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Haircut",
		StartTime: mondayAt(10),
		EndTime:   mondayAt(11),
	}

	err := service.Create(context.Background(), appointment)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("warn mode only relaxes hours checks, expected conflict, got %v", err)
	}
}

func TestCreate_BlockedTime(t *testing.T) {
	cfg := testConfig()
	service := newTestService(cfg, &mockAppointmentRepository{}, &mockLockRepository{})
	service.blocked = &mockBlockedSource{
		activeFunc: func(ctx context.Context, ownerID string) ([]model.BlockedTime, error) {
			return []model.BlockedTime{
				{
					OwnerID:   ownerID,
					StartTime: mondayAt(12),
					EndTime:   mondayAt(13),
					Reason:    "Lunch",
				},
			}, nil
		},
	}

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Haircut",
		StartTime: mondayAt(12).Add(30 * time.Minute),
		EndTime:   mondayAt(13).Add(30 * time.Minute),
	}

	err := service.Create(context.Background(), appointment)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if appErr.Details["reason"] != availability.ReasonTimeBlocked {
		t.Errorf("expected reason %s, got %v", availability.ReasonTimeBlocked, appErr.Details["reason"])
	}
}

func TestCreate_SlotLockHeld(t *testing.T) {
	cfg := testConfig()

	locks := &mockLockRepository{
		createFunc: func(ctx context.Context, lock *model.AppointmentLock) (*model.AppointmentLock, error) {
			return nil, mongo.WriteException{
				WriteErrors: []mongo.WriteError{{Code: 11000}},
			}
		},
	}
	service := newTestService(cfg, &mockAppointmentRepository{}, locks)

	appointment := &model.Appointment{
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Haircut",
		StartTime: mondayAt(10),
		EndTime:   mondayAt(11),
	}

	err := service.Create(context.Background(), appointment)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict while lock is held, got %v", err)
	}
}

func TestUpdate_RescheduleDoesNotConflictWithItself(t *testing.T) {
	cfg := testConfig()

	const appointmentID = "507f1f77bcf86cd799439050"
	existing := &model.Appointment{
		ID:        appointmentID,
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Haircut",
		StartTime: mondayAt(10),
		EndTime:   mondayAt(11),
		Status:    model.StatusScheduled,
	}

	var updated *model.Appointment
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return existing, nil
		},
		findByOwnerFunc: func(ctx context.Context, ownerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Appointment, error) {
			// The stored record still overlaps the proposed window
			return []*model.Appointment{existing}, nil
		},
		updateFunc: func(ctx context.Context, id string, appointment *model.Appointment) (*mongo.UpdateResult, error) {
			updated = appointment
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	service := newTestService(cfg, repo, &mockLockRepository{})

	newStart := mondayAt(10).Add(30 * time.Minute)
	newEnd := mondayAt(11).Add(30 * time.Minute)
	err := service.Update(context.Background(), appointmentID, &model.AppointmentUpdate{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	if err != nil {
		t.Fatalf("reschedule overlapping its own slot should succeed, got %v", err)
	}
	if updated == nil {
		t.Fatal("expected repository Update to be called")
	}
	if !updated.StartTime.Equal(newStart) {
		t.Errorf("expected merged start time %v, got %v", newStart, updated.StartTime)
	}
}

func TestUpdate_CancellationSkipsAvailabilityChecks(t *testing.T) {
	cfg := testConfig()

	const appointmentID = "507f1f77bcf86cd799439050"
	existing := &model.Appointment{
		ID:        appointmentID,
		OwnerID:   testOwnerID,
		ClientID:  testClientID,
		Title:     "Haircut",
		StartTime: mondayAt(10),
		EndTime:   mondayAt(11),
		Status:    model.StatusScheduled,
	}

	availabilityChecked := false
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return existing, nil
		},
		findByOwnerFunc: func(ctx context.Context, ownerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Appointment, error) {
			availabilityChecked = true
			return nil, nil
		},
	}
	service := newTestService(cfg, repo, &mockLockRepository{})

	err := service.Update(context.Background(), appointmentID, &model.AppointmentUpdate{
		Status: model.StatusCancelled,
	})
	if err != nil {
		t.Fatalf("cancellation should always succeed, got %v", err)
	}
	if availabilityChecked {
		t.Error("cancellation must not run the availability pipeline")
	}
}

func TestGetAll_ParallelCountAndFind(t *testing.T) {
	cfg := testConfig()

	repo := &mockAppointmentRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.Appointment{
				{ID: "507f1f77bcf86cd799439050", Title: "Haircut"},
			}, nil
		},
	}
	service := newTestService(cfg, repo, &mockLockRepository{})

	// Run with -race to catch unsynchronized result writes
	for i := 0; i < 10; i++ {
		appointments, count, err := service.GetAll(context.Background(), 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 42 {
			t.Errorf("iteration %d: expected count 42, got %d", i, count)
		}
		if len(appointments) != 1 {
			t.Errorf("iteration %d: expected 1 appointment, got %d", i, len(appointments))
		}
	}
}

func TestSearchByOwner_RequiresOwner(t *testing.T) {
	cfg := testConfig()
	service := newTestService(cfg, &mockAppointmentRepository{}, &mockLockRepository{})

	_, _, err := service.SearchByOwner(context.Background(), "", nil, nil, 10, 0)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
