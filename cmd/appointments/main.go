package main

import (
	"os"

	appointmenthandler "slotify/internal/appointments/handler"
	appointmentrepo "slotify/internal/appointments/repository"
	appointmentservice "slotify/internal/appointments/service"
	appointmentvalidator "slotify/internal/appointments/validator"
	blockedtimehandler "slotify/internal/blockedtimes/handler"
	blockedtimerepo "slotify/internal/blockedtimes/repository"
	blockedtimeservice "slotify/internal/blockedtimes/service"
	blockedtimevalidator "slotify/internal/blockedtimes/validator"
	businessrepo "slotify/internal/businesses/repository"
	businessservice "slotify/internal/businesses/service"
	businessvalidator "slotify/internal/businesses/validator"
	servicerepo "slotify/internal/services/repository"
	catalogservice "slotify/internal/services/service"
	"slotify/pkg/app"
	"slotify/pkg/config"
	"slotify/pkg/contracts"
	"slotify/pkg/kafka"
	kafka_config "slotify/pkg/kafka/config"
)

const ServiceName = "appointments"

const (
	eventsTopic    = "appointment-events"
	eventsDLQTopic = "appointment-events-dlq"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Appointments service")

	events := initEvents(cfg)
	if events != nil {
		defer func() {
			if err := events.Close(); err != nil {
				cfg.Log.Warn("Failed to close event producer", "error", err)
			}
		}()
	}

	appointmentService, blockedTimeService := initServices(cfg, events)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, contracts.Handlers{
		appointmenthandler.NewAppointmentHandler(appointmentService, cfg.Log),
		blockedtimehandler.NewBlockedTimeHandler(blockedTimeService, cfg.Log),
	})
	serverApp.Run()
}

// initEvents builds the Kafka producer when brokers are configured; without
// KAFKA_BROKERS the service runs with event publishing disabled.
func initEvents(cfg *config.Config) *kafka.Producer {
	if os.Getenv(kafka_config.EnvKafkaBrokers) == "" {
		cfg.Log.Info("Kafka brokers not configured, event publishing disabled")
		return nil
	}

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, eventsTopic, eventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka event producer initialized", "topic", eventsTopic)
	return producer
}

func initServices(cfg *config.Config, events *kafka.Producer) (appointmentservice.AppointmentService, blockedtimeservice.BlockedTimeService) {
	businessSvc := businessservice.NewBusinessService(
		businessrepo.NewMongoBusinessRepository(cfg),
		businessvalidator.NewBusinessValidator(cfg.Log),
		nil, // hours events are published by the businesses service
		cfg,
	)

	catalogSvc := catalogservice.NewCatalogServiceService(
		servicerepo.NewMongoCatalogServiceRepository(cfg),
		cfg,
	)

	blockedTimeSvc := blockedtimeservice.NewBlockedTimeService(
		blockedtimerepo.NewMongoBlockedTimeRepository(cfg),
		blockedtimevalidator.NewBlockedTimeValidator(cfg.Log),
		events,
		cfg,
	)

	appointmentSvc := appointmentservice.NewAppointmentService(
		appointmentrepo.NewMongoAppointmentRepository(cfg),
		appointmentrepo.NewAppointmentLockRepository(cfg),
		appointmentvalidator.NewAppointmentValidator(cfg.Log),
		businessSvc,
		blockedTimeSvc,
		catalogSvc,
		events,
		cfg,
	)

	cfg.Log.Info("Appointment services initialized", "database", cfg.MongoDatabaseName)
	return appointmentSvc, blockedTimeSvc
}
