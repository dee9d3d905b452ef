package main

import (
	"os"

	businesshandler "slotify/internal/businesses/handler"
	businessrepo "slotify/internal/businesses/repository"
	businessservice "slotify/internal/businesses/service"
	businessvalidator "slotify/internal/businesses/validator"
	servicehandler "slotify/internal/services/handler"
	servicerepo "slotify/internal/services/repository"
	catalogservice "slotify/internal/services/service"
	"slotify/pkg/app"
	"slotify/pkg/config"
	"slotify/pkg/contracts"
	"slotify/pkg/kafka"
	kafka_config "slotify/pkg/kafka/config"
)

const ServiceName = "businesses"

const (
	eventsTopic    = "business-events"
	eventsDLQTopic = "business-events-dlq"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Businesses service")

	events := initEvents(cfg)
	if events != nil {
		defer func() {
			if err := events.Close(); err != nil {
				cfg.Log.Warn("Failed to close event producer", "error", err)
			}
		}()
	}

	businessSvc, catalogSvc := initServices(cfg, events)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, contracts.Handlers{
		businesshandler.NewBusinessHandler(businessSvc, cfg.Log),
		servicehandler.NewCatalogServiceHandler(catalogSvc, cfg.Log),
	})
	serverApp.Run()
}

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

func initServices(cfg *config.Config, events *kafka.Producer) (businessservice.BusinessService, catalogservice.CatalogServiceService) {
	businessSvc := businessservice.NewBusinessService(
		businessrepo.NewMongoBusinessRepository(cfg),
		businessvalidator.NewBusinessValidator(cfg.Log),
		events,
		cfg,
	)

	catalogSvc := catalogservice.NewCatalogServiceService(
		servicerepo.NewMongoCatalogServiceRepository(cfg),
		cfg,
	)

	cfg.Log.Info("Business services initialized", "database", cfg.MongoDatabaseName)
	return businessSvc, catalogSvc
}
