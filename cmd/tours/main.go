package main

import (
	"tourly/internal/tours/handler"
	"tourly/internal/tours/service"
	"tourly/internal/tours/store"
	"tourly/internal/tours/validator"
	"tourly/pkg/app"
	"tourly/pkg/clock"
	"tourly/pkg/config"
	"tourly/pkg/events"
)

const ServiceName = "tours"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Tours service")

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	tourService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewTourHandler(tourService, cfg))
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, tour events disabled")
		return events.NopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}
	cfg.Log.Info("Event publisher initialized", "topic", cfg.KafkaTopic)
	return publisher
}

func initServices(cfg *config.Config, publisher events.Publisher) service.TourService {
	tourStore := store.New(clock.System(), clock.UTCDayKey, cfg.IdempotencyTTL)
	tourValidator := validator.NewTourValidator(cfg.Log)
	tourService := service.NewTourService(tourStore, tourValidator, publisher, cfg)

	cfg.Log.Info("Tour service initialized", "daily_tour_limit", cfg.DailyTourLimit)
	return tourService
}
