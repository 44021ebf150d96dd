package main

import (
	"gameden/internal/bookings/handler"
	"gameden/internal/bookings/repository"
	"gameden/internal/bookings/service"
	"gameden/internal/bookings/validator"
	"gameden/pkg/app"
	"gameden/pkg/config"
	"gameden/pkg/kafka"
	kafka_config "gameden/pkg/kafka/config"
	kafka_middleware "gameden/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Bookings service")

	if cfg.UsesMongo() {
		cfg.SetMongo()
	}
	defer cfg.GracefulShutdown()

	publisher, closePublisher := initPublisher(cfg)
	defer closePublisher()

	bookingService := initServices(cfg, publisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(
		cfg,
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		handler.NewBookingHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher service.EventPublisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)

	var (
		bookingRepo repository.BookingRepository
		lockRepo    repository.SlotLockRepository
	)
	if cfg.UsesMongo() {
		bookingRepo = repository.NewMongoBookingRepository(cfg)
		lockRepo = repository.NewMongoSlotLockRepository(cfg)
	} else {
		bookingRepo = repository.NewMemoryBookingRepository()
		lockRepo = repository.NewMemorySlotLockRepository()
	}

	bookingService := service.NewBookingService(bookingRepo, lockRepo, bookingValidator, publisher, cfg)
	cfg.Log.Info("Booking service initialized",
		"store", cfg.StoreDriver,
		"database", cfg.MongoDatabaseName,
		"transactions", cfg.MongoTransactions,
	)
	return bookingService
}

// initPublisher returns the booking event publisher and its shutdown func.
// With Kafka disabled events are dropped.
func initPublisher(cfg *config.Config) (service.EventPublisher, func()) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return service.NewNoopPublisher(), func() {}
	}

	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.KafkaBookingsTopic, cfg.KafkaBookingsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := &kafka_middleware.Metrics{}
	producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Kafka producer initialized",
		"brokers", kafkaCfg.Brokers,
		"topic", cfg.KafkaBookingsTopic,
		"dlq_topic", cfg.KafkaBookingsDLQTopic,
	)

	closeFn := func() {
		snapshot := metrics.Snapshot()
		cfg.Log.Info("Kafka producer metrics",
			"published", snapshot.Published,
			"failed", snapshot.Failed,
			"avg_latency", snapshot.AvgLatency,
		)
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
	return service.NewKafkaPublisher(producer, ServiceName, kafkaCfg.PublishTimeout), closeFn
}
