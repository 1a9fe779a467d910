package main

import (
	"context"

	"taskhire/internal/authz"
	bookingshandler "taskhire/internal/bookings/handler"
	bookingsrepo "taskhire/internal/bookings/repository"
	bookingsservice "taskhire/internal/bookings/service"
	bookingsvalidator "taskhire/internal/bookings/validator"
	"taskhire/internal/directory"
	disputeshandler "taskhire/internal/disputes/handler"
	disputesrepo "taskhire/internal/disputes/repository"
	disputesservice "taskhire/internal/disputes/service"
	"taskhire/internal/notifications/dispatcher"
	notificationshandler "taskhire/internal/notifications/handler"
	notificationsrepo "taskhire/internal/notifications/repository"
	notificationsservice "taskhire/internal/notifications/service"
	paymentshandler "taskhire/internal/payments/handler"
	paymentsrepo "taskhire/internal/payments/repository"
	paymentsservice "taskhire/internal/payments/service"
	"taskhire/pkg/app"
	"taskhire/pkg/auth"
	"taskhire/pkg/config"
	"taskhire/pkg/kafka"
	kafka_config "taskhire/pkg/kafka/config"
	kafka_middleware "taskhire/pkg/kafka/middleware"
	"taskhire/pkg/validation"
)

const ServiceName = "marketplace"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.ValidateAuth(); err != nil {
		cfg.Log.Fatal("Invalid auth configuration", "error", err)
	}
	cfg.SetMongo()

	cfg.Log.Info("Starting Marketplace service")
	serverApp := app.NewApplication(cfg)
	rs := serverApp.Responder()

	v := validation.New()
	gate := authz.NewGate()

	notificationService := notificationsservice.NewNotificationService(
		notificationsrepo.NewMongoNotificationRepository(cfg), v, cfg,
	)
	notifier := initDispatcher(cfg, serverApp, notificationService)

	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		directory.NewMongoDirectory(cfg),
		gate,
		bookingsvalidator.NewBookingValidator(v, cfg.Log),
		notifier,
		cfg,
	)
	paymentService := paymentsservice.NewPaymentService(
		paymentsrepo.NewMongoPaymentRepository(cfg), bookingRepo, gate, v, notifier, cfg,
	)
	disputeService := disputesservice.NewDisputeService(
		disputesrepo.NewMongoDisputeRepository(cfg), bookingRepo, gate, v, notifier, cfg,
	)
	cfg.Log.Info("Marketplace services initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(
		auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		bookingshandler.NewBookingHandler(bookingService, rs),
		paymentshandler.NewPaymentHandler(paymentService, rs),
		disputeshandler.NewDisputeHandler(disputeService, rs),
		notificationshandler.NewNotificationHandler(notificationService, rs),
	)
	serverApp.Run()
}

// initDispatcher picks the notification sink: the store directly, or the
// notifications topic consumed by cmd/notifier.
func initDispatcher(cfg *config.Config, serverApp *app.Application, store dispatcher.Store) dispatcher.Notifier {
	var sink dispatcher.Sink = dispatcher.NewStoreSink(store)
	var producer *kafka.Producer
	var metrics *kafka_middleware.Metrics

	if cfg.NotificationTransport == config.TransportKafka {
		kafkaCfg, err := kafka_config.Load()
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
		kafkaCfg.LogConfiguration(cfg.Log)

		producer, err = kafka.NewProducer(kafkaCfg, cfg.NotificationTopic, cfg.NotificationDLQTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		if kafkaCfg.EnableMiddleware {
			metrics = kafka_middleware.NewMetrics()
			producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
			producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
		}
		sink = dispatcher.NewKafkaSink(producer, ServiceName)
	}

	d := dispatcher.New(sink, dispatcher.Config{
		Workers:     cfg.DispatcherWorkers,
		QueueSize:   cfg.DispatcherQueueSize,
		Timeout:     cfg.DispatcherTimeout,
		MaxAttempts: cfg.DispatcherMaxAttempts,
		Backoff:     cfg.DispatcherBackoff,
	}, cfg.Log)

	// The dispatcher drains before the producer it publishes through closes.
	serverApp.OnShutdown("notification-dispatcher", func(ctx context.Context) error {
		err := d.Close(ctx)
		stats := d.Stats()
		cfg.Log.Info("Notification dispatcher stopped",
			"queued", stats.Queued,
			"delivered", stats.Delivered,
			"failed", stats.Failed,
			"dropped", stats.Dropped,
		)
		return err
	})
	if producer != nil {
		serverApp.OnShutdown("kafka-producer", func(context.Context) error {
			if metrics != nil {
				metrics.Log(cfg.Log)
			}
			return producer.Close()
		})
	}

	cfg.Log.Info("Notification transport configured", "transport", cfg.NotificationTransport)
	return d
}
