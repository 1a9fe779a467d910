package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"taskhire/internal/notifications/consumer"
	"taskhire/internal/notifications/repository"
	"taskhire/internal/notifications/service"
	"taskhire/pkg/config"
	"taskhire/pkg/kafka"
	kafka_config "taskhire/pkg/kafka/config"
	kafka_middleware "taskhire/pkg/kafka/middleware"
	"taskhire/pkg/validation"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	store := service.NewNotificationService(repository.NewMongoNotificationRepository(cfg), validation.New(), cfg)

	c, err := kafka.NewConsumer(kafkaCfg, cfg.NotificationTopic, cfg.NotificationGroupID, cfg.NotificationDLQTopic,
		consumer.NewHandler(store, cfg.Log), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		c.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		c.Use(kafka_middleware.MetricsConsumerMiddleware(metrics))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier", "topic", cfg.NotificationTopic, "group_id", cfg.NotificationGroupID)
	if err := c.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped unexpectedly", "error", err)
	}

	cfg.Log.Info("Shutting down notifier", "lag", c.Lag())
	if err := c.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	metrics.Log(cfg.Log)
}
