package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"EmaQuest/config"
	"EmaQuest/internal/queue"
	"EmaQuest/internal/service"
	"EmaQuest/pkg/logger"
	"EmaQuest/pkg/metrics"
	"EmaQuest/pkg/push"
	"EmaQuest/pkg/snowflake"
	"EmaQuest/storage"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := push.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize push provider", zap.Error(err))
	}

	if err := metrics.Init(otel.Meter("emaquest-worker")); err != nil {
		logger.Logger.Warn("Failed to initialize domain metrics", zap.Error(err))
	}

	// every consumer delivers through the notification service
	queue.SetNotificationService(service.Notification())

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	queue.StartAllConsumers(ctx)

	<-ctx.Done()

	logger.Logger.Info("Worker service shutting down gracefully")
}
