package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"EmaQuest/config"
	"EmaQuest/internal/middleware"
	"EmaQuest/internal/router"
	"EmaQuest/internal/service"
	"EmaQuest/pkg/logger"
	"EmaQuest/pkg/metrics"
	pkgotel "EmaQuest/pkg/otel"
	"EmaQuest/pkg/push"
	"EmaQuest/pkg/snowflake"
	"EmaQuest/pkg/token"
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
		logger.Logger.Warn("Failed to initialize push provider", zap.Error(err))
		logger.Logger.Info("Push delivery will be disabled, ping notifications may not reach devices")
	}

	// token before middleware, the auth middleware reads the shared generator
	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	}

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	if config.Cfg.TracingEnabled {
		shutdown, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
			ServiceName:    config.Cfg.ServiceName,
			ServiceVersion: "1.0.0",
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.TracingEndpoint,
			SampleRatio:    config.Cfg.TracingSampler,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
				}
			}()
		}
	}

	if err := middleware.InitMetrics(otel.Meter("hertz-server")); err != nil {
		logger.Logger.Fatal("Failed to initialize HTTP metrics", zap.Error(err))
	}
	if err := metrics.Init(otel.Meter("emaquest")); err != nil {
		logger.Logger.Fatal("Failed to initialize domain metrics", zap.Error(err))
	}

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
	)

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)

	serverOpts := []hertzconfig.Option{server.WithHostPorts(addr)}
	var tracingMW app.HandlerFunc
	if config.Cfg.TracingEnabled {
		tracer, mw := middleware.NewServerTracerConfig()
		serverOpts = append(serverOpts, tracer)
		tracingMW = mw
	}

	h := server.Default(serverOpts...)
	if tracingMW != nil {
		h.Use(tracingMW)
	}

	router.Register(h)

	// answer-window enforcement runs beside the HTTP server
	go service.Ping().RunTimeoutLoop(ctx)

	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
