package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"EmaQuest/config"
	"EmaQuest/internal/schedule"
	"EmaQuest/pkg/logger"
	"EmaQuest/pkg/snowflake"
	"EmaQuest/storage"
)

func main() {
	once := flag.Bool("once", false, "run one scheduling scan and exit")
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
		zap.Bool("once", *once),
	)

	if *once {
		runCtx, cancelRun := context.WithTimeout(ctx, 5*time.Minute)
		defer cancelRun()
		if err := schedule.GetScheduler().SchedulePings(runCtx); err != nil {
			logger.Logger.Fatal("Scheduling scan failed", zap.Error(err))
		}
		logger.Logger.Info("Scheduling scan completed")
		return
	}

	runDailyPingLoop(ctx)

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runDailyPingLoop runs one scan at startup, then one per day shortly after
// midnight in the study timezone. Scans are idempotent, redis marks keep a
// re-run from double-publishing a slot.
func runDailyPingLoop(ctx context.Context) {
	s := schedule.GetScheduler()

	runOnce := func() {
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		if err := s.SchedulePings(runCtx); err != nil {
			logger.Logger.Error("Daily ping scheduler run failed", zap.Error(err))
		}
		cancel()
	}

	// development shortcut, scan every minute so local changes show up fast
	if config.Cfg.Environment == "development" {
		logger.Logger.Info("Ping scheduler running in development mode with 1m interval")

		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		runOnce()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}

	loc, err := time.LoadLocation(config.Cfg.StudyTimezone)
	if err != nil {
		logger.Logger.Error("Invalid study timezone, falling back to UTC",
			zap.String("timezone", config.Cfg.StudyTimezone),
			zap.Error(err),
		)
		loc = time.UTC
	}

	runOnce()

	for {
		now := time.Now().In(loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 5, 0, 0, loc)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		delay := time.Until(next)
		logger.Logger.Info("Scheduled next daily ping run",
			zap.Time("now", now),
			zap.Time("next_run", next),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			runOnce()
		}
	}
}
