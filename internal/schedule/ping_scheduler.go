package schedule

// Daily ping fan-out: scan active participants, compute their current study
// day, and publish one delayed notification per remaining slot of that day.
// The scheduler only decides WHEN a ping fires; opening, answering and the
// 5-minute auto-miss all live in the participant session.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"EmaQuest/config"
	"EmaQuest/internal/cache"
	"EmaQuest/internal/game"
	"EmaQuest/internal/model"
	"EmaQuest/internal/queue"
	"EmaQuest/internal/repository"
	"EmaQuest/pkg/logger"
	"EmaQuest/pkg/snowflake"
	"EmaQuest/utils"
)

var (
	schedulerOnce sync.Once
	schedulerInst *PingScheduler
)

type PingScheduler struct {
	logger      *zap.Logger
	jobRunning  bool
	jobMu       sync.Mutex
	lastJobTime time.Time
}

func GetScheduler() *PingScheduler {
	schedulerOnce.Do(func() {
		schedulerInst = &PingScheduler{
			logger: logger.Logger,
		}
	})
	return schedulerInst
}

// SchedulePings runs one scan. Re-entrant calls while a scan is running are
// skipped; re-runs of a finished scan are deduplicated per slot through the
// redis scheduled marks, so the daily job can safely fire more than once.
func (s *PingScheduler) SchedulePings(ctx context.Context) error {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Ping scan already running, skipping")
		return nil
	}
	s.jobRunning = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	startTime := time.Now()
	s.lastJobTime = startTime

	loc, err := time.LoadLocation(config.Cfg.StudyTimezone)
	if err != nil {
		return fmt.Errorf("invalid study timezone %q: %w", config.Cfg.StudyTimezone, err)
	}
	now := startTime.In(loc)

	batchID, err := snowflake.NextID()
	if err != nil {
		s.logger.Error("Failed to generate batch ID", zap.Error(err))
		return fmt.Errorf("failed to generate batch ID: %w", err)
	}
	batch := fmt.Sprintf("scan_%d", batchID)

	s.logger.Info("Starting ping scan",
		zap.String("batch_id", batch),
		zap.Time("start_time", now),
	)

	participants, err := repository.Participants().ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to query active participants", zap.Error(err))
		return fmt.Errorf("failed to query active participants: %w", err)
	}

	if len(participants) == 0 {
		s.logger.Info("No active participants to schedule")
		return nil
	}

	scheduled, failed := 0, 0
	for i := range participants {
		n, err := s.scheduleParticipant(ctx, &participants[i], batch, now, loc)
		if err != nil {
			failed++
			s.logger.Error("Failed to schedule participant",
				zap.Int64("participant_id", participants[i].PublicID),
				zap.Error(err),
			)
			continue
		}
		scheduled += n
	}

	s.logger.Info("Ping scan completed",
		zap.String("batch_id", batch),
		zap.Int("participant_count", len(participants)),
		zap.Int("pings_scheduled", scheduled),
		zap.Int("participants_failed", failed),
		zap.Duration("duration", time.Since(startTime)),
	)

	if failed > 0 {
		return fmt.Errorf("ping scan completed with %d failed participants", failed)
	}
	return nil
}

// scheduleParticipant publishes the remaining pings of the participant's
// current study day and returns how many it scheduled.
func (s *PingScheduler) scheduleParticipant(
	ctx context.Context,
	p *model.Participant,
	batch string,
	now time.Time,
	loc *time.Location,
) (int, error) {
	if p.StudyStartDate == nil {
		return 0, nil
	}

	day := utils.StudyDay(*p.StudyStartDate, now, loc)
	if day < 0 || day >= game.StudyDays {
		return 0, nil
	}

	slotTimes := config.Cfg.SlotTimeList()
	scheduled := 0

	for index, clock := range slotTimes {
		if !p.Pings.IsPending(day, index) {
			continue
		}

		fireAt, err := utils.ParseTime(clock, now)
		if err != nil {
			return scheduled, fmt.Errorf("invalid slot time %q: %w", clock, err)
		}
		delay := fireAt.Sub(now)
		if delay < 0 {
			// Slot time already passed today; the participant can still open
			// it from the app, but we do not notify late.
			continue
		}

		done, err := cache.IsPingScheduled(ctx, p.PublicID, day, index)
		if err != nil {
			s.logger.Warn("Failed to check ping scheduled status",
				zap.Int64("participant_id", p.PublicID),
				zap.Error(err),
			)
		} else if done {
			continue
		}

		msg := model.PingNotificationMessage{
			BatchID:       batch,
			ParticipantID: p.PublicID,
			PingDay:       day,
			PingIndex:     index,
			ScheduledAt:   fireAt.Format(time.RFC3339),
			DelaySeconds:  int(delay.Seconds()),
		}
		if err := queue.PublishPingNotification(msg); err != nil {
			return scheduled, err
		}

		if err := cache.MarkPingScheduled(ctx, p.PublicID, day, index); err != nil {
			s.logger.Warn("Failed to mark ping scheduled",
				zap.Int64("participant_id", p.PublicID),
				zap.Error(err),
			)
		}
		scheduled++
	}

	return scheduled, nil
}

// LastRun reports when the last scan started.
func (s *PingScheduler) LastRun() time.Time {
	return s.lastJobTime
}
