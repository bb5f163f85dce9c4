package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"EmaQuest/internal/model"
	"EmaQuest/internal/model/dto"
	"EmaQuest/internal/queue"
	"EmaQuest/internal/repository"
	pkgerrors "EmaQuest/pkg/errors"
	"EmaQuest/pkg/logger"
	"EmaQuest/pkg/metrics"
	"EmaQuest/pkg/push"
	"EmaQuest/pkg/snowflake"
)

// NotificationService handles both sides of push delivery: the API side
// (device registration, broadcast enqueue) and the worker side (consuming
// queue messages and calling the push provider).
type NotificationService struct {
	devices *repository.DeviceRepo
	tasks   *repository.NotificationRepo
	repo    *repository.ParticipantRepo
}

var (
	notificationSvc     *NotificationService
	notificationSvcOnce sync.Once
)

func Notification() *NotificationService {
	notificationSvcOnce.Do(func() {
		notificationSvc = &NotificationService{
			devices: repository.Devices(),
			tasks:   repository.Notifications(),
			repo:    repository.Participants(),
		}
	})
	return notificationSvc
}

// RegisterDevice binds a push token to the participant.
func (s *NotificationService) RegisterDevice(ctx context.Context, participantID int64, req dto.RegisterDeviceRequest) error {
	platform := strings.ToLower(req.Platform)
	switch platform {
	case "ios", "android", "web":
	default:
		return pkgerrors.DeviceTokenInvalid
	}
	if len(req.Token) < 8 {
		return pkgerrors.DeviceTokenInvalid
	}

	return s.devices.Register(ctx, participantID, req.Token, platform)
}

// UnregisterDevice removes a push token; idempotent.
func (s *NotificationService) UnregisterDevice(ctx context.Context, participantID int64, token string) error {
	if token == "" {
		return pkgerrors.DeviceTokenInvalid
	}
	return s.devices.Unregister(ctx, participantID, token)
}

// Broadcast validates and enqueues a researcher announcement; delivery
// happens in the worker.
func (s *NotificationService) Broadcast(ctx context.Context, req dto.BroadcastRequest) (*dto.BroadcastData, error) {
	if req.Title == "" || req.Body == "" {
		return nil, pkgerrors.BroadcastInvalid
	}

	recipients := req.ParticipantIDs
	if len(recipients) == 0 {
		active, err := s.repo.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		for i := range active {
			recipients = append(recipients, active[i].PublicID)
		}
	}

	id, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message ID: %w", err)
	}
	msg := model.BroadcastMessage{
		MessageID:      fmt.Sprintf("broadcast_%d", id),
		Title:          req.Title,
		Body:           req.Body,
		ParticipantIDs: req.ParticipantIDs,
	}
	if err := queue.PublishBroadcast(msg); err != nil {
		return nil, err
	}

	return &dto.BroadcastData{
		MessageID:  msg.MessageID,
		Recipients: len(recipients),
	}, nil
}

// DeliverPing implements queue.NotificationService: push the "your ping is
// ready" notification to the participant's devices and record the attempt.
func (s *NotificationService) DeliverPing(ctx context.Context, msg model.PingNotificationMessage) error {
	tokens, err := s.devices.TokensFor(ctx, msg.ParticipantID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		logger.Logger.Info("Participant has no devices, dropping ping notification",
			zap.Int64("participant_id", msg.ParticipantID),
		)
		return nil
	}

	taskCode, err := snowflake.NextID()
	if err != nil {
		return fmt.Errorf("failed to generate task code: %w", err)
	}
	task := &model.NotificationTask{
		TaskCode:      taskCode,
		ParticipantID: msg.ParticipantID,
		Category:      model.NotificationCategoryPing,
		Status:        model.NotificationTaskStatusProcessing,
		ScheduledAt:   time.Now(),
		Payload: model.JSONB{
			"message_id": msg.MessageID,
			"ping_day":   msg.PingDay,
			"ping_index": msg.PingIndex,
		},
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return err
	}

	title := "Hora do check-in!"
	body := "Você tem 5 minutos para responder ao questionário de agora."
	invalid, err := push.Send(ctx, push.Notification{
		Tokens: tokens,
		Title:  title,
		Body:   body,
		Data: map[string]string{
			"type":       "ping",
			"ping_day":   fmt.Sprintf("%d", msg.PingDay),
			"ping_index": fmt.Sprintf("%d", msg.PingIndex),
		},
	})
	if err != nil {
		metrics.RecordPushFailed(ctx, len(tokens))
		s.markTask(ctx, taskCode, model.NotificationTaskStatusFailed)
		return err
	}

	metrics.RecordPushSent(ctx, len(tokens)-len(invalid))
	s.pruneInvalid(ctx, invalid)
	s.markTask(ctx, taskCode, model.NotificationTaskStatusSuccess)
	return nil
}

// DeliverBroadcast implements queue.NotificationService for announcements.
func (s *NotificationService) DeliverBroadcast(ctx context.Context, msg model.BroadcastMessage) error {
	targets := msg.ParticipantIDs
	if len(targets) == 0 {
		active, err := s.repo.ListActive(ctx)
		if err != nil {
			return err
		}
		for i := range active {
			targets = append(targets, active[i].PublicID)
		}
	}

	tokensByParticipant, err := s.devices.TokensForAll(ctx, targets)
	if err != nil {
		return err
	}

	delivered, failed := 0, 0
	for participantID, tokens := range tokensByParticipant {
		if len(tokens) == 0 {
			continue
		}

		invalid, err := push.Send(ctx, push.Notification{
			Tokens: tokens,
			Title:  msg.Title,
			Body:   msg.Body,
			Data:   map[string]string{"type": "broadcast"},
		})
		if err != nil {
			failed++
			metrics.RecordPushFailed(ctx, len(tokens))
			logger.Logger.Error("Failed to deliver broadcast to participant",
				zap.Int64("participant_id", participantID),
				zap.Error(err),
			)
			continue
		}
		metrics.RecordPushSent(ctx, len(tokens)-len(invalid))
		s.pruneInvalid(ctx, invalid)
		delivered++
	}

	logger.Logger.Info("Broadcast delivered",
		zap.String("message_id", msg.MessageID),
		zap.Int("delivered", delivered),
		zap.Int("failed", failed),
	)

	if failed > 0 && delivered == 0 {
		return fmt.Errorf("broadcast %s failed for all %d participants", msg.MessageID, failed)
	}
	return nil
}

func (s *NotificationService) markTask(ctx context.Context, taskCode int64, status model.NotificationTaskStatus) {
	if err := s.tasks.MarkResult(ctx, taskCode, status); err != nil {
		logger.Logger.Warn("Failed to record notification task result",
			zap.Int64("task_code", taskCode),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) pruneInvalid(ctx context.Context, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	if err := s.devices.Prune(ctx, tokens); err != nil {
		logger.Logger.Warn("Failed to prune invalid device tokens",
			zap.Int("token_count", len(tokens)),
			zap.Error(err),
		)
	}
}
