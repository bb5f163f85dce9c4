package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"EmaQuest/internal/cache"
	"EmaQuest/internal/model"
	"EmaQuest/pkg/errors"
	"EmaQuest/pkg/logger"
	"EmaQuest/storage/mq"
)

// NotificationService is the worker-side delivery port; set at worker startup
// to avoid an import cycle between queue and service.
type NotificationService interface {
	DeliverPing(ctx context.Context, msg model.PingNotificationMessage) error
	DeliverBroadcast(ctx context.Context, msg model.BroadcastMessage) error
}

var notificationService NotificationService

func SetNotificationService(s NotificationService) {
	notificationService = s
}

// StartPingNotifyConsumer consumes delayed ping notifications. Each message
// is claimed through redis before delivery so a broker redelivery cannot
// push the same ping twice.
func StartPingNotifyConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.PingNotificationMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal ping notification message: %w", err)
		}

		claimed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// Redis being down must not stall notifications; worst case is a
			// duplicate push.
		} else if !claimed {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing ping notification",
			zap.String("message_id", msg.MessageID),
			zap.Int64("participant_id", msg.ParticipantID),
			zap.Int("ping_day", msg.PingDay),
			zap.Int("ping_index", msg.PingIndex),
		)

		if notificationService == nil {
			return fmt.Errorf("notification service not set")
		}

		if err := notificationService.DeliverPing(ctx, msg); err != nil {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("failed to deliver ping notification: %w", err)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.PingNotifyQueue,
		ConsumerTag:   "ping_notify_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartBroadcastConsumer consumes researcher broadcasts.
func StartBroadcastConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.BroadcastMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal broadcast message: %w", err)
		}

		claimed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !claimed {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing broadcast",
			zap.String("message_id", msg.MessageID),
			zap.String("title", msg.Title),
		)

		if notificationService == nil {
			return fmt.Errorf("notification service not set")
		}

		if err := notificationService.DeliverBroadcast(ctx, msg); err != nil {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("failed to deliver broadcast: %w", err)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.BroadcastQueue,
		ConsumerTag:   "broadcast_consumer",
		PrefetchCount: 5,
		Handler:       handler,
	})
}

// StartAllConsumers launches every consumer in its own goroutine and returns.
func StartAllConsumers(ctx context.Context) {
	go func() {
		if err := StartPingNotifyConsumer(ctx); err != nil {
			logger.Logger.Error("Ping notify consumer stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := StartBroadcastConsumer(ctx); err != nil {
			logger.Logger.Error("Broadcast consumer stopped", zap.Error(err))
		}
	}()
}
