package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"EmaQuest/internal/model"
	"EmaQuest/pkg/logger"
	"EmaQuest/pkg/snowflake"
	"EmaQuest/storage/mq"
)

// PublishPingNotification publishes a delayed ping notification; the broker
// delivers it to the worker when the slot's wall-clock time arrives.
func PublishPingNotification(msg model.PingNotificationMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.String("batch_id", msg.BatchID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("ping_%d", id)
	}

	delay := time.Duration(msg.DelaySeconds) * time.Second

	err := mq.PublishDelayedMessage(
		mq.DelayedExchange,
		mq.PingNotifyRoutingKey,
		delay,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish ping notification message",
			zap.String("batch_id", msg.BatchID),
			zap.Int64("participant_id", msg.ParticipantID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published ping notification message",
		zap.String("message_id", msg.MessageID),
		zap.String("batch_id", msg.BatchID),
		zap.Int64("participant_id", msg.ParticipantID),
		zap.Int("ping_day", msg.PingDay),
		zap.Int("ping_index", msg.PingIndex),
		zap.Duration("delay", delay),
	)

	return nil
}

// PublishBroadcast publishes a researcher announcement for immediate fan-out.
func PublishBroadcast(msg model.BroadcastMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("broadcast_%d", id)
	}

	err := mq.PublishMessage(mq.DirectExchange, mq.BroadcastRoutingKey, msg)
	if err != nil {
		logger.Logger.Error("Failed to publish broadcast message",
			zap.String("message_id", msg.MessageID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published broadcast message",
		zap.String("message_id", msg.MessageID),
		zap.String("title", msg.Title),
		zap.Int("recipient_count", len(msg.ParticipantIDs)),
	)

	return nil
}
