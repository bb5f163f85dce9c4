package cache

import (
	"context"
	"fmt"
	"time"

	"EmaQuest/storage/redis"
)

const (
	pingScheduledPrefix    = "ping:scheduled"
	messageProcessedPrefix = "message:processed"

	scheduledTTL = 24 * time.Hour
	processedTTL = 48 * time.Hour
)

func slotKey(participantID int64, day, index int) string {
	return redis.Key(pingScheduledPrefix, fmt.Sprintf("%d", participantID), fmt.Sprintf("%d-%d", day, index))
}

// IsPingScheduled reports whether a notification for this slot was already
// published. The scheduler checks this before each fan-out so a re-run of a
// daily scan does not double-publish.
func IsPingScheduled(ctx context.Context, participantID int64, day, index int) (bool, error) {
	result, err := redis.Client().Exists(ctx, slotKey(participantID, day, index)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check ping scheduled status: %w", err)
	}
	return result > 0, nil
}

// MarkPingScheduled records that the slot's notification was published.
func MarkPingScheduled(ctx context.Context, participantID int64, day, index int) error {
	return redis.Client().Set(ctx, slotKey(participantID, day, index), "1", scheduledTTL).Err()
}

// UnmarkPingScheduled clears the mark so a failed publish can retry.
func UnmarkPingScheduled(ctx context.Context, participantID int64, day, index int) error {
	return redis.Client().Del(ctx, slotKey(participantID, day, index)).Err()
}

// TryMarkMessageProcessing atomically claims a message for processing via
// SETNX. True means this consumer is first; false means a duplicate delivery.
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}

	result, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return result, nil
}

// UnmarkMessageProcessing releases the claim after a handler failure so the
// redelivery can be processed.
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}

// MarkMessageProcessed finalizes the claim after successful processing.
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}
	return redis.Client().Set(ctx, key, "completed", ttl).Err()
}
