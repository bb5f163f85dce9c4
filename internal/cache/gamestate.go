package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"EmaQuest/internal/game"
	"EmaQuest/storage/redis"
)

// Game-state read cache. The dashboard polls /participants/me often; the
// cache absorbs those reads and is invalidated on every reconciliation write.

const (
	gameStatePrefix = "gamestate"
	gameStateTTL    = 10 * time.Minute
)

func gameStateKey(participantID int64) string {
	return redis.Key(gameStatePrefix, strconv.FormatInt(participantID, 10))
}

func SetGameState(ctx context.Context, participantID int64, gs game.GameState) error {
	data, err := json.Marshal(gs)
	if err != nil {
		return err
	}
	return redis.Client().Set(ctx, gameStateKey(participantID), data, gameStateTTL).Err()
}

// GetGameState returns (state, true) on a hit, (zero, false) on a miss.
func GetGameState(ctx context.Context, participantID int64) (game.GameState, bool, error) {
	data, err := redis.Client().Get(ctx, gameStateKey(participantID)).Bytes()
	if err == goredis.Nil {
		return game.GameState{}, false, nil
	}
	if err != nil {
		return game.GameState{}, false, err
	}

	var gs game.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return game.GameState{}, false, err
	}
	return gs, true, nil
}

func InvalidateGameState(ctx context.Context, participantID int64) error {
	return redis.Client().Del(ctx, gameStateKey(participantID)).Err()
}
