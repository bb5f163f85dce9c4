package storage

import (
	"EmaQuest/storage/database"
	"EmaQuest/storage/mq"
	"EmaQuest/storage/redis"
)

// Init brings the storage layer up: database, redis, then the broker.
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	if err := mq.Init(); err != nil {
		return err
	}

	return nil
}
