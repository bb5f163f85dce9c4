package middleware

import (
	"go.uber.org/zap"

	"EmaQuest/pkg/logger"
)

// Init initializes all middlewares that need setup before the server starts.
func Init() error {
	if err := initAuthMiddleware(); err != nil {
		logger.Logger.Error("Failed to initialize auth middleware", zap.Error(err))
		return err
	}

	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}
