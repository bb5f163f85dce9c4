package push

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"EmaQuest/config"
	"EmaQuest/pkg/logger"
)

// Notification is one push message to a set of device tokens.
type Notification struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// Client delivers notifications to participant devices. Send returns the
// tokens the provider rejected as invalid so the caller can prune them.
type Client interface {
	Send(ctx context.Context, n Notification) (invalidTokens []string, err error)
}

var (
	pushClient Client
	pushOnce   sync.Once
	pushErr    error
)

func Init() error {
	pushOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.PushProvider {
		case "webhook":
			pushClient, pushErr = NewWebhookClient(cfg.PushEndpoint, cfg.PushAuthToken)
		case "mock":
			pushClient = NewMockClient()
		default:
			pushErr = fmt.Errorf("unsupported push provider: %s", cfg.PushProvider)
		}

		if pushErr != nil {
			logger.Logger.Error("Failed to initialize push client", zap.Error(pushErr))
			return
		}

		logger.Logger.Info("Push client initialized successfully",
			zap.String("provider", cfg.PushProvider),
		)
	})

	return pushErr
}

func GetClient() Client {
	if pushClient == nil {
		panic("push client not initialized, call push.Init() first")
	}
	return pushClient
}

func Send(ctx context.Context, n Notification) ([]string, error) {
	return GetClient().Send(ctx, n)
}
