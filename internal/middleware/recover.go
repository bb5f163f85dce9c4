package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"EmaQuest/config"
	"EmaQuest/pkg/errors"
	"EmaQuest/pkg/logger"
	"EmaQuest/pkg/response"
)

// RecoverMiddleware turns handler panics into 500 responses. Development
// responses carry the panic and stack; production responses do not.
func RecoverMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}) {
	stack := debug.Stack()

	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
		zap.ByteString("stack", stack),
	}
	if participantID, exists := GetParticipantID(ctx, c); exists {
		fields = append(fields, zap.String("participant_id", participantID))
	}
	logger.Logger.Error("[PANIC RECOVERED]", fields...)

	errDef := errors.Definition{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal server error",
	}
	if config.Cfg.IsProduction() {
		response.Error(ctx, c, errDef)
		return
	}

	errDef.Message = fmt.Sprintf("Internal error: %v", err)
	response.ErrorWithDetails(ctx, c, errDef, map[string]interface{}{
		"panic":     fmt.Sprintf("%v", err),
		"stack":     string(stack),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
