package middleware

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"EmaQuest/pkg/token"
)

const (
	IdentityKey = token.IdentityKey
)

var (
	authMiddleware *jwt.HertzJWTMiddleware
)

func initAuthMiddleware() error {
	sharedGenerator := token.GetGenerator()
	if sharedGenerator == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	authMiddleware = &jwt.HertzJWTMiddleware{
		Realm:       "EmaQuest API",
		Key:         sharedGenerator.Key,
		Timeout:     sharedGenerator.Timeout,
		MaxRefresh:  sharedGenerator.MaxRefresh,
		IdentityKey: sharedGenerator.IdentityKey,
		TimeFunc:    sharedGenerator.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)

			// Stash the admin claim for the researcher gate.
			if admin, ok := claims[token.AdminClaim].(bool); ok && admin {
				c.Set(token.AdminClaim, true)
			}

			pid, ok := claims[IdentityKey].(string)
			if !ok {
				if pidFloat, ok := claims[IdentityKey].(float64); ok {
					pid = fmt.Sprintf("%.0f", pidFloat)
				} else {
					return nil
				}
			}
			return pid
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "UNAUTHORIZED",
					"message": message,
				},
			})
		},

		TokenLookup:   "header: Authorization, query: token",
		TokenHeadName: "Bearer",
	}

	return nil
}

func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// GetParticipantID returns the authenticated participant's public ID as a
// string.
func GetParticipantID(ctx context.Context, c *app.RequestContext) (string, bool) {
	participantID, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}

	id, ok := participantID.(string)
	if !ok {
		return "", false
	}

	return id, true
}

// GetParticipantIDInt64 is GetParticipantID parsed to the storage key type.
func GetParticipantIDInt64(ctx context.Context, c *app.RequestContext) (int64, bool) {
	id, ok := GetParticipantID(ctx, c)
	if !ok {
		return 0, false
	}

	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
