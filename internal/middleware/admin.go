package middleware

import (
	"context"
	"crypto/subtle"

	"github.com/cloudwego/hertz/pkg/app"

	"EmaQuest/config"
	"EmaQuest/pkg/errors"
	"EmaQuest/pkg/response"
	"EmaQuest/pkg/token"
)

// AdminAuthMiddleware is the auth gate for the researcher surface. Automation
// callers present a shared secret instead of a JWT, so the JWT middleware only
// runs when no secret header is present; AdminMiddleware verifies the secret.
func AdminAuthMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if len(c.GetHeader("X-Automation-Secret")) > 0 {
			c.Next(ctx)
			return
		}
		AuthMiddleware()(ctx, c)
	}
}

// AdminMiddleware gates the researcher surface. A request passes when its
// token carries the admin claim and the identity is on the allow-list, or
// when it presents the automation secret (server-side jobs, CI exports).
func AdminMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if secret := string(c.GetHeader("X-Automation-Secret")); secret != "" {
			expected := config.Cfg.AutomationSecret
			if expected != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(expected)) == 1 {
				c.Next(ctx)
				return
			}
			c.Abort()
			response.Error(ctx, c, errors.AdminRequired)
			return
		}

		admin, _ := c.Get(token.AdminClaim)
		isAdmin, _ := admin.(bool)
		if !isAdmin {
			c.Abort()
			response.Error(ctx, c, errors.AdminRequired)
			return
		}

		identity, ok := GetParticipantID(ctx, c)
		if !ok || !isAllowListed(identity) {
			c.Abort()
			response.Error(ctx, c, errors.AdminRequired)
			return
		}

		c.Next(ctx)
	}
}

func isAllowListed(identity string) bool {
	for _, allowed := range config.Cfg.AdminIdentities() {
		if identity == allowed {
			return true
		}
	}
	return false
}
