package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"EmaQuest/internal/handler"
	"EmaQuest/internal/middleware"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/enroll", middleware.EnrollRateLimitMiddleware(), handler.Enroll)
		auth.POST("/token/refresh", handler.RefreshToken)
	}

	participants := v1.Group("/participants")
	participants.Use(middleware.AuthMiddleware())
	participants.Use(middleware.GeneralRateLimitMiddleware())
	{
		participants.GET("/me", handler.GetMe)
		participants.PUT("/me/onboarding", handler.CompleteOnboarding)
	}

	pings := v1.Group("/pings")
	pings.Use(middleware.AuthMiddleware())
	pings.Use(middleware.GeneralRateLimitMiddleware())
	{
		pings.GET("/next", handler.GetNextPing)
		pings.POST("/open", handler.OpenFlow)
		pings.POST("/advance", handler.AdvanceFlow)
		pings.POST("/cancel", handler.CancelFlow)
	}

	devices := v1.Group("/devices")
	devices.Use(middleware.AuthMiddleware())
	devices.Use(middleware.GeneralRateLimitMiddleware())
	{
		devices.POST("", handler.RegisterDevice)
		devices.DELETE("/:token", handler.UnregisterDevice)
	}

	// Researcher surface: JWT admin claim + allow-list, or automation secret.
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/participants", handler.ListParticipants)
		admin.GET("/stats", handler.GetStudyStats)
		admin.GET("/export/:table", handler.ExportCSV)
		admin.POST("/notifications/broadcast", handler.Broadcast)
		admin.POST("/schedule/run", handler.TriggerScheduling)
	}
}
