package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"EmaQuest/internal/middleware"
	"EmaQuest/internal/model/dto"
	"EmaQuest/internal/service"
	"EmaQuest/pkg/errors"
	"EmaQuest/pkg/response"
)

// RegisterDevice binds a push token to the authenticated participant.
// POST /v1/devices
func RegisterDevice(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetParticipantIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidParticipantID)
		return
	}

	var req dto.RegisterDeviceRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Notification().RegisterDevice(ctx, participantID, req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{"registered": true})
}

// UnregisterDevice removes a push token.
// DELETE /v1/devices/:token
func UnregisterDevice(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetParticipantIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidParticipantID)
		return
	}

	if err := service.Notification().UnregisterDevice(ctx, participantID, c.Param("token")); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
