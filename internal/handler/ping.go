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

// GetNextPing returns the next pending slot, if any.
// GET /v1/pings/next
func GetNextPing(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetParticipantIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidParticipantID)
		return
	}

	result, err := service.Ping().NextPing(ctx, participantID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// OpenFlow opens the instrument flow for the next pending slot and starts
// the answer window.
// POST /v1/pings/open
func OpenFlow(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetParticipantIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidParticipantID)
		return
	}

	result, err := service.Ping().OpenFlow(ctx, participantID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// AdvanceFlow submits the current step's answers and returns either the next
// step or the completion result.
// POST /v1/pings/advance
func AdvanceFlow(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetParticipantIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidParticipantID)
		return
	}

	var req dto.AdvanceRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Ping().Advance(ctx, participantID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// CancelFlow abandons the open flow, marking its slot missed.
// POST /v1/pings/cancel
func CancelFlow(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetParticipantIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidParticipantID)
		return
	}

	result, err := service.Ping().CancelFlow(ctx, participantID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
