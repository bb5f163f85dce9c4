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

// GetMe returns the authenticated participant's gamified state.
// GET /v1/participants/me
func GetMe(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetParticipantIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidParticipantID)
		return
	}

	result, err := service.Participant().GetState(ctx, participantID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// CompleteOnboarding stores the sociodemographic answers and starts the
// participant's study clock.
// PUT /v1/participants/me/onboarding
func CompleteOnboarding(ctx context.Context, c *app.RequestContext) {
	participantID, ok := middleware.GetParticipantIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidParticipantID)
		return
	}

	var req dto.OnboardingRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Participant().CompleteOnboarding(ctx, participantID, req.Sociodemographic)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
