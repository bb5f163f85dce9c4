package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"EmaQuest/internal/model/dto"
	"EmaQuest/internal/service"
	"EmaQuest/pkg/response"
)

// Enroll creates a participant account from the study code.
// POST /v1/auth/enroll
func Enroll(ctx context.Context, c *app.RequestContext) {
	var req dto.EnrollRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Participant().Enroll(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// RefreshToken rotates the token pair.
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Participant().RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
