package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"EmaQuest/pkg/errors"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse is the uniform success envelope.
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

func errorToHTTPStatus(err error) int {
	def, ok := err.(errors.Definition)
	if !ok {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case "UNAUTHORIZED":
		return http.StatusUnauthorized // 401
	case "ADMIN_REQUIRED":
		return http.StatusForbidden // 403
	case "PARTICIPANT_NOT_FOUND":
		return http.StatusNotFound // 404
	case "INVALID_PARTICIPANT_ID", "STUDY_CODE_INVALID", "NICKNAME_TAKEN", "NICKNAME_INVALID",
		"ONBOARDING_INCOMPLETE", "ONBOARDING_ALREADY_DONE",
		"MALFORMED_RESPONSE", "SLOT_OUT_OF_RANGE",
		"DEVICE_TOKEN_INVALID", "BROADCAST_INVALID", "EXPORT_TABLE_UNKNOWN",
		"INVALID_REQUEST":
		return http.StatusBadRequest // 400
	case "FLOW_ALREADY_OPEN", "FLOW_NOT_OPEN", "STUDY_COMPLETE", "INVALID_TRANSITION":
		return http.StatusConflict // 409
	case "TOO_MANY_REQUESTS":
		return http.StatusTooManyRequests // 429
	case "PERSISTENCE_FAILURE", "PUSH_PROVIDER_FAILURE":
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

// Error writes an error response.
func Error(ctx context.Context, c *app.RequestContext, err error) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	if def, ok := err.(errors.Definition); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	if def, ok := err.(errors.Definition); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// NoContent writes 204 No Content (DELETE endpoints).
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
