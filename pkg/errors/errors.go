package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition carries a stable business error code plus a default message.
type Definition struct {
	Code    string
	Message string
}

// Enrollment and auth errors.
var (
	Unauthorized          = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	AdminRequired         = Definition{Code: "ADMIN_REQUIRED", Message: "Researcher access required"}
	InvalidParticipantID  = Definition{Code: "INVALID_PARTICIPANT_ID", Message: "Invalid participant ID format"}
	ParticipantNotFound   = Definition{Code: "PARTICIPANT_NOT_FOUND", Message: "Participant not found"}
	NicknameTaken         = Definition{Code: "NICKNAME_TAKEN", Message: "Nickname already in use"}
	NicknameInvalid       = Definition{Code: "NICKNAME_INVALID", Message: "Nickname must be 2-32 letters, digits, underscores or spaces"}
	StudyCodeInvalid      = Definition{Code: "STUDY_CODE_INVALID", Message: "Study code invalid"}
	OnboardingIncomplete  = Definition{Code: "ONBOARDING_INCOMPLETE", Message: "Onboarding not completed"}
	OnboardingAlreadyDone = Definition{Code: "ONBOARDING_ALREADY_DONE", Message: "Onboarding already completed"}
)

// Ping lifecycle errors.
var (
	InvalidTransition = Definition{Code: "INVALID_TRANSITION", Message: "Slot already resolved"}
	SlotOutOfRange    = Definition{Code: "SLOT_OUT_OF_RANGE", Message: "Slot address outside the study grid"}
	FlowAlreadyOpen   = Definition{Code: "FLOW_ALREADY_OPEN", Message: "An instrument flow is already open"}
	FlowNotOpen       = Definition{Code: "FLOW_NOT_OPEN", Message: "No instrument flow is open"}
	StudyComplete     = Definition{Code: "STUDY_COMPLETE", Message: "All study slots are resolved"}
	MalformedResponse = Definition{Code: "MALFORMED_RESPONSE", Message: "Step payload missing or out of range"}
)

// TooManyRequests is returned by the rate-limit middleware.
var TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, slow down"}

// Persistence and delivery errors.
var (
	PersistenceFailure  = Definition{Code: "PERSISTENCE_FAILURE", Message: "Failed to persist participant state"}
	DeviceTokenInvalid  = Definition{Code: "DEVICE_TOKEN_INVALID", Message: "Device token invalid"}
	BroadcastInvalid    = Definition{Code: "BROADCAST_INVALID", Message: "Broadcast payload invalid"}
	ExportTableUnknown  = Definition{Code: "EXPORT_TABLE_UNKNOWN", Message: "Unknown export table"}
	PushProviderFailure = Definition{Code: "PUSH_PROVIDER_FAILURE", Message: "Push provider request failed"}
)

// Lookup provides error code lookup.
var Lookup = map[string]Definition{
	Unauthorized.Code:          Unauthorized,
	AdminRequired.Code:         AdminRequired,
	InvalidParticipantID.Code:  InvalidParticipantID,
	ParticipantNotFound.Code:   ParticipantNotFound,
	NicknameTaken.Code:         NicknameTaken,
	NicknameInvalid.Code:       NicknameInvalid,
	StudyCodeInvalid.Code:      StudyCodeInvalid,
	OnboardingIncomplete.Code:  OnboardingIncomplete,
	OnboardingAlreadyDone.Code: OnboardingAlreadyDone,
	InvalidTransition.Code:     InvalidTransition,
	SlotOutOfRange.Code:        SlotOutOfRange,
	FlowAlreadyOpen.Code:       FlowAlreadyOpen,
	FlowNotOpen.Code:           FlowNotOpen,
	StudyComplete.Code:         StudyComplete,
	MalformedResponse.Code:     MalformedResponse,
	TooManyRequests.Code:       TooManyRequests,
	PersistenceFailure.Code:    PersistenceFailure,
	DeviceTokenInvalid.Code:    DeviceTokenInvalid,
	BroadcastInvalid.Code:      BroadcastInvalid,
	ExportTableUnknown.Code:    ExportTableUnknown,
	PushProviderFailure.Code:   PushProviderFailure,
}

// Get returns the Definition for a code, or a generic one when unknown.
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// Token plumbing errors.
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrIdentityNotFound             = errors.New("identity not found in token")
)

// SkipMessageError tells a consumer to ack a message without processing it
// (duplicate delivery, stale snapshot).
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "skip message: " + e.Reason
}
