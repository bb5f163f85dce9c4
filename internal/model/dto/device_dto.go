package dto

// RegisterDeviceRequest binds a push token to the authenticated participant.
type RegisterDeviceRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required"` // ios | android | web
}
