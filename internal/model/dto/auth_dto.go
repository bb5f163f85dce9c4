package dto

// EnrollRequest creates a participant account from a study code and a
// self-chosen nickname.
type EnrollRequest struct {
	StudyCode string `json:"study_code" binding:"required"`
	Nickname  string `json:"nickname" binding:"required"`
	Avatar    string `json:"avatar,omitempty"`
}

// EnrollResponse returns the token pair and the fresh participant snapshot.
type EnrollResponse struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	ExpiresIn    int                 `json:"expires_in"`
	Participant  ParticipantSnapshot `json:"participant"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse carries the rotated token pair.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}
