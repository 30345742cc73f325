package dto

import "github.com/hongminglow/all-in-store/internal/models"

// SendOTPRequest starts a login by phone or email. Exactly one is set.
type SendOTPRequest struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	OTP   string `json:"otp"`
}

// VerifyOTPResponse carries either a session or a registration requirement.
type VerifyOTPResponse struct {
	Outcome
	Token                string              `json:"token"`
	User                 *models.UserProfile `json:"user"`
	RequiresRegistration bool                `json:"requiresRegistration"`
}

type RegistrationRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type SessionResponse struct {
	Outcome
	Token string              `json:"token"`
	User  *models.UserProfile `json:"user"`
}

type ProfileResponse struct {
	Outcome
	User *models.UserProfile `json:"user"`
}
