package auth

import "github.com/cellflip/cellflip-backend/internal/users"

// LoginInput carries email/password credentials for seller and admin login.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterSellerInput carries the self-serve seller signup payload.
type RegisterSellerInput struct {
	Name     string
	Email    string
	Phone    *string
	Password string
}

// RequestOTPInput asks for a one-time login code for a rider phone.
type RequestOTPInput struct {
	Phone string
}

// VerifyOTPInput exchanges a previously issued code for a session.
type VerifyOTPInput struct {
	Phone string
	Code  string
}

// AuthResponse is the successful login payload.
type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresIn   int            `json:"expires_in"`
	User        users.UserView `json:"user"`
}
