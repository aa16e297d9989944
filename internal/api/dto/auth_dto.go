package dto

import "time"

// SignupRequest payload for self-registration.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

// VerifyRequest confirms the emailed code.
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  int    `json:"code" validate:"required,min=100000,max=999999"`
}

// ResendVerificationRequest asks for a fresh code.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
