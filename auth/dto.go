// Package auth provides authentication and authorization functionality.
// This file defines the request/response payloads for the auth endpoints.
package auth

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Username string `json:"username" example:"newuser"`
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// LoginRequest represents the login request payload. Login accepts either a
// username or an email address.
type LoginRequest struct {
	Login    string `json:"login" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// TokenResponse is returned to the client upon successful login.
type TokenResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType string `json:"token_type" example:"Bearer"`
	ExpiresIn int64  `json:"expires_in" example:"86400"` // Seconds until expiry.
}
