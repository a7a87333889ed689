package auth

import "github.com/google/uuid"

// User is an account holder. Every authenticated user takes exams in the
// durable mode.
type User struct {
	ID          uuid.UUID
	Email       *string
	DisplayName string
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// RegisterRequest for email/password registration.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest for email/password authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OAuthProviderGoogle is the only supported OAuth provider.
const OAuthProviderGoogle = "google"

const oauthStateCookie = "oauth_state"
