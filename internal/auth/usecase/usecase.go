package usecase

import (
	"errors"

	authdomain "devtodo-backend/internal/auth/domain"
	authdto "devtodo-backend/internal/auth/dto"
)

// MinPasswordLength is the shortest password Register accepts
const MinPasswordLength = 12

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserExists         = errors.New("username already exists")
	ErrWeakPassword       = errors.New("password must be at least 12 characters")
)

// AuthUsecase defines the interface for account and token logic
type AuthUsecase interface {
	// Register creates an account and returns a session token
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)

	// Login checks credentials and returns a session token
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)

	// ValidateToken returns the user a token was issued to
	ValidateToken(token string) (*authdomain.User, error)
}
