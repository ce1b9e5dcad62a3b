package repository

import (
	"errors"

	authdomain "devtodo-backend/internal/auth/domain"

	"golang.org/x/crypto/bcrypt"
)

// ErrUsernameTaken is returned by Create when the username already exists
var ErrUsernameTaken = errors.New("username already exists")

// UserRepository defines the interface for user account storage
type UserRepository interface {
	// Create stores a new user, assigning its ID and CreatedAt
	Create(user *authdomain.User) error

	// FindByUsername returns nil, nil when no user has the username
	FindByUsername(username string) (*authdomain.User, error)

	// FindByID returns nil, nil when no user has the id
	FindByID(id string) (*authdomain.User, error)
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
