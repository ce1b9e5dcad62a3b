package repository

import (
	"sync"
	"time"

	authdomain "devtodo-backend/internal/auth/domain"

	"github.com/google/uuid"
)

// memoryUserRepository keeps accounts in process memory for STORE_DRIVER=memory
type memoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*authdomain.User
	byUsername map[string]string
}

// NewMemoryUserRepository creates an empty in-memory UserRepository
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:       make(map[string]*authdomain.User),
		byUsername: make(map[string]string),
	}
}

func (r *memoryUserRepository) Create(user *authdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return ErrUsernameTaken
	}
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()

	stored := *user
	r.byID[user.ID] = &stored
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *memoryUserRepository) FindByUsername(username string) (*authdomain.User, error) {
	r.mu.RLock()
	id, ok := r.byUsername[username]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.FindByID(id)
}

func (r *memoryUserRepository) FindByID(id string) (*authdomain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}
