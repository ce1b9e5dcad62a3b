package repository

import (
	"devtodo-backend/internal/task/domain"
	"time"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task, assigning its ID and CreatedAt
	Create(task *domain.Task) error

	// FindByID finds a task by its ID. Returns nil, nil when it does not exist
	FindByID(id string) (*domain.Task, error)

	// List returns tasks matching the filter, newest first
	List(filter domain.TaskFilter) ([]*domain.Task, error)

	// FindPending returns all tasks with completed = false
	FindPending() ([]*domain.Task, error)

	// Update applies a partial update keyed by column name. Unknown columns are
	// ignored and an empty update returns the task unchanged. Returns nil, nil
	// when the task does not exist
	Update(id string, fields map[string]interface{}) (*domain.Task, error)

	// CompleteIfPending applies fields only while the task is still pending.
	// It reports whether this call performed the transition
	CompleteIfPending(id string, fields map[string]interface{}) (bool, error)

	// Delete deletes a task by ID and reports whether it existed
	Delete(id string) (bool, error)
}

// GitRepoRepository defines the interface for git repo tracking
type GitRepoRepository interface {
	// Upsert records a commit for the named repo. LastCommitAt never moves backwards
	Upsert(name string, at time.Time) (*domain.GitRepo, error)

	// List returns repos ordered by last commit, most recent first
	List() ([]*domain.GitRepo, error)

	// DeleteByName removes a repo and reports whether it existed
	DeleteByName(name string) (bool, error)
}

// filterFields drops columns that may not be updated
func filterFields(fields map[string]interface{}) map[string]interface{} {
	allowed := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		if domain.UpdatableFields[key] {
			allowed[key] = value
		}
	}
	return allowed
}
