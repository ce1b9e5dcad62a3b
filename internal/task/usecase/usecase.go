package usecase

import (
	"devtodo-backend/internal/task/domain"
	"errors"
)

var (
	// ErrTaskNotFound is returned when no task has the requested id
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidTask is returned when a create or update carries bad fields
	ErrInvalidTask = errors.New("invalid task")
)

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// CreateTask validates input and stores a new task
	CreateTask(input CreateTaskInput) (*domain.Task, error)

	// GetTaskByID retrieves a task by ID
	GetTaskByID(taskID string) (*domain.Task, error)

	// ListTasks retrieves tasks, newest first, applying the optional filters
	ListTasks(query TaskQuery) ([]*domain.Task, error)

	// UpdateTask updates an existing task
	UpdateTask(taskID string, updates TaskUpdateRequest) (*domain.Task, error)

	// DeleteTask deletes a task
	DeleteTask(taskID string) error
}

// CreateTaskInput carries the fields accepted when creating a task
type CreateTaskInput struct {
	Title             string  `json:"title"`
	Priority          string  `json:"priority"`
	Source            string  `json:"source"`
	DueDate           *string `json:"dueDate"`
	Notes             *string `json:"notes"`
	DockerContainerID *string `json:"dockerContainerId"`
	CalendarEventID   *string `json:"calendarEventId"`
	EmailID           *string `json:"emailId"`
}

// TaskQuery narrows ListTasks. Query is matched fuzzily against title and notes.
type TaskQuery struct {
	Completed *bool
	Source    *string
	Query     string
}

// TaskUpdateRequest represents the fields that can be updated.
// An empty DueDate or Notes clears the field.
type TaskUpdateRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Priority  *string `json:"priority,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}
