package usecase

import (
	"context"
	"errors"

	"devtodo-backend/internal/claude/domain"
	taskdomain "devtodo-backend/internal/task/domain"
	taskusecase "devtodo-backend/internal/task/usecase"
	"devtodo-backend/pkg/ai"
)

var (
	// ErrInvalidTaskID is returned for ids that are not claude-<12 hex>
	ErrInvalidTaskID = errors.New("invalid extracted task id")
	// ErrExtractedTaskNotFound is returned when an import needs a task that is no longer extracted
	ErrExtractedTaskNotFound = errors.New("extracted task not found")
	// ErrTranscriptsUnavailable aborts an extraction run before anything is written
	ErrTranscriptsUnavailable = errors.New("transcripts unavailable")
)

// Classifier turns a chat message into a structured task
type Classifier interface {
	Classify(ctx context.Context, promptID, input string) ai.ClassifyResult
}

// TaskCreator stores dashboard tasks for imported extracted tasks
type TaskCreator interface {
	CreateTask(input taskusecase.CreateTaskInput) (*taskdomain.Task, error)
}

// ExtractionUsecase rebuilds the extracted-task document
type ExtractionUsecase interface {
	// Extract runs one extraction synchronously
	Extract(ctx context.Context) error

	// Trigger starts an extraction in the background and returns immediately
	Trigger()

	// Document returns the current extracted tasks and their state
	Document(ctx context.Context) (*domain.Document, error)
}

// StateUsecase records dismiss/import decisions for extracted tasks
type StateUsecase interface {
	Dismiss(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error

	// MarkImported links id to a dashboard task. With an empty linkedTaskID a
	// task is created from the extracted task first. Returns the linked id
	MarkImported(ctx context.Context, id, linkedTaskID string) (string, error)

	ListDismissed(ctx context.Context) ([]DismissedTask, error)
}

// TodoUsecase relates the assistant's own todo lists to extracted tasks
type TodoUsecase interface {
	ListTodos(ctx context.Context) ([]TodoView, error)
	SyncStatus(ctx context.Context) (*SyncStatus, error)
}

// ConversationUsecase serves transcripts for display
type ConversationUsecase interface {
	Recent(ctx context.Context) ([]ConversationSummary, error)
	Detail(ctx context.Context, sessionID string) (*domain.Session, error)
	History(ctx context.Context) ([]domain.HistoryEntry, error)
}
