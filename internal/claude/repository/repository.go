package repository

import (
	"context"
	"errors"

	"devtodo-backend/internal/claude/domain"
)

// ErrProjectsUnavailable is returned when the transcripts root cannot be read
var ErrProjectsUnavailable = errors.New("claude projects not accessible")

// TranscriptRepository reads assistant conversation transcripts
type TranscriptRepository interface {
	// ListSessions returns every session of every project. Unreadable files
	// and malformed lines are skipped
	ListSessions(ctx context.Context) ([]*domain.Session, error)

	// FindSession returns the session with the given id, or nil, nil
	FindSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// ReadHistory returns up to limit history entries, most recent first.
	// A missing history file yields an empty list and os.ErrNotExist
	ReadHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

// DocumentRepository holds the extracted-task document
type DocumentRepository interface {
	// Load returns the current document. A missing document is empty, not an error
	Load(ctx context.Context) (*domain.Document, error)

	// Update runs fn on the current document and atomically replaces it
	// with the result. No write happens when fn returns an error
	Update(ctx context.Context, fn func(doc *domain.Document) error) error
}

// TodoRepository reads the assistant's per-session todo lists
type TodoRepository interface {
	// ListTodoFiles returns every parseable todo file. A missing directory
	// yields os.ErrNotExist
	ListTodoFiles(ctx context.Context) ([]domain.TodoFile, error)
}
