package usecase

import (
	"context"
	"sync"
	"time"

	"devtodo-backend/internal/claude/domain"
	taskdomain "devtodo-backend/internal/task/domain"
	taskusecase "devtodo-backend/internal/task/usecase"
	"devtodo-backend/pkg/ai"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

func userMsg(content string, ts time.Time) domain.Message {
	return domain.Message{Role: domain.RoleUser, Content: content, Timestamp: ts}
}

func assistantMsg(content string, ts time.Time) domain.Message {
	return domain.Message{Role: domain.RoleAssistant, Content: content, Timestamp: ts}
}

func newSession(id, project string, messages ...domain.Message) *domain.Session {
	return &domain.Session{
		SessionID: id,
		Project:   project,
		Path:      "/claude/projects/" + project + "/" + id + ".jsonl",
		Messages:  messages,
	}
}

// MockTranscriptRepository implements repository.TranscriptRepository for testing
type MockTranscriptRepository struct {
	ListSessionsFunc func(ctx context.Context) ([]*domain.Session, error)
	FindSessionFunc  func(ctx context.Context, sessionID string) (*domain.Session, error)
	ReadHistoryFunc  func(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

func (m *MockTranscriptRepository) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return nil, nil
}

func (m *MockTranscriptRepository) FindSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.FindSessionFunc != nil {
		return m.FindSessionFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *MockTranscriptRepository) ReadHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if m.ReadHistoryFunc != nil {
		return m.ReadHistoryFunc(ctx, limit)
	}
	return []domain.HistoryEntry{}, nil
}

func staticSessions(sessions ...*domain.Session) *MockTranscriptRepository {
	return &MockTranscriptRepository{ListSessionsFunc: func(ctx context.Context) ([]*domain.Session, error) {
		return sessions, nil
	}}
}

// MockClassifier implements Classifier for testing
type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, promptID, input string) ai.ClassifyResult

	mu    sync.Mutex
	calls []string
}

func (m *MockClassifier) Classify(ctx context.Context, promptID, input string) ai.ClassifyResult {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	m.mu.Unlock()
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, promptID, input)
	}
	return ai.ClassifyResult{Kind: ai.ResultParseFailure, Raw: "no json"}
}

func (m *MockClassifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// titledClassifier answers with a fixed title per input message
func titledClassifier(titles map[string]string) *MockClassifier {
	return &MockClassifier{ClassifyFunc: func(ctx context.Context, promptID, input string) ai.ClassifyResult {
		title, ok := titles[input]
		if !ok {
			return ai.ClassifyResult{Kind: ai.ResultParseFailure, Raw: "?"}
		}
		return ai.ClassifyResult{Kind: ai.ResultOK, Classification: ai.Classification{
			Title:    title,
			Category: "feature",
			Topic:    "UI Components",
		}}
	}}
}

// MockTaskCreator implements TaskCreator for testing
type MockTaskCreator struct {
	CreateTaskFunc func(input taskusecase.CreateTaskInput) (*taskdomain.Task, error)
	inputs         []taskusecase.CreateTaskInput
}

func (m *MockTaskCreator) CreateTask(input taskusecase.CreateTaskInput) (*taskdomain.Task, error) {
	m.inputs = append(m.inputs, input)
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(input)
	}
	return &taskdomain.Task{ID: "task-1", Title: input.Title}, nil
}
