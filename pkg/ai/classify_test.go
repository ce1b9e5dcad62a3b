package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// MockCompleter implements Completer for testing
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, req CompletionRequest) (string, error)
	calls        []CompletionRequest
}

func (m *MockCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.calls = append(m.calls, req)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

func TestClassifyOK(t *testing.T) {
	mock := &MockCompleter{CompleteFunc: func(ctx context.Context, req CompletionRequest) (string, error) {
		return "```json\n{\"title\":\" Add dark mode toggle \",\"description\":\"d\",\"context\":\"ui.tsx\",\"category\":\"feature\",\"topic\":\"UI Components\"}\n```", nil
	}}
	c := NewTaskClassifier(mock, time.Second)

	result := c.Classify(context.Background(), PromptTaskExtraction, "please add a dark mode toggle")
	if result.Kind != ResultOK {
		t.Fatalf("expected ResultOK, got %s (%v)", result.Kind, result.Err)
	}
	if result.Classification.Title != "Add dark mode toggle" || result.Classification.Topic != "UI Components" {
		t.Errorf("unexpected classification: %+v", result.Classification)
	}

	req := mock.calls[0]
	if req.Temperature != 0.2 || req.MaxTokens != 350 || !strings.Contains(req.System, "actionable development tasks") {
		t.Errorf("unexpected request settings: %+v", req)
	}
}

func TestClassifyTruncatesInput(t *testing.T) {
	mock := &MockCompleter{CompleteFunc: func(ctx context.Context, req CompletionRequest) (string, error) {
		return `{"title":"x"}`, nil
	}}
	c := NewTaskClassifier(mock, 0)

	c.Classify(context.Background(), PromptTaskExtraction, strings.Repeat("é", 2000))
	if n := utf8.RuneCountInString(mock.calls[0].Prompt); n != 1500 {
		t.Errorf("expected input cut to 1500 runes, got %d", n)
	}
}

func TestClassifyFailures(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     ResultKind
	}{
		{"prose only", "no task here", nil, ResultParseFailure},
		{"missing title", `{"description":"x"}`, nil, ResultParseFailure},
		{"title not a string", `{"title": 7}`, nil, ResultParseFailure},
		{"request error", "", errors.New("dial tcp: connection refused"), ResultRequestFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockCompleter{CompleteFunc: func(ctx context.Context, req CompletionRequest) (string, error) {
				return tt.response, tt.err
			}}
			result := NewTaskClassifier(mock, time.Second).Classify(context.Background(), PromptTaskExtraction, "fix it")
			if result.Kind != tt.want {
				t.Errorf("expected %s, got %s", tt.want, result.Kind)
			}
		})
	}
}

func TestClassifyTimeoutIsRequestFailure(t *testing.T) {
	mock := &MockCompleter{CompleteFunc: func(ctx context.Context, req CompletionRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	c := NewTaskClassifier(mock, 20*time.Millisecond)

	start := time.Now()
	result := c.Classify(context.Background(), PromptTaskExtraction, "fix it")
	if result.Kind != ResultRequestFailure || !errors.Is(result.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline request failure, got %s (%v)", result.Kind, result.Err)
	}
	if time.Since(start) > time.Second {
		t.Error("classification was not bounded by its timeout")
	}
}

func TestClassifyUnknownPrompt(t *testing.T) {
	result := NewTaskClassifier(&MockCompleter{}, 0).Classify(context.Background(), "nope", "x")
	if result.Kind != ResultRequestFailure {
		t.Errorf("expected request failure, got %s", result.Kind)
	}
}
