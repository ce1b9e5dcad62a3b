package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"devtodo-backend/internal/claude/domain"
)

func TestRecentConversations(t *testing.T) {
	var sessions []*domain.Session
	for i := 0; i < 12; i++ {
		sessions = append(sessions, newSession(fmt.Sprintf("s%02d", i), "app", userMsg("hello", at(i))))
	}

	long := newSession("long", "app")
	for i := 0; i < 25; i++ {
		long.Messages = append(long.Messages, userMsg(fmt.Sprintf("msg %d", i), at(100+i)))
	}
	long.Messages = append(long.Messages, assistantMsg(strings.Repeat("x", 600), at(200)))
	sessions = append(sessions, long, newSession("empty", "app"))

	u := NewConversationUsecase(staticSessions(sessions...))
	got, err := u.Recent(context.Background())
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 conversations, got %d", len(got))
	}

	first := got[0]
	if first.SessionID != "long" || len(first.Messages) != 20 || !first.LastActivity.Equal(at(200)) {
		t.Fatalf("unexpected first conversation %s with %d messages", first.SessionID, len(first.Messages))
	}
	preview := first.Messages[19].Content
	if len(preview) != 503 || !strings.HasSuffix(preview, "...") {
		t.Errorf("expected 500 char preview with ellipsis, got %d chars", len(preview))
	}
	if long.Messages[25].Content != strings.Repeat("x", 600) {
		t.Error("Recent must not modify the stored session")
	}
	if got[1].SessionID != "s11" {
		t.Errorf("expected s11 second, got %s", got[1].SessionID)
	}
}

func TestConversationDetailAndHistory(t *testing.T) {
	repo := &MockTranscriptRepository{
		FindSessionFunc: func(ctx context.Context, id string) (*domain.Session, error) {
			if id == "s1" {
				return newSession("s1", "app", userMsg("hi", at(0))), nil
			}
			return nil, nil
		},
		ReadHistoryFunc: func(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
			if limit != 100 {
				t.Errorf("expected limit 100, got %d", limit)
			}
			return []domain.HistoryEntry{{"display": "/help"}}, nil
		},
	}
	u := NewConversationUsecase(repo)

	if s, err := u.Detail(context.Background(), "s1"); err != nil || s == nil {
		t.Errorf("expected session, got %v, %v", s, err)
	}
	if s, err := u.Detail(context.Background(), "nope"); err != nil || s != nil {
		t.Errorf("expected nil, nil, got %v, %v", s, err)
	}
	if h, err := u.History(context.Background()); err != nil || len(h) != 1 {
		t.Errorf("unexpected history %v, %v", h, err)
	}
}
