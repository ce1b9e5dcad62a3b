package usecase

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"

	"devtodo-backend/internal/claude/domain"
	"devtodo-backend/internal/claude/repository"
)

const (
	recentConversations    = 10
	recentConversationTail = 20
	assistantPreviewLength = 500
	historyLimit           = 100
)

// ConversationSummary is the tail of a session for the dashboard feed
type ConversationSummary struct {
	Project      string           `json:"project"`
	SessionID    string           `json:"sessionId"`
	Messages     []domain.Message `json:"messages"`
	LastActivity time.Time        `json:"lastActivity"`
}

type conversationUsecase struct {
	transcripts repository.TranscriptRepository
}

// NewConversationUsecase creates the transcript browsing usecase
func NewConversationUsecase(transcripts repository.TranscriptRepository) ConversationUsecase {
	return &conversationUsecase{transcripts: transcripts}
}

// Recent returns the most recently active sessions with their last messages.
// Assistant text is shortened to a preview
func (u *conversationUsecase) Recent(ctx context.Context) ([]ConversationSummary, error) {
	sessions, err := u.transcripts.ListSessions(ctx)
	if err != nil {
		return []ConversationSummary{}, err
	}

	summaries := []ConversationSummary{}
	for _, session := range sessions {
		if len(session.Messages) == 0 {
			continue
		}

		tail := session.Messages
		if len(tail) > recentConversationTail {
			tail = tail[len(tail)-recentConversationTail:]
		}
		messages := make([]domain.Message, len(tail))
		for i, msg := range tail {
			if msg.Role == domain.RoleAssistant && utf8.RuneCountInString(msg.Content) > assistantPreviewLength {
				msg.Content = truncate(msg.Content, assistantPreviewLength) + "..."
			}
			messages[i] = msg
		}

		summaries = append(summaries, ConversationSummary{
			Project:      session.Project,
			SessionID:    session.SessionID,
			Messages:     messages,
			LastActivity: session.Messages[len(session.Messages)-1].Timestamp,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	if len(summaries) > recentConversations {
		summaries = summaries[:recentConversations]
	}
	return summaries, nil
}

// Detail returns the full session, or nil, nil when no project has it
func (u *conversationUsecase) Detail(ctx context.Context, sessionID string) (*domain.Session, error) {
	return u.transcripts.FindSession(ctx, sessionID)
}

func (u *conversationUsecase) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	return u.transcripts.ReadHistory(ctx, historyLimit)
}
