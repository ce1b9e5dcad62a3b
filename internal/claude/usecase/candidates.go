package usecase

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"devtodo-backend/internal/claude/domain"
)

// Candidate selection and identity rules. The numbers are tuned against real
// transcripts; changing the id prefix length re-keys every stored TaskState.
const (
	minCandidateLength = 20
	minChatTitleLength = 10
	chatTitleLength    = 100
	idPrefixLength     = 500
	idHexLength        = 12
	idNamespace        = "claude-"
)

var (
	actionablePattern = regexp.MustCompile(`(?i)(add|create|fix|update|remove|change|make|build|implement|configure|setup|can you|help|how|install|check|show|find|deploy|enable|write|refactor|improve|optimize)`)
	trivialPattern    = regexp.MustCompile(`(?i)^(yes|no|ok|ls|cd|pwd|y|n|\d+)$`)
	taskIDPattern     = regexp.MustCompile(`^claude-[0-9a-f]{12}$`)
)

// Predicate decides whether a user message asks for work
type Predicate func(message string) bool

// DefaultActionable looks for a request verb and rejects bare acknowledgements
// and shell fragments
func DefaultActionable(message string) bool {
	return actionablePattern.MatchString(message) && !trivialPattern.MatchString(strings.TrimSpace(message))
}

// GenerateTaskID derives the stable id of the task extracted from message in project
func GenerateTaskID(message, project string) string {
	sum := md5.Sum([]byte(truncate(message, idPrefixLength) + project))
	return idNamespace + hex.EncodeToString(sum[:])[:idHexLength]
}

// ValidTaskID reports whether id has the shape GenerateTaskID produces
func ValidTaskID(id string) bool {
	return taskIDPattern.MatchString(id)
}

type candidate struct {
	content      string
	project      string
	timestamp    time.Time
	sessionID    string
	messageIndex int
	chatTitle    *string
	path         string
}

// collectCandidates returns actionable user messages of all sessions, newest first.
// messageIndex counts every user entry of the session, including block content.
func collectCandidates(sessions []*domain.Session, actionable Predicate) []candidate {
	var out []candidate
	for _, session := range sessions {
		title := chatTitle(session)

		index := 0
		for _, msg := range session.Messages {
			if msg.Role != domain.RoleUser {
				continue
			}
			if !msg.Structured && utf8.RuneCountInString(msg.Content) > minCandidateLength && actionable(msg.Content) {
				out = append(out, candidate{
					content:      msg.Content,
					project:      session.Project,
					timestamp:    msg.Timestamp,
					sessionID:    session.SessionID,
					messageIndex: index,
					chatTitle:    title,
					path:         session.Path,
				})
			}
			index++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].timestamp.After(out[j].timestamp)
	})
	return out
}

// chatTitle is the first plain user message long enough to name the chat
func chatTitle(session *domain.Session) *string {
	for _, msg := range session.Messages {
		if msg.Role == domain.RoleUser && !msg.Structured && utf8.RuneCountInString(msg.Content) > minChatTitleLength {
			title := truncate(msg.Content, chatTitleLength)
			return &title
		}
	}
	return nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
