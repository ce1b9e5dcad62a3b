package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"devtodo-backend/internal/claude/domain"
)

// Transcript lines embed tool output and can be far larger than bufio's default
const maxLineSize = 16 * 1024 * 1024

type transcriptRepository struct {
	dataPath string
}

// NewTranscriptRepository reads projects/<dir>/<session>.jsonl and
// history.jsonl below dataPath
func NewTranscriptRepository(dataPath string) TranscriptRepository {
	return &transcriptRepository{dataPath: dataPath}
}

type transcriptEntry struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Message   *struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (r *transcriptRepository) projectsPath() string {
	return filepath.Join(r.dataPath, "projects")
}

// projectDirs lists the project directories, skipping dot entries and files
func (r *transcriptRepository) projectDirs() ([]string, error) {
	entries, err := os.ReadDir(r.projectsPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProjectsUnavailable, err)
	}

	var dirs []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || !entry.IsDir() {
			continue
		}
		dirs = append(dirs, entry.Name())
	}
	return dirs, nil
}

func (r *transcriptRepository) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	dirs, err := r.projectDirs()
	if err != nil {
		return nil, err
	}

	var sessions []*domain.Session
	for _, dir := range dirs {
		files, err := os.ReadDir(filepath.Join(r.projectsPath(), dir))
		if err != nil {
			continue
		}
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".jsonl") {
				continue
			}
			session, err := r.readSession(dir, file.Name())
			if err != nil {
				continue
			}
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (r *transcriptRepository) FindSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) || strings.HasPrefix(sessionID, ".") {
		return nil, nil
	}

	dirs, err := r.projectDirs()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		session, err := r.readSession(dir, sessionID+".jsonl")
		if err != nil {
			continue
		}
		return session, nil
	}
	return nil, nil
}

func (r *transcriptRepository) ReadHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(filepath.Join(r.dataPath, "history.jsonl"))
	if err != nil {
		return []domain.HistoryEntry{}, err
	}

	var entries []domain.HistoryEntry
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		var entry domain.HistoryEntry
		if err := json.Unmarshal(line, &entry); err != nil || entry == nil {
			continue
		}
		entries = append(entries, entry)
	}

	out := make([]domain.HistoryEntry, 0, min(len(entries), limit))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (r *transcriptRepository) readSession(dir, file string) (*domain.Session, error) {
	path := filepath.Join(r.projectsPath(), dir, file)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	session := &domain.Session{
		SessionID: strings.TrimSuffix(file, ".jsonl"),
		Project:   ProjectName(dir),
		Path:      path,
		Messages:  []domain.Message{},
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry transcriptEntry
		if err := json.Unmarshal(line, &entry); err != nil || entry.Message == nil {
			continue
		}
		if msg, ok := parseMessage(entry); ok {
			session.Messages = append(session.Messages, msg)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return session, nil
}

// parseMessage keeps user entries with any non-empty content and assistant
// entries that carry text. Assistant block content is reduced to its text blocks
func parseMessage(entry transcriptEntry) (domain.Message, bool) {
	raw := bytes.TrimSpace(entry.Message.Content)
	if len(raw) == 0 || string(raw) == "null" {
		return domain.Message{}, false
	}

	// Timestamps that fail to parse stay zero and sort last
	ts, _ := time.Parse(time.RFC3339Nano, entry.Timestamp)

	var text string
	isString := json.Unmarshal(raw, &text) == nil

	switch entry.Type {
	case string(domain.RoleUser):
		if isString {
			if text == "" {
				return domain.Message{}, false
			}
			return domain.Message{Role: domain.RoleUser, Content: text, Timestamp: ts}, true
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return domain.Message{}, false
		}
		return domain.Message{Role: domain.RoleUser, Content: compact.String(), Timestamp: ts, Structured: true}, true

	case string(domain.RoleAssistant):
		if !isString {
			var blocks []contentBlock
			if err := json.Unmarshal(raw, &blocks); err != nil {
				return domain.Message{}, false
			}
			var parts []string
			for _, block := range blocks {
				if block.Type == "text" {
					parts = append(parts, block.Text)
				}
			}
			text = strings.Join(parts, "\n")
		}
		if text == "" {
			return domain.Message{}, false
		}
		return domain.Message{Role: domain.RoleAssistant, Content: text, Timestamp: ts}, true
	}

	return domain.Message{}, false
}

// ProjectName turns an encoded project directory ("-home-me-app") back into
// its path form ("home/me/app")
func ProjectName(dir string) string {
	return strings.ReplaceAll(strings.TrimPrefix(dir, "-"), "-", "/")
}
