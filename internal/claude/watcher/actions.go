package watcher

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	minActionLength = 10
	maxActionLength = 200

	scanFileLimit   = 20
	scanActionLimit = 50
	scanMaxAge      = 7 * 24 * time.Hour
)

// actionPatterns capture the action phrase in group 1
var actionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)TODO:?\s*(.+)`),
	regexp.MustCompile(`(?i)ACTION:?\s*(.+)`),
	regexp.MustCompile(`(?i)NEXT STEP:?\s*(.+)`),
	regexp.MustCompile(`\[ \]\s*(.+)`),
	regexp.MustCompile(`- \[ \]\s*(.+)`),
	regexp.MustCompile(`(?i)(?:I'll|I will|We should|You should|Let's)\s+(.+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)(?:need to|should|must)\s+(.+?)(?:\.|$)`),
}

// Action is a to-do phrase found in a chat export
type Action struct {
	Text    string    `json:"text"`
	Source  string    `json:"source"`
	FoundAt time.Time `json:"foundAt"`
}

// PendingActionsBuffer collects actions found by the watcher until a reader drains them
type PendingActionsBuffer struct {
	mu      sync.Mutex
	actions []Action
}

func NewPendingActionsBuffer() *PendingActionsBuffer {
	return &PendingActionsBuffer{}
}

func (b *PendingActionsBuffer) Add(actions ...Action) {
	if len(actions) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actions = append(b.actions, actions...)
}

// Drain returns everything buffered so far and empties the buffer
func (b *PendingActionsBuffer) Drain() []Action {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.actions
	b.actions = nil
	if out == nil {
		out = []Action{}
	}
	return out
}

// ParseActions returns every action phrase in content, pattern by pattern
func ParseActions(content, source string, now time.Time) []Action {
	var actions []Action
	for _, pattern := range actionPatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			text := strings.TrimSpace(match[1])
			n := utf8.RuneCountInString(text)
			if n <= minActionLength || n >= maxActionLength || strings.Contains(text, "\n") {
				continue
			}
			actions = append(actions, Action{Text: text, Source: source, FoundAt: now})
		}
	}
	return actions
}

func isChatFile(name string) bool {
	switch filepath.Ext(name) {
	case ".json", ".md", ".txt":
		return true
	}
	return false
}

// ScanDirectory parses recently modified chat files in dir once. Only the
// first files by name are considered and the result is unique by text.
func ScanDirectory(dir string, now time.Time) ([]Action, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []Action{}, err
	}

	var files []os.DirEntry
	for _, entry := range entries {
		if !entry.IsDir() && isChatFile(entry.Name()) {
			files = append(files, entry)
		}
	}
	if len(files) > scanFileLimit {
		files = files[:scanFileLimit]
	}

	seen := make(map[string]bool)
	actions := []Action{}
	for _, file := range files {
		info, err := file.Info()
		if err != nil || now.Sub(info.ModTime()) >= scanMaxAge {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			continue
		}
		for _, action := range ParseActions(string(data), file.Name(), now) {
			if seen[action.Text] {
				continue
			}
			seen[action.Text] = true
			actions = append(actions, action)
		}
	}

	if len(actions) > scanActionLimit {
		actions = actions[:scanActionLimit]
	}
	return actions, nil
}
