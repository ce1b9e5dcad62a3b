package domain

import "time"

// Role of a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation transcript
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	// Structured is set when a user entry carried block content instead of
	// plain text. Content then holds the JSON encoding of the blocks.
	Structured bool `json:"-"`
}

// Session is one transcript file
type Session struct {
	SessionID string    `json:"sessionId"`
	Project   string    `json:"project"`
	Path      string    `json:"filePath"`
	Messages  []Message `json:"messages"`
}

// Category of an extracted task
type Category string

const (
	CategoryFeature  Category = "feature"
	CategoryBugfix   Category = "bugfix"
	CategoryRefactor Category = "refactor"
	CategoryConfig   Category = "config"
	CategoryDocs     Category = "docs"
	CategoryResearch Category = "research"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryFeature, CategoryBugfix, CategoryRefactor, CategoryConfig, CategoryDocs, CategoryResearch:
		return true
	}
	return false
}

// DefaultTopic is used when the classifier gives none
const DefaultTopic = "General"

// ExtractedTask is a task candidate derived from a chat message. The set is
// rebuilt on every extraction run; ID is stable for the same source message.
type ExtractedTask struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Context          string    `json:"context"`
	Category         Category  `json:"category"`
	Topic            string    `json:"topic"`
	OriginalMessage  string    `json:"originalMessage"`
	Project          string    `json:"project"`
	Timestamp        time.Time `json:"timestamp"`
	SessionID        string    `json:"sessionId"`
	MessageIndex     int       `json:"messageIndex"`
	ChatTitle        *string   `json:"chatTitle"`
	ConversationPath string    `json:"conversationPath"`
	SimilarCount     int       `json:"similarCount"`
	RelatedSessions  []string  `json:"relatedSessions"`
}

// TaskStatus is the lifecycle flag kept for an extracted task id
type TaskStatus string

const (
	StatusDismissed TaskStatus = "dismissed"
	StatusImported  TaskStatus = "imported"
)

// TaskState survives extraction runs, keyed by ExtractedTask.ID
type TaskState struct {
	Status       TaskStatus `json:"status"`
	DismissedAt  *time.Time `json:"dismissedAt,omitempty"`
	ImportedAt   *time.Time `json:"importedAt,omitempty"`
	LinkedTaskID string     `json:"linkedTaskId,omitempty"`
}

// Document is the persisted extraction output. Tasks and TaskState are
// always written together.
type Document struct {
	Tasks       []ExtractedTask      `json:"tasks"`
	TaskState   map[string]TaskState `json:"taskState"`
	LastUpdated *time.Time           `json:"lastUpdated"`
}

// NewDocument returns an empty document
func NewDocument() *Document {
	return &Document{
		Tasks:     []ExtractedTask{},
		TaskState: make(map[string]TaskState),
	}
}

// Todo is an entry of an assistant todo list file
type Todo struct {
	ID         string `json:"id,omitempty"`
	Content    string `json:"content"`
	Status     string `json:"status"`
	ActiveForm string `json:"activeForm,omitempty"`
	Priority   string `json:"priority,omitempty"`
}

// TodoFile is one todos/*.json file
type TodoFile struct {
	File      string
	SessionID string
	ModTime   time.Time
	Todos     []Todo
}

// HistoryEntry is a line of the assistant command history; its shape is not fixed
type HistoryEntry map[string]interface{}
