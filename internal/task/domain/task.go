package domain

import "time"

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Source identifies where a task came from. It never changes after creation.
type Source string

const (
	SourceManual   Source = "manual"
	SourceDocker   Source = "docker"
	SourceClaude   Source = "claude"
	SourceCalendar Source = "calendar"
	SourceGmail    Source = "gmail"
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceDocker, SourceClaude, SourceCalendar, SourceGmail:
		return true
	}
	return false
}

// CompletedByGit marks tasks completed by the commit matcher.
const CompletedByGit = "git"

// Task is a to-do item shown on the dashboard.
//
// When AutoCompleted is true, CompletedBy and the git provenance fields are
// set; they are written only by the commit matcher.
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Completed   bool       `json:"completed" gorm:"not null;default:false;index"`
	CompletedAt *time.Time `json:"completedAt"`
	Priority    Priority   `json:"priority" gorm:"not null;default:medium"`
	Source      Source     `json:"source" gorm:"not null;default:manual;index"`
	CreatedAt   time.Time  `json:"createdAt"`
	DueDate     *time.Time `json:"dueDate"`
	Notes       *string    `json:"notes"`

	// Foreign keys into external systems, fixed at creation
	DockerContainerID *string `json:"dockerContainerId"`
	CalendarEventID   *string `json:"calendarEventId"`
	EmailID           *string `json:"emailId"`

	// Auto-completion provenance
	AutoCompleted    bool    `json:"autoCompleted" gorm:"not null;default:false"`
	CompletedBy      *string `json:"completedBy"`
	GitCommitHash    *string `json:"gitCommitHash"`
	GitCommitRepo    *string `json:"gitCommitRepo"`
	GitCommitBranch  *string `json:"gitCommitBranch"`
	GitCommitMessage *string `json:"gitCommitMessage"`
	GitCommitAuthor  *string `json:"gitCommitAuthor"`
}

// TableName specifies the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// Updatable columns. Update maps keyed by anything else are ignored.
const (
	FieldTitle            = "title"
	FieldCompleted        = "completed"
	FieldCompletedAt      = "completed_at"
	FieldPriority         = "priority"
	FieldDueDate          = "due_date"
	FieldNotes            = "notes"
	FieldAutoCompleted    = "auto_completed"
	FieldCompletedBy      = "completed_by"
	FieldGitCommitHash    = "git_commit_hash"
	FieldGitCommitRepo    = "git_commit_repo"
	FieldGitCommitBranch  = "git_commit_branch"
	FieldGitCommitMessage = "git_commit_message"
	FieldGitCommitAuthor  = "git_commit_author"
)

// UpdatableFields lists the columns a partial update may touch.
var UpdatableFields = map[string]bool{
	FieldTitle:            true,
	FieldCompleted:        true,
	FieldCompletedAt:      true,
	FieldPriority:         true,
	FieldDueDate:          true,
	FieldNotes:            true,
	FieldAutoCompleted:    true,
	FieldCompletedBy:      true,
	FieldGitCommitHash:    true,
	FieldGitCommitRepo:    true,
	FieldGitCommitBranch:  true,
	FieldGitCommitMessage: true,
	FieldGitCommitAuthor:  true,
}

// TaskFilter narrows a task listing. Nil fields match everything.
type TaskFilter struct {
	Completed *bool
	Source    *Source
}

// GitRepo tracks a repository that has reported commits.
type GitRepo struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;uniqueIndex"`
	FirstSeenAt  time.Time `json:"firstSeenAt" gorm:"not null"`
	LastCommitAt time.Time `json:"lastCommitAt" gorm:"not null"`
}

// TableName specifies the table name for GORM
func (GitRepo) TableName() string {
	return "git_repos"
}
