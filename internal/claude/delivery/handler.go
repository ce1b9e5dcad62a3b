package delivery

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"devtodo-backend/internal/claude/domain"
	"devtodo-backend/internal/claude/repository"
	"devtodo-backend/internal/claude/usecase"
	"devtodo-backend/internal/claude/watcher"

	"github.com/gin-gonic/gin"
)

// ClaudeHandler serves extracted tasks, transcripts and chat actions
type ClaudeHandler struct {
	extraction    usecase.ExtractionUsecase
	state         usecase.StateUsecase
	todos         usecase.TodoUsecase
	conversations usecase.ConversationUsecase
	chatWatcher   *watcher.ChatWatcher
	pending       *watcher.PendingActionsBuffer
	chatsPath     string
}

// NewClaudeHandler creates a new ClaudeHandler. chatsPath is the default
// directory for the watch and actions endpoints
func NewClaudeHandler(
	extraction usecase.ExtractionUsecase,
	state usecase.StateUsecase,
	todos usecase.TodoUsecase,
	conversations usecase.ConversationUsecase,
	chatWatcher *watcher.ChatWatcher,
	pending *watcher.PendingActionsBuffer,
	chatsPath string,
) *ClaudeHandler {
	return &ClaudeHandler{
		extraction:    extraction,
		state:         state,
		todos:         todos,
		conversations: conversations,
		chatWatcher:   chatWatcher,
		pending:       pending,
		chatsPath:     chatsPath,
	}
}

// RegisterRoutes mounts the claude endpoints on the given group
func (h *ClaudeHandler) RegisterRoutes(group *gin.RouterGroup) {
	claude := group.Group("/claude")
	claude.GET("/extracted-tasks", h.GetExtractedTasks)
	claude.POST("/extract-tasks", h.ExtractTasks)
	claude.GET("/tasks/dismissed", h.GetDismissed)
	claude.POST("/tasks/:id/dismiss", h.Dismiss)
	claude.POST("/tasks/:id/restore", h.Restore)
	claude.POST("/tasks/:id/import", h.Import)
	claude.GET("/conversations", h.GetConversations)
	claude.GET("/conversation/:sessionId", h.GetConversation)
	claude.GET("/todos", h.GetTodos)
	claude.GET("/sync-status", h.GetSyncStatus)
	claude.GET("/history", h.GetHistory)
	claude.POST("/watch", h.Watch)
	claude.GET("/pending", h.GetPending)
	claude.GET("/actions", h.GetActions)
}

// GetExtractedTasks returns the extracted task document. An unreadable
// document is reported as empty
// GET /api/claude/extracted-tasks
func (h *ClaudeHandler) GetExtractedTasks(c *gin.Context) {
	doc, err := h.extraction.Document(c.Request.Context())
	if err != nil {
		log.Printf("[Extractor] Error reading extracted tasks: %v", err)
		doc = domain.NewDocument()
	}

	c.JSON(http.StatusOK, doc)
}

// ExtractTasks starts an extraction run and returns immediately
// POST /api/claude/extract-tasks
func (h *ClaudeHandler) ExtractTasks(c *gin.Context) {
	h.extraction.Trigger()
	c.JSON(http.StatusOK, gin.H{"message": "Task extraction started"})
}

// POST /api/claude/tasks/:id/dismiss
func (h *ClaudeHandler) Dismiss(c *gin.Context) {
	id := c.Param("id")
	if err := h.state.Dismiss(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// POST /api/claude/tasks/:id/restore
func (h *ClaudeHandler) Restore(c *gin.Context) {
	id := c.Param("id")
	if err := h.state.Restore(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// ImportRequest optionally links an existing task
type ImportRequest struct {
	LinkedTaskID string `json:"linkedTaskId"`
}

// Import marks an extracted task imported, creating a dashboard task when
// no linkedTaskId is given
// POST /api/claude/tasks/:id/import
func (h *ClaudeHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	linked, err := h.state.MarkImported(c.Request.Context(), id, req.LinkedTaskID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id, "linkedTaskId": linked})
}

// GET /api/claude/tasks/dismissed
func (h *ClaudeHandler) GetDismissed(c *gin.Context) {
	dismissed, err := h.state.ListDismissed(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dismissed": dismissed})
}

// GetConversations returns the most recently active sessions
// GET /api/claude/conversations
func (h *ClaudeHandler) GetConversations(c *gin.Context) {
	conversations, err := h.conversations.Recent(c.Request.Context())
	if errors.Is(err, repository.ErrProjectsUnavailable) {
		c.JSON(http.StatusOK, gin.H{"conversations": []usecase.ConversationSummary{}, "message": "Claude projects not accessible"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetConversation returns a full transcript
// GET /api/claude/conversation/:sessionId
func (h *ClaudeHandler) GetConversation(c *gin.Context) {
	session, err := h.conversations.Detail(c.Request.Context(), c.Param("sessionId"))
	if err != nil && !errors.Is(err, repository.ErrProjectsUnavailable) {
		writeError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// GET /api/claude/todos
func (h *ClaudeHandler) GetTodos(c *gin.Context) {
	todos, err := h.todos.ListTodos(c.Request.Context())
	if errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusOK, gin.H{"todos": todos, "message": "Claude todos path not accessible"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"todos": todos})
}

// GET /api/claude/sync-status
func (h *ClaudeHandler) GetSyncStatus(c *gin.Context) {
	status, err := h.todos.SyncStatus(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GET /api/claude/history
func (h *ClaudeHandler) GetHistory(c *gin.Context) {
	history, err := h.conversations.History(c.Request.Context())
	if errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusOK, gin.H{"history": []domain.HistoryEntry{}, "message": "Claude history not accessible"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// WatchRequest selects the directory to watch
type WatchRequest struct {
	Path string `json:"path"`
}

// Watch replaces the chat watcher's directory
// POST /api/claude/watch
func (h *ClaudeHandler) Watch(c *gin.Context) {
	var req WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	path := req.Path
	if path == "" {
		path = h.chatsPath
	}

	if err := h.chatWatcher.Watch(path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"watching": path})
}

// GetPending drains the actions collected by the watcher
// GET /api/claude/pending
func (h *ClaudeHandler) GetPending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": h.pending.Drain()})
}

// GetActions scans a chats directory once
// GET /api/claude/actions?path=/some/dir
func (h *ClaudeHandler) GetActions(c *gin.Context) {
	path := c.DefaultQuery("path", h.chatsPath)

	actions, err := watcher.ScanDirectory(path, time.Now())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"actions": actions, "message": "Chat path not accessible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidTaskID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrExtractedTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Extracted task not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
