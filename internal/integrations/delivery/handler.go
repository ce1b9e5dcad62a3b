package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"devtodo-backend/pkg/calendar"
	"devtodo-backend/pkg/gmail"
	"devtodo-backend/pkg/googleauth"
	"devtodo-backend/pkg/n8n"

	"github.com/gin-gonic/gin"
)

// GoogleAuth runs the OAuth consent flow
type GoogleAuth interface {
	AuthURL() (string, error)
	Exchange(ctx context.Context, state, code string) error
}

// EmailSource produces action emails
type EmailSource interface {
	ActionEmails(ctx context.Context) ([]gmail.ActionEmail, error)
}

// EventSource produces upcoming calendar events
type EventSource interface {
	UpcomingEvents(ctx context.Context) ([]calendar.Event, error)
}

// WorkflowSource reads n8n workflows and executions
type WorkflowSource interface {
	Workflows(ctx context.Context) (json.RawMessage, error)
	Executions(ctx context.Context) (*n8n.ExecutionReport, error)
}

// IntegrationsHandler serves the Google, Gmail, Calendar and n8n endpoints
type IntegrationsHandler struct {
	google    GoogleAuth
	emails    EmailSource
	events    EventSource
	workflows WorkflowSource
}

// NewIntegrationsHandler creates a new IntegrationsHandler
func NewIntegrationsHandler(google GoogleAuth, emails EmailSource, events EventSource, workflows WorkflowSource) *IntegrationsHandler {
	return &IntegrationsHandler{
		google:    google,
		emails:    emails,
		events:    events,
		workflows: workflows,
	}
}

// RegisterPublicRoutes mounts the OAuth callback, which Google calls without a bearer token
func (h *IntegrationsHandler) RegisterPublicRoutes(group *gin.RouterGroup) {
	group.GET("/auth/google/callback", h.GoogleCallback)
}

// RegisterRoutes mounts the protected integration endpoints
func (h *IntegrationsHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/google/auth", h.GoogleAuthURL)
	group.GET("/gmail/auth", h.GoogleAuthURL)
	group.GET("/calendar/auth", h.GoogleAuthURL)
	group.GET("/calendar/events", h.CalendarEvents)
	group.GET("/gmail/actions", h.GmailActions)
	group.GET("/n8n/workflows", h.N8NWorkflows)
	group.GET("/n8n/executions", h.N8NExecutions)
}

// GET /api/google/auth
func (h *IntegrationsHandler) GoogleAuthURL(c *gin.Context) {
	url, err := h.google.AuthURL()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google OAuth not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authUrl": url})
}

// GoogleCallback stores the token and sends the browser back to the dashboard
// GET /api/auth/google/callback?code=...&state=...
func (h *IntegrationsHandler) GoogleCallback(c *gin.Context) {
	if err := h.google.Exchange(c.Request.Context(), c.Query("state"), c.Query("code")); err != nil {
		log.Printf("[Google] OAuth callback failed: %v", err)
		c.Redirect(http.StatusFound, "/?auth=google-error")
		return
	}

	log.Printf("[Google] Account connected")
	c.Redirect(http.StatusFound, "/?auth=google-success")
}

// GET /api/calendar/events
func (h *IntegrationsHandler) CalendarEvents(c *gin.Context) {
	events, err := h.events.UpcomingEvents(c.Request.Context())
	if err != nil {
		writeGoogleError(c, "Calendar", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GET /api/gmail/actions
func (h *IntegrationsHandler) GmailActions(c *gin.Context) {
	emails, err := h.emails.ActionEmails(c.Request.Context())
	if err != nil {
		writeGoogleError(c, "Gmail", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"emails": emails})
}

// GET /api/n8n/workflows
func (h *IntegrationsHandler) N8NWorkflows(c *gin.Context) {
	workflows, err := h.workflows.Workflows(c.Request.Context())
	if err != nil {
		writeN8NError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", workflows)
}

// GET /api/n8n/executions
func (h *IntegrationsHandler) N8NExecutions(c *gin.Context) {
	report, err := h.workflows.Executions(c.Request.Context())
	if err != nil {
		writeN8NError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func writeGoogleError(c *gin.Context, service string, err error) {
	switch {
	case errors.Is(err, googleauth.ErrNotConfigured), errors.Is(err, googleauth.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": service + " not authenticated", "needsAuth": true})
	case googleauth.IsAuthError(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired", "needsAuth": true})
	default:
		log.Printf("[%s] Request failed: %v", service, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func writeN8NError(c *gin.Context, err error) {
	if errors.Is(err, n8n.ErrNotConfigured) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[N8N] Request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
