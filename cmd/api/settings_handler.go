package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"
)

// RuntimeSettings holds the Ollama endpoint the classifier uses. It can be
// changed through the settings API without a restart.
type RuntimeSettings struct {
	mu      sync.RWMutex
	baseURL string
	model   string
}

// NewRuntimeSettings seeds the settings from static config
func NewRuntimeSettings(ollamaBaseURL, ollamaModel string) *RuntimeSettings {
	return &RuntimeSettings{baseURL: ollamaBaseURL, model: ollamaModel}
}

// OllamaBaseURL is read by the Ollama backend on every request
func (s *RuntimeSettings) OllamaBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL
}

func (s *RuntimeSettings) OllamaModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Update replaces the base URL and, when non-empty, the model
func (s *RuntimeSettings) Update(baseURL, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = baseURL
	if model != "" {
		s.model = model
	}
}

// OllamaSettings is the wire form of the runtime settings
type OllamaSettings struct {
	OllamaBaseURL string `json:"ollama_base_url" binding:"required"`
	OllamaModel   string `json:"ollama_model,omitempty"`
}

// OllamaPinger checks that an Ollama server answers
type OllamaPinger interface {
	Ping(ctx context.Context, baseURL string) (int, error)
}

// SettingsHandler serves the runtime AI settings
type SettingsHandler struct {
	settings *RuntimeSettings
	pinger   OllamaPinger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *RuntimeSettings, pinger OllamaPinger) *SettingsHandler {
	return &SettingsHandler{settings: settings, pinger: pinger}
}

// RegisterRoutes mounts the settings endpoints on the given group
func (h *SettingsHandler) RegisterRoutes(group *gin.RouterGroup) {
	settings := group.Group("/settings")
	settings.GET("/ollama", h.GetOllamaSettings)
	settings.PUT("/ollama", h.UpdateOllamaSettings)
	settings.POST("/ollama/test", h.TestOllamaConnection)
}

// GET /api/settings/ollama
func (h *SettingsHandler) GetOllamaSettings(c *gin.Context) {
	c.JSON(http.StatusOK, OllamaSettings{
		OllamaBaseURL: h.settings.OllamaBaseURL(),
		OllamaModel:   h.settings.OllamaModel(),
	})
}

// UpdateOllamaSettings repoints the classifier's Ollama backend
// PUT /api/settings/ollama
func (h *SettingsHandler) UpdateOllamaSettings(c *gin.Context) {
	var req OllamaSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if u, err := url.Parse(req.OllamaBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ollama_base_url must be an http(s) URL"})
		return
	}

	h.settings.Update(req.OllamaBaseURL, req.OllamaModel)

	c.JSON(http.StatusOK, gin.H{
		"message":         "Ollama settings updated successfully",
		"ollama_base_url": h.settings.OllamaBaseURL(),
		"ollama_model":    h.settings.OllamaModel(),
	})
}

// TestOllamaConnection pings a candidate URL, or the current one when the
// body is empty
// POST /api/settings/ollama/test
func (h *SettingsHandler) TestOllamaConnection(c *gin.Context) {
	var req struct {
		OllamaBaseURL string `json:"ollama_base_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target := req.OllamaBaseURL
	if target == "" {
		target = h.settings.OllamaBaseURL()
	}

	status, err := h.pinger.Ping(c.Request.Context(), target)
	switch {
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"connected": false, "error": err.Error()})
	case status != http.StatusOK:
		c.JSON(http.StatusServiceUnavailable, gin.H{"connected": false, "status_code": status})
	default:
		c.JSON(http.StatusOK, gin.H{"connected": true, "ollama_base_url": target})
	}
}
