package n8n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("N8N API key not configured")

const executionLimit = 50

// Client reads workflows and executions from the n8n public API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a new n8n client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// WorkflowStats aggregates the recent executions of one workflow
type WorkflowStats struct {
	WorkflowID   string  `json:"workflowId"`
	WorkflowName string  `json:"workflowName"`
	Total        int     `json:"total"`
	Success      int     `json:"success"`
	Error        int     `json:"error"`
	Running      int     `json:"running"`
	LastRun      *string `json:"lastRun"`
}

// ExecutionReport is the per-workflow summary plus the raw API payload
type ExecutionReport struct {
	Stats []WorkflowStats `json:"stats"`
	Raw   json.RawMessage `json:"raw"`
}

type execution struct {
	WorkflowID   string `json:"workflowId"`
	Status       string `json:"status"`
	StartedAt    string `json:"startedAt"`
	WorkflowData *struct {
		Name string `json:"name"`
	} `json:"workflowData"`
}

// Workflows returns the workflow list as n8n reports it
func (c *Client) Workflows(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/v1/workflows")
}

// Executions loads the latest executions and groups them by workflow
func (c *Client) Executions(ctx context.Context) (*ExecutionReport, error) {
	raw, err := c.get(ctx, fmt.Sprintf("/api/v1/executions?limit=%d", executionLimit))
	if err != nil {
		return nil, err
	}

	var page struct {
		Data []execution `json:"data"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to parse executions: %w", err)
	}

	return &ExecutionReport{Stats: summarize(page.Data), Raw: raw}, nil
}

// summarize keeps workflows in first-seen order
func summarize(executions []execution) []WorkflowStats {
	index := make(map[string]int)
	latest := make(map[string]time.Time)
	stats := make([]WorkflowStats, 0)

	for _, exec := range executions {
		i, ok := index[exec.WorkflowID]
		if !ok {
			name := "Unknown"
			if exec.WorkflowData != nil && exec.WorkflowData.Name != "" {
				name = exec.WorkflowData.Name
			}
			i = len(stats)
			index[exec.WorkflowID] = i
			stats = append(stats, WorkflowStats{WorkflowID: exec.WorkflowID, WorkflowName: name})
		}

		s := &stats[i]
		s.Total++
		switch exec.Status {
		case "success":
			s.Success++
		case "error":
			s.Error++
		case "running":
			s.Running++
		}

		started, err := time.Parse(time.RFC3339Nano, exec.StartedAt)
		if err != nil {
			continue
		}
		if s.LastRun == nil || started.After(latest[exec.WorkflowID]) {
			startedAt := exec.StartedAt
			s.LastRun = &startedAt
			latest[exec.WorkflowID] = started
		}
	}

	return stats
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-N8N-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("n8n request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("n8n API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("n8n returned invalid JSON")
	}
	return body, nil
}
