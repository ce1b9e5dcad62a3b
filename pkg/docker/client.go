package docker

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidAction is returned for container actions outside ValidActions
var ErrInvalidAction = errors.New("invalid action")

// ValidActions are the lifecycle operations a client may perform
var ValidActions = []string{"start", "stop", "restart", "pause", "unpause"}

// IsValidAction reports whether action is one of ValidActions
func IsValidAction(action string) bool {
	for _, valid := range ValidActions {
		if action == valid {
			return true
		}
	}
	return false
}

// Client talks to the Docker Engine API over a unix socket or TCP
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client. host ("tcp://h:2375" or "http://h:2375") wins
// over socket when both are set
func NewClient(socket, host string) *Client {
	if host != "" {
		baseURL := strings.TrimRight(host, "/")
		if strings.HasPrefix(baseURL, "tcp://") {
			baseURL = "http://" + strings.TrimPrefix(baseURL, "tcp://")
		}
		return &Client{
			baseURL: baseURL,
			client:  &http.Client{Timeout: 30 * time.Second},
		}
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var dialer net.Dialer
			return dialer.DialContext(ctx, "unix", socket)
		},
	}
	return &Client{
		baseURL: "http://docker",
		client:  &http.Client{Transport: transport, Timeout: 30 * time.Second},
	}
}

// Port is a published container port
type Port struct {
	IP          string `json:"IP,omitempty"`
	PrivatePort int    `json:"PrivatePort"`
	PublicPort  int    `json:"PublicPort,omitempty"`
	Type        string `json:"Type"`
}

// Container is one entry of the container list
type Container struct {
	ID      string   `json:"Id"`
	Names   []string `json:"Names"`
	Image   string   `json:"Image"`
	State   string   `json:"State"`
	Status  string   `json:"Status"`
	Created int64    `json:"Created"`
	Ports   []Port   `json:"Ports"`
}

// Name returns the primary container name without the leading slash
func (c Container) Name() string {
	if len(c.Names) == 0 {
		return ""
	}
	return strings.TrimPrefix(c.Names[0], "/")
}

// ContainerDetails holds the inspect fields the dashboard shows
type ContainerDetails struct {
	ID           string `json:"Id"`
	RestartCount int    `json:"RestartCount"`
	State        struct {
		StartedAt  string `json:"StartedAt"`
		FinishedAt string `json:"FinishedAt"`
		Health     *struct {
			Status string `json:"Status"`
		} `json:"Health"`
	} `json:"State"`
}

// HealthStatus returns the health check status, or "" without a health check
func (d *ContainerDetails) HealthStatus() string {
	if d == nil || d.State.Health == nil {
		return ""
	}
	return d.State.Health.Status
}

type cpuStats struct {
	CPUUsage struct {
		TotalUsage uint64 `json:"total_usage"`
	} `json:"cpu_usage"`
	SystemUsage uint64 `json:"system_cpu_usage"`
	OnlineCPUs  int    `json:"online_cpus"`
}

// Stats is a single non-streaming stats sample
type Stats struct {
	CPUStats    cpuStats `json:"cpu_stats"`
	PreCPUStats cpuStats `json:"precpu_stats"`
	MemoryStats struct {
		Usage uint64 `json:"usage"`
		Limit uint64 `json:"limit"`
	} `json:"memory_stats"`
	Networks   json.RawMessage `json:"networks"`
	BlkioStats json.RawMessage `json:"blkio_stats"`
}

// CPUPercent computes usage from the delta against the previous sample
func (s *Stats) CPUPercent() float64 {
	cpuDelta := float64(s.CPUStats.CPUUsage.TotalUsage) - float64(s.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(s.CPUStats.SystemUsage) - float64(s.PreCPUStats.SystemUsage)
	if systemDelta <= 0 || cpuDelta < 0 {
		return 0
	}
	return cpuDelta / systemDelta * float64(s.CPUStats.OnlineCPUs) * 100
}

// MemoryPercent returns usage as a share of the limit
func (s *Stats) MemoryPercent() float64 {
	if s.MemoryStats.Limit == 0 {
		return 0
	}
	return float64(s.MemoryStats.Usage) / float64(s.MemoryStats.Limit) * 100
}

// Ping checks that the engine answers
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/_ping", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// ListContainers returns all containers, running or not
func (c *Client) ListContainers(ctx context.Context) ([]Container, error) {
	var containers []Container
	if err := c.getJSON(ctx, "/containers/json", url.Values{"all": {"1"}}, &containers); err != nil {
		return nil, err
	}
	return containers, nil
}

// InspectContainer returns details for one container
func (c *Client) InspectContainer(ctx context.Context, id string) (*ContainerDetails, error) {
	var details ContainerDetails
	if err := c.getJSON(ctx, "/containers/"+url.PathEscape(id)+"/json", nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// ContainerLogs returns the last tail lines of stdout and stderr with timestamps
func (c *Client) ContainerLogs(ctx context.Context, id string, tail int) (string, error) {
	query := url.Values{
		"stdout":     {"1"},
		"stderr":     {"1"},
		"timestamps": {"1"},
		"tail":       {strconv.Itoa(tail)},
	}
	resp, err := c.do(ctx, http.MethodGet, "/containers/"+url.PathEscape(id)+"/logs", query)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read logs: %w", err)
	}
	return demultiplex(raw), nil
}

// ContainerAction performs one of ValidActions
func (c *Client) ContainerAction(ctx context.Context, id, action string) error {
	if !IsValidAction(action) {
		return ErrInvalidAction
	}
	resp, err := c.do(ctx, http.MethodPost, "/containers/"+url.PathEscape(id)+"/"+action, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// ContainerStats takes one stats sample
func (c *Client) ContainerStats(ctx context.Context, id string) (*Stats, error) {
	var stats Stats
	if err := c.getJSON(ctx, "/containers/"+url.PathEscape(id)+"/stats", url.Values{"stream": {"false"}}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// do sends a request and turns non-2xx/304 responses into errors
func (c *Client) do(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docker request failed: %w", err)
	}

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotModified {
		defer resp.Body.Close()
		var apiErr struct {
			Message string `json:"message"`
		}
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("docker API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("docker API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// demultiplex strips the 8-byte stream headers from non-TTY log output.
// TTY containers return plain text, which is passed through.
func demultiplex(raw []byte) string {
	if len(raw) < 8 || raw[0] > 2 || raw[1] != 0 || raw[2] != 0 || raw[3] != 0 {
		return string(raw)
	}

	var out strings.Builder
	for len(raw) >= 8 {
		size := int(binary.BigEndian.Uint32(raw[4:8]))
		raw = raw[8:]
		if size > len(raw) {
			size = len(raw)
		}
		out.Write(raw[:size])
		raw = raw[size:]
	}
	return out.String()
}
