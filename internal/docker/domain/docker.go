package domain

import (
	"encoding/json"
	"time"

	"devtodo-backend/pkg/docker"
)

// ContainerAction is the most recent lifecycle action performed on a container
type ContainerAction struct {
	ContainerID string    `json:"containerId"`
	Action      string    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
}

// Container is a container enriched with inspect data and dashboard state.
// Status is the engine state (running, exited) and State the human status line.
type Container struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Image        string           `json:"image"`
	Status       string           `json:"status"`
	State        string           `json:"state"`
	Created      int64            `json:"created"`
	Ports        []docker.Port    `json:"ports"`
	LastAction   *ContainerAction `json:"lastAction"`
	Health       *string          `json:"health"`
	RestartCount int              `json:"restartCount"`
	StartedAt    string           `json:"startedAt"`
	FinishedAt   string           `json:"finishedAt"`
	WebURL       *string          `json:"webUrl"`
}

// MemoryUsage is the memory part of a stats sample
type MemoryUsage struct {
	Usage   uint64 `json:"usage"`
	Limit   uint64 `json:"limit"`
	Percent string `json:"percent"`
}

// Stats is a one-shot resource sample. Percentages carry two decimals.
type Stats struct {
	CPU     string          `json:"cpu"`
	Memory  MemoryUsage     `json:"memory"`
	Network json.RawMessage `json:"network"`
	BlockIO json.RawMessage `json:"blockIO"`
}

// Engine states checked by the auto-completer
const (
	StateRunning = "running"
	StateExited  = "exited"
)
