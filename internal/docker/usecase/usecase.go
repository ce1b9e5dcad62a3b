package usecase

import (
	"context"

	"devtodo-backend/internal/docker/domain"
	"devtodo-backend/pkg/docker"
)

// DefaultLogTail is the number of log lines returned when no tail is given
const DefaultLogTail = 100

// Engine is the subset of the Docker Engine API the dashboard uses
type Engine interface {
	ListContainers(ctx context.Context) ([]docker.Container, error)
	InspectContainer(ctx context.Context, id string) (*docker.ContainerDetails, error)
	ContainerLogs(ctx context.Context, id string, tail int) (string, error)
	ContainerAction(ctx context.Context, id, action string) error
	ContainerStats(ctx context.Context, id string) (*docker.Stats, error)
}

// DockerUsecase defines the container operations exposed over HTTP
type DockerUsecase interface {
	// ListContainers returns every container with inspect data, last action and web URL
	ListContainers(ctx context.Context) ([]domain.Container, error)

	// Logs returns the last tail log lines of a container
	Logs(ctx context.Context, id string, tail int) (string, error)

	// PerformAction runs a lifecycle action and records it in the action log
	PerformAction(ctx context.Context, id, action string) error

	// Stats takes one resource sample
	Stats(ctx context.Context, id string) (*domain.Stats, error)

	// Actions lists the recorded actions, most recent first
	Actions() []domain.ContainerAction
}

// shortID is the 12-character id the dashboard shows and stores on tasks
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
