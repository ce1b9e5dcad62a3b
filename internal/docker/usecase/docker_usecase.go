package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"devtodo-backend/internal/docker/domain"
	"devtodo-backend/pkg/docker"
)

// dockerUsecase implements DockerUsecase interface
type dockerUsecase struct {
	engine  Engine
	actions *ActionLog
	urls    docker.URLMap
	now     func() time.Time
}

// NewDockerUsecase creates a new instance of dockerUsecase
func NewDockerUsecase(engine Engine, actions *ActionLog, urls docker.URLMap) DockerUsecase {
	return &dockerUsecase{
		engine:  engine,
		actions: actions,
		urls:    urls,
		now:     time.Now,
	}
}

func (u *dockerUsecase) ListContainers(ctx context.Context) ([]domain.Container, error) {
	containers, err := u.engine.ListContainers(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Container, 0, len(containers))
	for _, c := range containers {
		id := shortID(c.ID)
		name := c.Name()
		view := domain.Container{
			ID:         id,
			Name:       name,
			Image:      c.Image,
			Status:     c.State,
			State:      c.Status,
			Created:    c.Created,
			Ports:      c.Ports,
			LastAction: u.actions.Get(id, c.ID),
			WebURL:     u.urls.Lookup(name),
		}
		if view.Ports == nil {
			view.Ports = []docker.Port{}
		}

		details, err := u.engine.InspectContainer(ctx, c.ID)
		if err != nil {
			log.Printf("[Docker] Failed to inspect %s: %v", name, err)
		} else {
			if health := details.HealthStatus(); health != "" {
				view.Health = &health
			}
			view.RestartCount = details.RestartCount
			view.StartedAt = details.State.StartedAt
			view.FinishedAt = details.State.FinishedAt
		}

		result = append(result, view)
	}
	return result, nil
}

func (u *dockerUsecase) Logs(ctx context.Context, id string, tail int) (string, error) {
	if tail <= 0 {
		tail = DefaultLogTail
	}
	return u.engine.ContainerLogs(ctx, id, tail)
}

func (u *dockerUsecase) PerformAction(ctx context.Context, id, action string) error {
	if !docker.IsValidAction(action) {
		return docker.ErrInvalidAction
	}
	if err := u.engine.ContainerAction(ctx, id, action); err != nil {
		return err
	}

	containerID := u.resolveID(ctx, id)
	u.actions.Record(containerID, action, u.now())
	log.Printf("[Docker] %s %s", action, id)
	return nil
}

// resolveID maps a name or id prefix to the short container id the action
// log is keyed by. An id the engine cannot inspect is kept as given.
func (u *dockerUsecase) resolveID(ctx context.Context, idOrName string) string {
	details, err := u.engine.InspectContainer(ctx, idOrName)
	if err != nil || details == nil || details.ID == "" {
		return idOrName
	}
	return shortID(details.ID)
}

func (u *dockerUsecase) Stats(ctx context.Context, id string) (*domain.Stats, error) {
	stats, err := u.engine.ContainerStats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.Stats{
		CPU: formatPercent(stats.CPUPercent()),
		Memory: domain.MemoryUsage{
			Usage:   stats.MemoryStats.Usage,
			Limit:   stats.MemoryStats.Limit,
			Percent: formatPercent(stats.MemoryPercent()),
		},
		Network: stats.Networks,
		BlockIO: stats.BlkioStats,
	}, nil
}

func (u *dockerUsecase) Actions() []domain.ContainerAction {
	return u.actions.List()
}

func formatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// check at compile time that the real client satisfies Engine
var _ Engine = (*docker.Client)(nil)

func wrapEngineError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w", op, err)
}
