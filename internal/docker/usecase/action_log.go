package usecase

import (
	"sort"
	"sync"
	"time"

	"devtodo-backend/internal/docker/domain"
)

// ActionLog remembers the last action performed on each container.
// It lives in process memory and starts empty on every boot.
type ActionLog struct {
	mu      sync.RWMutex
	actions map[string]domain.ContainerAction
}

// NewActionLog creates an empty ActionLog
func NewActionLog() *ActionLog {
	return &ActionLog{actions: make(map[string]domain.ContainerAction)}
}

// Record replaces the last action for containerID
func (l *ActionLog) Record(containerID, action string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.actions[containerID] = domain.ContainerAction{
		ContainerID: containerID,
		Action:      action,
		Timestamp:   at,
	}
}

// Get returns the last action for any of the given ids, preferring the first
func (l *ActionLog) Get(ids ...string) *domain.ContainerAction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, id := range ids {
		if action, ok := l.actions[id]; ok {
			return &action
		}
	}
	return nil
}

// List returns all recorded actions, most recent first
func (l *ActionLog) List() []domain.ContainerAction {
	l.mu.RLock()
	actions := make([]domain.ContainerAction, 0, len(l.actions))
	for _, action := range l.actions {
		actions = append(actions, action)
	}
	l.mu.RUnlock()

	sort.Slice(actions, func(i, j int) bool {
		if actions[i].Timestamp.Equal(actions[j].Timestamp) {
			return actions[i].ContainerID < actions[j].ContainerID
		}
		return actions[i].Timestamp.After(actions[j].Timestamp)
	})
	return actions
}
