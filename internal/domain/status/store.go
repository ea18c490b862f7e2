// Package status holds the agent's singleton status record shown in the
// display sidebar. The record lives in memory only.
package status

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/shared/clock"
	"github.com/ari-dashboard/backend/internal/shared/types"
)

// Store guards the current status.
type Store struct {
	mu     sync.RWMutex
	status types.AriStatus // Protected by mu
	clock  clock.Clock
	logger *logging.Logger
}

// NewStore starts idle with no active tasks.
func NewStore(c clock.Clock, logger *logging.Logger) *Store {
	return &Store{
		status: types.AriStatus{
			State:       types.StateIdle,
			ActiveTasks: []types.AriTask{},
			UpdatedAt:   c.Now(),
		},
		clock:  c,
		logger: logger.Named("status"),
	}
}

// Get returns a copy of the current status.
func (s *Store) Get() *types.AriStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Clone()
}

// Update applies the present fields of patch. A present task list replaces
// the current one wholesale. The timestamp is always refreshed.
func (s *Store) Update(patch types.StatusPatch) (*types.AriStatus, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.status.Clone()
	if patch.State != nil {
		next.State = *patch.State
	}
	if patch.Message != nil {
		next.Message = *patch.Message
	}
	if patch.ActiveTasks != nil {
		next.ActiveTasks = append(make([]types.AriTask, 0, len(patch.ActiveTasks)), patch.ActiveTasks...)
	}
	next.UpdatedAt = s.clock.Now()
	s.status = *next

	s.logger.Info("Status updated",
		zap.String("state", string(next.State)),
		zap.Int("count", len(next.ActiveTasks)),
	)
	return next.Clone(), nil
}
