package types

import (
	"time"

	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
)

// AriState is the agent's coarse activity state.
type AriState string

const (
	StateIdle    AriState = "idle"
	StateWorking AriState = "working"
	StateAgents  AriState = "agents"
	StateError   AriState = "error"
)

// TaskStatus is the lifecycle state of one agent task.
type TaskStatus string

const (
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// AriTask is one task the agent reports as active.
type AriTask struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      TaskStatus `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// AriStatus is the singleton status record shown in the sidebar.
type AriStatus struct {
	State       AriState  `json:"state"`
	Message     string    `json:"message,omitempty"`
	ActiveTasks []AriTask `json:"activeTasks"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a copy of s with its own task slice.
func (s *AriStatus) Clone() *AriStatus {
	c := *s
	c.ActiveTasks = make([]AriTask, len(s.ActiveTasks))
	copy(c.ActiveTasks, s.ActiveTasks)
	return &c
}

// StatusPatch is a partial status update. A nil ActiveTasks leaves the task
// list untouched; a non-nil one replaces it wholesale.
type StatusPatch struct {
	State       *AriState `json:"state,omitempty"`
	Message     *string   `json:"message,omitempty"`
	ActiveTasks []AriTask `json:"activeTasks,omitempty"`
}

// Validate checks the enumerated fields of the patch.
func (p *StatusPatch) Validate() error {
	if p.State != nil {
		switch *p.State {
		case StateIdle, StateWorking, StateAgents, StateError:
		default:
			return apperrors.Validation("invalid state %q. Must be one of: idle, working, agents, error", *p.State)
		}
	}
	for _, t := range p.ActiveTasks {
		switch t.Status {
		case TaskRunning, TaskCompleted, TaskFailed:
		default:
			return apperrors.Validation("invalid task status %q for task %q", t.Status, t.ID)
		}
	}
	return nil
}
