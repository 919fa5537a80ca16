// Package coordinator runs the asynchronous store operations of one user
// session and keeps the session's expenses, profile and form state.
package coordinator

import (
	"sync"
	"time"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// ActionError describes why the last run of an action failed.
type ActionError struct {
	Code      string
	Message   string
	Timestamp time.Time
}

// ActionStatus is the observable state of one action.
type ActionStatus struct {
	Action      entity.Action
	State       entity.ActionState
	LastOutcome entity.ActionOutcome
	LastError   *ActionError
	UpdatedAt   time.Time
}

// IsPending reports whether a run is in flight.
func (s ActionStatus) IsPending() bool {
	return s.State == entity.ActionPending
}

// ActionTracker holds the Idle/Pending/Success/Failed machine of every action.
// The last outcome and error survive the return to Idle.
type ActionTracker struct {
	mu       sync.RWMutex
	statuses map[entity.Action]*ActionStatus
}

// NewActionTracker creates a tracker with every action Idle.
func NewActionTracker() *ActionTracker {
	statuses := make(map[entity.Action]*ActionStatus)
	for _, a := range entity.Actions() {
		statuses[a] = &ActionStatus{Action: a, State: entity.ActionIdle}
	}
	return &ActionTracker{statuses: statuses}
}

// Begin moves action to Pending. It returns false when the action is already Pending.
func (t *ActionTracker) Begin(action entity.Action, now time.Time) (ActionStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.statusLocked(action)
	if s.State == entity.ActionPending {
		return *s, false
	}
	s.State = entity.ActionPending
	s.UpdatedAt = now
	return *s, true
}

// Succeed records a successful run.
func (t *ActionTracker) Succeed(action entity.Action, now time.Time) ActionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.statusLocked(action)
	s.State = entity.ActionSuccess
	s.LastOutcome = entity.OutcomeSucceeded
	s.LastError = nil
	s.UpdatedAt = now
	return *s
}

// Fail records a failed run.
func (t *ActionTracker) Fail(action entity.Action, now time.Time, err *ActionError) ActionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.statusLocked(action)
	s.State = entity.ActionFailed
	s.LastOutcome = entity.OutcomeFailed
	s.LastError = err
	s.UpdatedAt = now
	return *s
}

// Settle returns a finished action to Idle.
func (t *ActionTracker) Settle(action entity.Action, now time.Time) ActionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.statusLocked(action)
	s.State = entity.ActionIdle
	s.UpdatedAt = now
	return *s
}

// IsPending checks if action is in flight.
func (t *ActionTracker) IsPending(action entity.Action) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.statuses[action]
	return ok && s.State == entity.ActionPending
}

// Status returns a copy of the status of action.
func (t *ActionTracker) Status(action entity.Action) ActionStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.statuses[action]; ok {
		return *s
	}
	return ActionStatus{Action: action, State: entity.ActionIdle}
}

// All returns a copy of every status.
func (t *ActionTracker) All() map[entity.Action]ActionStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[entity.Action]ActionStatus, len(t.statuses))
	for a, s := range t.statuses {
		out[a] = *s
	}
	return out
}

func (t *ActionTracker) statusLocked(action entity.Action) *ActionStatus {
	s, ok := t.statuses[action]
	if !ok {
		s = &ActionStatus{Action: action, State: entity.ActionIdle}
		t.statuses[action] = s
	}
	return s
}
