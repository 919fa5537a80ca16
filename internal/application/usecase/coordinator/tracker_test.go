package coordinator

import (
	"sync"
	"testing"
	"time"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

func TestActionTracker_Transitions(t *testing.T) {
	tracker := NewActionTracker()
	now := time.Now()

	t.Run("starts idle", func(t *testing.T) {
		for _, a := range entity.Actions() {
			if s := tracker.Status(a); s.State != entity.ActionIdle || s.LastOutcome != entity.OutcomeNone {
				t.Errorf("%s: expected idle with no outcome, got %+v", a, s)
			}
		}
	})

	t.Run("Begin rejects a pending action", func(t *testing.T) {
		if _, ok := tracker.Begin(entity.ActionSaveProfile, now); !ok {
			t.Fatal("expected first Begin to succeed")
		}
		if _, ok := tracker.Begin(entity.ActionSaveProfile, now); ok {
			t.Error("expected second Begin to fail")
		}
		if !tracker.IsPending(entity.ActionSaveProfile) {
			t.Error("expected action to be pending")
		}
	})

	t.Run("actions are tracked independently", func(t *testing.T) {
		if tracker.IsPending(entity.ActionAddToSavings) {
			t.Error("expected other action to stay idle")
		}
	})

	t.Run("failure survives settle", func(t *testing.T) {
		tracker.Fail(entity.ActionSaveProfile, now, &ActionError{Code: "EXP-020005", Message: "Failed to save profile"})
		s := tracker.Settle(entity.ActionSaveProfile, now)

		if s.State != entity.ActionIdle {
			t.Errorf("expected idle, got %s", s.State)
		}
		if s.LastOutcome != entity.OutcomeFailed {
			t.Errorf("expected failed outcome, got %s", s.LastOutcome)
		}
		if s.LastError == nil || s.LastError.Message != "Failed to save profile" {
			t.Errorf("expected error to be kept, got %+v", s.LastError)
		}
	})

	t.Run("success clears the error", func(t *testing.T) {
		if _, ok := tracker.Begin(entity.ActionSaveProfile, now); !ok {
			t.Fatal("expected Begin after settle to succeed")
		}
		tracker.Succeed(entity.ActionSaveProfile, now)
		s := tracker.Settle(entity.ActionSaveProfile, now)

		if s.LastOutcome != entity.OutcomeSucceeded || s.LastError != nil {
			t.Errorf("unexpected status %+v", s)
		}
	})
}

func TestActionTracker_ThreadSafety(t *testing.T) {
	tracker := NewActionTracker()
	actions := entity.Actions()

	const goroutines = 50
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			action := actions[id%len(actions)]
			for j := 0; j < iterations; j++ {
				switch j % 5 {
				case 0:
					tracker.Begin(action, time.Now())
				case 1:
					tracker.IsPending(action)
				case 2:
					tracker.Fail(action, time.Now(), &ActionError{Message: "boom"})
				case 3:
					tracker.All()
				case 4:
					tracker.Settle(action, time.Now())
				}
			}
		}(i)
	}

	wg.Wait()
}
