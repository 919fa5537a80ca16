package coordinator

import (
	"time"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// Snapshot is an immutable copy of a session's state.
type Snapshot struct {
	OwnerID     string
	Expenses    []entity.Expense
	Profile     *entity.FinancialProfile
	Draft       entity.ExpenseDraft
	ProfileForm entity.ProfileForm
	Actions     map[entity.Action]ActionStatus
	LastError   string
	TakenAt     time.Time
}

// Event reports a state transition of one action.
type Event struct {
	Action entity.Action
	Status ActionStatus
}

// Subscribe returns a channel receiving every action transition and a
// function that ends the subscription. Events are dropped for subscribers
// whose buffer is full.
func (c *Coordinator) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, c.eventBuffer)

	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = ch
	c.subMu.Unlock()

	unsubscribe := func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

func (c *Coordinator) publish(status ActionStatus) {
	event := Event{Action: status.Action, Status: status}

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
