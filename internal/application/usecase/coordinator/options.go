package coordinator

import (
	"log/slog"
	"time"

	"github.com/expense-tracker/backend/internal/application/adapter"
)

// DefaultOperationTimeout bounds a single store call.
const DefaultOperationTimeout = 30 * time.Second

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces the wall clock.
func WithClock(clock adapter.Clock) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the parent logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOperationTimeout bounds every store call. Zero disables the bound.
func WithOperationTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithEventBuffer sets the channel size handed to subscribers.
func WithEventBuffer(size int) Option {
	return func(c *Coordinator) {
		if size > 0 {
			c.eventBuffer = size
		}
	}
}
