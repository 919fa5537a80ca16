// Package email provides email sending functionality.
package email

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/expense-tracker/backend/internal/application/usecase/alert"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// AlertTarget is one owner whose budget the worker checks.
type AlertTarget struct {
	Input alert.CheckBudgetInput
	// Refresh reloads the owner's expenses and profile before the check.
	Refresh func(ctx context.Context) error
}

// AlertTargetLister lists the owners to check on each tick, sorted by owner id.
type AlertTargetLister interface {
	AlertTargets() []AlertTarget
}

// BudgetChecker runs one budget check.
type BudgetChecker interface {
	Execute(ctx context.Context, input alert.CheckBudgetInput) (*alert.CheckBudgetOutput, error)
}

// Worker periodically checks the budget of every active owner and sends
// alerts through the checker.
type Worker struct {
	targets      AlertTargetLister
	checker      BudgetChecker
	pollInterval time.Duration
	batchSize    int

	mu sync.Mutex
	// lastOwner is the last owner checked; the next pass resumes after it.
	lastOwner string
}

// WorkerConfig holds configuration for the alert worker.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval: time.Hour,
		BatchSize:    50,
	}
}

// NewWorker creates a new alert worker.
func NewWorker(targets AlertTargetLister, checker BudgetChecker, config WorkerConfig) *Worker {
	defaults := DefaultWorkerConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	return &Worker{
		targets:      targets,
		checker:      checker,
		pollInterval: config.PollInterval,
		batchSize:    config.BatchSize,
	}
}

// Start begins the worker loop. It blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Budget alert worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Budget alert worker shutting down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// processBatch checks up to batchSize owners, resuming after the owner the
// previous pass stopped at and wrapping around the list.
func (w *Worker) processBatch(ctx context.Context) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	targets := w.nextBatch(w.targets.AlertTargets())
	if len(targets) == 0 {
		return 0
	}

	slog.Debug("Checking budgets", "count", len(targets))

	sent := 0
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return sent
		default:
			if w.processTarget(ctx, target) {
				sent++
			}
			w.lastOwner = target.Input.OwnerID
		}
	}
	return sent
}

// nextBatch rotates the sorted target list so it starts after lastOwner and
// cuts it to the batch size.
func (w *Worker) nextBatch(targets []AlertTarget) []AlertTarget {
	if len(targets) == 0 {
		return nil
	}

	start := 0
	if w.lastOwner != "" {
		for i, t := range targets {
			if t.Input.OwnerID > w.lastOwner {
				start = i
				break
			}
		}
	}

	size := min(w.batchSize, len(targets))
	batch := make([]AlertTarget, 0, size)
	for i := 0; i < size; i++ {
		batch = append(batch, targets[(start+i)%len(targets)])
	}
	return batch
}

// processTarget checks a single owner and reports whether an alert was sent.
func (w *Worker) processTarget(ctx context.Context, target AlertTarget) bool {
	logger := slog.With("owner_id", target.Input.OwnerID)

	if target.Refresh != nil {
		if err := target.Refresh(ctx); err != nil {
			logger.Warn("Failed to refresh owner data before budget check", "error", err)
			return false
		}
	}

	out, err := w.checker.Execute(ctx, target.Input)
	if err != nil {
		var emailErr *domainerror.EmailError
		if errors.As(err, &emailErr) && emailErr.Code == domainerror.ErrCodeEmailNotConfigured {
			logger.Debug("Budget alerts not configured")
			return false
		}
		logger.Error("Budget check failed", "error", err)
		return false
	}

	return out.AlertSent
}

// ProcessNow runs one pass immediately and returns the number of alerts sent
// (useful for testing).
func (w *Worker) ProcessNow(ctx context.Context) int {
	return w.processBatch(ctx)
}
