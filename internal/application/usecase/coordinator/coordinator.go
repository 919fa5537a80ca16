package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

const (
	msgCheckFields     = "Please check all fields"
	msgUnauthenticated = "User not authenticated"
	msgLoadExpenses    = "Failed to load expenses"
	msgAddExpense      = "Failed to add expense"
	msgLoadProfile     = "Failed to load profile"
	msgCreateProfile   = "Failed to create profile"
	msgSaveProfile     = "Failed to save profile"
	msgAddToSavings    = "Failed to add to savings"
	msgUnexpected      = "An unexpected error occurred"

	defaultEventBuffer = 16
)

// Coordinator owns the state of one user session. All store operations go
// through it; readers get immutable snapshots. No lock is held while a store
// call runs.
type Coordinator struct {
	store       adapter.ExpenseStore
	identity    adapter.IdentityProvider
	clock       adapter.Clock
	logger      *slog.Logger
	timeout     time.Duration
	eventBuffer int

	tracker *ActionTracker
	flights singleflight.Group

	mu          sync.RWMutex
	expenses    []entity.Expense
	profile     *entity.FinancialProfile
	draft       entity.ExpenseDraft
	profileForm entity.ProfileForm
	lastError   string
	// created counts successful CreateExpense calls. A fetch that started
	// before a create cannot contain the new expense.
	created uint64

	subMu       sync.Mutex
	subscribers map[int]chan Event
	nextSub     int
}

// New creates a Coordinator for the session resolved by identity.
func New(store adapter.ExpenseStore, identity adapter.IdentityProvider, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       store,
		identity:    identity,
		clock:       adapter.SystemClock{},
		logger:      slog.Default(),
		timeout:     DefaultOperationTimeout,
		eventBuffer: defaultEventBuffer,
		tracker:     NewActionTracker(),
		subscribers: make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "coordinator")
	c.draft = entity.NewExpenseDraft(c.clock.Now())
	return c
}

// FetchExpenses replaces the session's expenses with the store's, newest
// first. Concurrent calls share one store request.
func (c *Coordinator) FetchExpenses(ctx context.Context) error {
	_, err := c.fetchExpenses(ctx)
	return err
}

func (c *Coordinator) fetchExpenses(ctx context.Context) (uint64, error) {
	v, err, _ := c.flights.Do(string(entity.ActionFetchExpenses), func() (interface{}, error) {
		started := c.createdCount()
		err := c.execute(context.WithoutCancel(ctx), entity.ActionFetchExpenses, func(ctx context.Context, ownerID string) error {
			expenses, err := c.store.ListExpenses(ctx, ownerID, true)
			if err != nil {
				return domainerror.NewRemoteError(domainerror.ErrCodeLoadExpensesFailed, msgLoadExpenses, err)
			}

			c.mu.Lock()
			c.expenses = expenses
			c.mu.Unlock()
			return nil
		})
		return started, err
	})
	started, _ := v.(uint64)
	return started, err
}

// AddExpense validates and stores draft, then reloads the collection from
// the store and clears the form. On failure the draft is kept.
func (c *Coordinator) AddExpense(ctx context.Context, draft entity.ExpenseDraft) error {
	keepDraft := func() {
		c.mu.Lock()
		c.draft = draft
		c.mu.Unlock()
	}

	return c.executeWith(ctx, entity.ActionAddExpense, keepDraft, func(ctx context.Context, ownerID string) error {
		amount, err := draft.ParsedAmount()
		if err != nil || !amount.IsPositive() || !entity.IsMoneyAmount(amount) {
			return domainerror.NewValidationError(domainerror.ErrCodeInvalidAmount, "amount must be greater than zero with at most two decimals", domainerror.ErrInvalidAmount)
		}
		if !draft.Category.IsValid() {
			return domainerror.NewValidationError(domainerror.ErrCodeInvalidCategory, "category is required", domainerror.ErrInvalidCategory)
		}

		expense := entity.NewExpense(ownerID, amount, draft.Category, draft.Note, draft.Date)
		if _, err := c.store.CreateExpense(ctx, ownerID, expense); err != nil {
			return domainerror.NewRemoteError(domainerror.ErrCodeAddExpenseFailed, msgAddExpense, err)
		}

		c.mu.Lock()
		c.created++
		target := c.created
		c.draft = entity.NewExpenseDraft(c.clock.Now())
		c.mu.Unlock()

		// The expense is stored; a failed reload is reported on the fetch action.
		if err := c.refreshAfter(ctx, target); err != nil {
			c.logger.Warn("Failed to reload expenses after add", "owner_id", ownerID, "error", err)
		}
		return nil
	})
}

// refreshAfter fetches until the result reflects every create up to target.
func (c *Coordinator) refreshAfter(ctx context.Context, target uint64) error {
	for {
		started, err := c.fetchExpenses(ctx)
		if err != nil {
			return err
		}
		if started >= target {
			return nil
		}
	}
}

// FetchProfile loads the owner's profile, creating the zero-valued default
// when the store has none. Concurrent calls share one store request.
func (c *Coordinator) FetchProfile(ctx context.Context) error {
	_, err, _ := c.flights.Do(string(entity.ActionFetchProfile), func() (interface{}, error) {
		return nil, c.execute(context.WithoutCancel(ctx), entity.ActionFetchProfile, func(ctx context.Context, ownerID string) error {
			profile, err := c.store.GetProfile(ctx, ownerID)
			if err != nil {
				return domainerror.NewRemoteError(domainerror.ErrCodeLoadProfileFailed, msgLoadProfile, err)
			}

			if profile == nil {
				profile = entity.NewFinancialProfile(ownerID, c.clock.Now())
				id, err := c.store.CreateProfile(ctx, profile)
				if err != nil {
					return domainerror.NewRemoteError(domainerror.ErrCodeCreateProfileFailed, msgCreateProfile, err)
				}
				profile.ID = id
			}

			c.setProfile(profile)
			return nil
		})
	})
	return err
}

// SaveProfile creates the profile when it has no id yet, otherwise updates
// it and advances UpdatedAt. The last write wins.
func (c *Coordinator) SaveProfile(ctx context.Context, form entity.ProfileForm) error {
	keepForm := func() {
		c.mu.Lock()
		c.profileForm = form
		c.mu.Unlock()
	}

	return c.executeWith(ctx, entity.ActionSaveProfile, keepForm, func(ctx context.Context, ownerID string) error {
		values, ok := form.Parse()
		if !ok {
			return domainerror.NewValidationError(domainerror.ErrCodeInvalidProfileValues, "profile values must be non-negative numbers", domainerror.ErrInvalidProfileValues)
		}

		now := c.clock.Now()
		current := c.Profile()

		if !current.IsPersisted() {
			profile := entity.NewFinancialProfile(ownerID, now)
			applyValues(profile, values)

			id, err := c.store.CreateProfile(ctx, profile)
			if err != nil {
				return domainerror.NewRemoteError(domainerror.ErrCodeCreateProfileFailed, msgCreateProfile, err)
			}
			profile.ID = id
			c.setProfile(profile)
			return nil
		}

		updated := current.Clone()
		applyValues(updated, values)
		updated.UpdatedAt = now

		if err := c.store.UpdateProfile(ctx, updated.ID, updated); err != nil {
			return domainerror.NewRemoteError(domainerror.ErrCodeSaveProfileFailed, msgSaveProfile, err)
		}
		c.setProfile(updated)
		return nil
	})
}

// AddToSavings adds amount to the loaded profile's current savings and
// writes the whole profile back.
func (c *Coordinator) AddToSavings(ctx context.Context, amount decimal.Decimal) error {
	return c.execute(ctx, entity.ActionAddToSavings, func(ctx context.Context, ownerID string) error {
		if !amount.IsPositive() || !entity.IsMoneyAmount(amount) {
			return domainerror.NewValidationError(domainerror.ErrCodeInvalidSavingsAmount, "amount must be greater than zero with at most two decimals", domainerror.ErrInvalidSavingsAmount)
		}

		current := c.Profile()
		if !current.IsPersisted() {
			return domainerror.NewValidationError(domainerror.ErrCodeProfileNotLoaded, "profile must be loaded first", domainerror.ErrProfileNotLoaded)
		}

		updated := current.Clone()
		updated.CurrentSavings = updated.CurrentSavings.Add(amount)
		updated.UpdatedAt = c.clock.Now()

		if err := c.store.UpdateProfile(ctx, updated.ID, updated); err != nil {
			return domainerror.NewRemoteError(domainerror.ErrCodeAddToSavingsFailed, msgAddToSavings, err)
		}
		c.setProfile(updated)
		return nil
	})
}

// SetDraft replaces the add-expense form without submitting it.
func (c *Coordinator) SetDraft(draft entity.ExpenseDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = draft
}

// SetProfileForm replaces the profile form without saving it.
func (c *Coordinator) SetProfileForm(form entity.ProfileForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profileForm = form
}

// Expenses returns a copy of the current collection.
func (c *Coordinator) Expenses() []entity.Expense {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyExpenses(c.expenses)
}

// Profile returns a copy of the current profile, or nil.
func (c *Coordinator) Profile() *entity.FinancialProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile.Clone()
}

// Status returns the state of one action.
func (c *Coordinator) Status(action entity.Action) ActionStatus {
	return c.tracker.Status(action)
}

// Snapshot returns a consistent copy of the session state.
func (c *Coordinator) Snapshot() Snapshot {
	ownerID, _ := c.identity.CurrentOwnerID()

	c.mu.RLock()
	snap := Snapshot{
		OwnerID:     ownerID,
		Expenses:    copyExpenses(c.expenses),
		Profile:     c.profile.Clone(),
		Draft:       c.draft,
		ProfileForm: c.profileForm,
		LastError:   c.lastError,
	}
	c.mu.RUnlock()

	snap.Actions = c.tracker.All()
	snap.TakenAt = c.clock.Now()
	return snap
}

// execute runs fn as one tracked run of action.
func (c *Coordinator) execute(ctx context.Context, action entity.Action, fn func(ctx context.Context, ownerID string) error) error {
	return c.executeWith(ctx, action, nil, fn)
}

// executeWith calls onBegin once the action is known not to be pending.
func (c *Coordinator) executeWith(ctx context.Context, action entity.Action, onBegin func(), fn func(ctx context.Context, ownerID string) error) error {
	status, ok := c.tracker.Begin(action, c.clock.Now())
	if !ok {
		return domainerror.NewValidationError(domainerror.ErrCodeActionInProgress, "action already in progress", domainerror.ErrActionInProgress)
	}
	if onBegin != nil {
		onBegin()
	}
	c.publish(status)

	logger := c.logger.With("action", string(action))
	logger.Debug("Action started")

	err := c.run(ctx, fn)
	now := c.clock.Now()

	if err != nil {
		actionErr := describe(err, now)
		c.mu.Lock()
		c.lastError = actionErr.Message
		c.mu.Unlock()

		c.publish(c.tracker.Fail(action, now, actionErr))
		if domainerror.IsValidation(err) {
			logger.Debug("Action rejected", "error", err)
		} else {
			logger.Warn("Action failed", "error", err)
		}
	} else {
		c.publish(c.tracker.Succeed(action, now))
		logger.Debug("Action succeeded")
	}

	c.publish(c.tracker.Settle(action, c.clock.Now()))
	return err
}

func (c *Coordinator) run(ctx context.Context, fn func(ctx context.Context, ownerID string) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during store operation: %v", r)
		}
	}()

	ownerID, ok := c.identity.CurrentOwnerID()
	if !ok || ownerID == "" {
		return domainerror.NewValidationError(domainerror.ErrCodeUnauthenticated, msgUnauthenticated, domainerror.ErrUnauthenticated)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	return fn(ctx, ownerID)
}

func (c *Coordinator) setProfile(p *entity.FinancialProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = p.Clone()
	c.profileForm = entity.ProfileFormFrom(p)
}

func (c *Coordinator) createdCount() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.created
}

func applyValues(p *entity.FinancialProfile, v entity.ProfileValues) {
	p.MonthlySalary = v.MonthlySalary
	p.MonthlySavingsGoal = v.MonthlySavingsGoal
	p.CurrentSavings = v.CurrentSavings
}

func copyExpenses(in []entity.Expense) []entity.Expense {
	if in == nil {
		return []entity.Expense{}
	}
	out := make([]entity.Expense, len(in))
	copy(out, in)
	return out
}

// describe turns err into the message shown to the user.
func describe(err error, now time.Time) *ActionError {
	var expErr *domainerror.ExpenseError
	if !errors.As(err, &expErr) {
		return &ActionError{Message: msgUnexpected, Timestamp: now}
	}

	message := expErr.Message
	if expErr.Kind == domainerror.KindValidationFailed && expErr.Code != domainerror.ErrCodeUnauthenticated {
		message = msgCheckFields
	}
	return &ActionError{
		Code:      string(expErr.Code),
		Message:   message,
		Timestamp: now,
	}
}
