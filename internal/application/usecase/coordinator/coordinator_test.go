package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

const owner = "user-1"

func newTestCoordinator(store *fakeStore, opts ...Option) (*Coordinator, *fixedClock) {
	clock := &fixedClock{now: time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(store, staticIdentity{ownerID: owner}, opts...), clock
}

func validDraft(amount string) entity.ExpenseDraft {
	return entity.ExpenseDraft{
		Amount:   amount,
		Category: entity.CategoryTransportation,
		Note:     "bus ticket",
		Date:     time.Date(2024, 5, 14, 8, 0, 0, 0, time.UTC),
	}
}

func TestAddExpense(t *testing.T) {
	t.Run("zero amount is rejected before any store call", func(t *testing.T) {
		store := newFakeStore()
		c, _ := newTestCoordinator(store)

		err := c.AddExpense(context.Background(), validDraft("0"))
		if !domainerror.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if !errors.Is(err, domainerror.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
		create, list, get, createProfile, update := store.calls()
		if create+list+get+createProfile+update != 0 {
			t.Errorf("expected no store calls, got create=%d list=%d get=%d createProfile=%d update=%d", create, list, get, createProfile, update)
		}

		status := c.Status(entity.ActionAddExpense)
		if status.State != entity.ActionIdle || status.LastOutcome != entity.OutcomeFailed {
			t.Errorf("expected idle with failed outcome, got %+v", status)
		}
		if status.LastError == nil || status.LastError.Message != "Please check all fields" {
			t.Errorf("unexpected error message %+v", status.LastError)
		}
	})

	t.Run("sub-cent amounts are rejected", func(t *testing.T) {
		store := newFakeStore()
		c, _ := newTestCoordinator(store)

		for _, amount := range []string{"0.004", "10.125"} {
			if err := c.AddExpense(context.Background(), validDraft(amount)); !errors.Is(err, domainerror.ErrInvalidAmount) {
				t.Errorf("amount %s: expected ErrInvalidAmount, got %v", amount, err)
			}
		}
		if create, _, _, _, _ := store.calls(); create != 0 {
			t.Errorf("expected no create call, got %d", create)
		}
		if got := c.Snapshot().Draft.Amount; got != "10.125" {
			t.Errorf("expected draft to be kept, got %q", got)
		}
	})

	t.Run("trailing zeros beyond cents are accepted", func(t *testing.T) {
		store := newFakeStore()
		c, _ := newTestCoordinator(store)

		if err := c.AddExpense(context.Background(), validDraft("12.500")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if create, _, _, _, _ := store.calls(); create != 1 {
			t.Errorf("expected 1 create call, got %d", create)
		}
	})

	t.Run("invalid category is rejected", func(t *testing.T) {
		store := newFakeStore()
		c, _ := newTestCoordinator(store)

		draft := validDraft("10")
		draft.Category = ""
		if err := c.AddExpense(context.Background(), draft); !errors.Is(err, domainerror.ErrInvalidCategory) {
			t.Fatalf("expected ErrInvalidCategory, got %v", err)
		}
		if create, _, _, _, _ := store.calls(); create != 0 {
			t.Errorf("expected no create call, got %d", create)
		}
	})

	t.Run("success refetches and clears the draft", func(t *testing.T) {
		store := newFakeStore()
		c, clock := newTestCoordinator(store)

		if err := c.AddExpense(context.Background(), validDraft("12.50")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		create, list, _, _, _ := store.calls()
		if create != 1 || list != 1 {
			t.Errorf("expected one create and one list, got create=%d list=%d", create, list)
		}

		expenses := c.Expenses()
		if len(expenses) != 1 {
			t.Fatalf("expected 1 expense, got %d", len(expenses))
		}
		if expenses[0].ID == "" {
			t.Error("expected the refetched expense to carry its id")
		}
		if !expenses[0].Amount.Equal(decimal.RequireFromString("12.50")) {
			t.Errorf("unexpected amount %s", expenses[0].Amount)
		}

		draft := c.Snapshot().Draft
		if draft.Amount != "" || draft.Note != "" || draft.Category != entity.DefaultCategory {
			t.Errorf("expected a cleared draft, got %+v", draft)
		}
		if !draft.Date.Equal(clock.Now()) {
			t.Errorf("expected draft dated now, got %s", draft.Date)
		}

		if s := c.Status(entity.ActionAddExpense); s.LastOutcome != entity.OutcomeSucceeded || s.State != entity.ActionIdle {
			t.Errorf("unexpected add status %+v", s)
		}
	})

	t.Run("failure keeps the draft", func(t *testing.T) {
		store := newFakeStore()
		store.failCreateExpense = true
		c, _ := newTestCoordinator(store)

		draft := validDraft("40")
		err := c.AddExpense(context.Background(), draft)
		if !domainerror.IsRemote(err) {
			t.Fatalf("expected remote error, got %v", err)
		}

		snap := c.Snapshot()
		if snap.Draft != draft {
			t.Errorf("expected draft to be preserved, got %+v", snap.Draft)
		}
		if snap.LastError != "Failed to add expense" {
			t.Errorf("unexpected last error %q", snap.LastError)
		}
		if _, list, _, _, _ := store.calls(); list != 0 {
			t.Errorf("expected no refetch, got %d list calls", list)
		}
	})

	t.Run("retry after failure succeeds", func(t *testing.T) {
		store := newFakeStore()
		store.failCreateExpense = true
		c, _ := newTestCoordinator(store)

		_ = c.AddExpense(context.Background(), validDraft("40"))

		store.mu.Lock()
		store.failCreateExpense = false
		store.mu.Unlock()

		if err := c.AddExpense(context.Background(), c.Snapshot().Draft); err != nil {
			t.Fatalf("unexpected error on retry: %v", err)
		}
		if len(c.Expenses()) != 1 {
			t.Errorf("expected 1 expense after retry, got %d", len(c.Expenses()))
		}
	})
}

func TestUnauthenticatedActionsFailFast(t *testing.T) {
	store := newFakeStore()
	c := New(store, staticIdentity{}, WithClock(&fixedClock{now: time.Now()}))
	ctx := context.Background()

	errs := []error{
		c.FetchExpenses(ctx),
		c.AddExpense(ctx, validDraft("5")),
		c.FetchProfile(ctx),
		c.SaveProfile(ctx, entity.ProfileForm{MonthlySalary: "100"}),
		c.AddToSavings(ctx, decimal.NewFromInt(5)),
	}
	for i, err := range errs {
		if !errors.Is(err, domainerror.ErrUnauthenticated) {
			t.Errorf("action %d: expected ErrUnauthenticated, got %v", i, err)
		}
	}

	create, list, get, createProfile, update := store.calls()
	if create+list+get+createProfile+update != 0 {
		t.Errorf("expected no store calls, got %d", create+list+get+createProfile+update)
	}
}

func TestFetchExpensesCoalesces(t *testing.T) {
	store := newFakeStore()
	store.expenses = []entity.Expense{
		{ID: "a", OwnerID: owner, Amount: decimal.NewFromInt(1), Category: entity.CategoryTravel, Date: time.Now()},
	}
	store.listGate = make(chan struct{})
	store.listEntered = make(chan struct{}, 1)
	c, _ := newTestCoordinator(store)

	const callers = 5
	var wg sync.WaitGroup
	errs := make(chan error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- c.FetchExpenses(context.Background())
	}()
	<-store.listEntered

	if !c.Status(entity.ActionFetchExpenses).IsPending() {
		t.Error("expected fetch to be pending")
	}

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.FetchExpenses(context.Background())
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(store.listGate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.maxInFlightLists != 1 {
		t.Errorf("expected at most one list call in flight, got %d", store.maxInFlightLists)
	}
	if store.listCalls >= callers {
		t.Errorf("expected callers to share list calls, got %d", store.listCalls)
	}
}

func TestAddExpenseWhilePendingIsNoop(t *testing.T) {
	store := newFakeStore()
	store.listGate = make(chan struct{})
	store.listEntered = make(chan struct{}, 1)
	c, _ := newTestCoordinator(store)

	done := make(chan error, 1)
	go func() {
		done <- c.AddExpense(context.Background(), validDraft("3"))
	}()
	// The first add is pending while its refetch is blocked.
	<-store.listEntered

	err := c.AddExpense(context.Background(), validDraft("4"))
	if !errors.Is(err, domainerror.ErrActionInProgress) {
		t.Errorf("expected ErrActionInProgress, got %v", err)
	}

	close(store.listGate)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if create, _, _, _, _ := store.calls(); create != 1 {
		t.Errorf("expected one create call, got %d", create)
	}
}

func TestFetchProfile(t *testing.T) {
	t.Run("absent profile is created with defaults", func(t *testing.T) {
		store := newFakeStore()
		c, _ := newTestCoordinator(store)

		if err := c.FetchProfile(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		p := c.Profile()
		if p == nil || p.ID == "" {
			t.Fatalf("expected a persisted profile, got %+v", p)
		}
		if !p.MonthlySalary.IsZero() || !p.CurrentSavings.IsZero() || !p.MonthlySavingsGoal.IsZero() {
			t.Errorf("expected zero-valued profile, got %+v", p)
		}
		if _, _, get, createProfile, _ := store.calls(); get != 1 || createProfile != 1 {
			t.Errorf("expected one get and one create, got get=%d create=%d", get, createProfile)
		}
		if form := c.Snapshot().ProfileForm; form.MonthlySalary != "0.00" {
			t.Errorf("expected two-decimal form, got %+v", form)
		}
	})

	t.Run("existing profile is loaded", func(t *testing.T) {
		store := newFakeStore()
		store.profile = &entity.FinancialProfile{
			ID:            "p-1",
			OwnerID:       owner,
			MonthlySalary: decimal.NewFromInt(3000),
		}
		c, _ := newTestCoordinator(store)

		if err := c.FetchProfile(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p := c.Profile(); p.ID != "p-1" || !p.MonthlySalary.Equal(decimal.NewFromInt(3000)) {
			t.Errorf("unexpected profile %+v", p)
		}
		if _, _, _, createProfile, _ := store.calls(); createProfile != 0 {
			t.Errorf("expected no create, got %d", createProfile)
		}
	})
}

func TestSaveProfile(t *testing.T) {
	form := entity.ProfileForm{MonthlySalary: "2500", MonthlySavingsGoal: "300", CurrentSavings: "1000"}

	t.Run("creates when no profile exists", func(t *testing.T) {
		store := newFakeStore()
		c, _ := newTestCoordinator(store)

		if err := c.SaveProfile(context.Background(), form); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, _, _, createProfile, update := store.calls()
		if createProfile != 1 || update != 0 {
			t.Errorf("expected create only, got create=%d update=%d", createProfile, update)
		}
		p := c.Profile()
		if p == nil || p.ID == "" {
			t.Fatalf("expected profile with id, got %+v", p)
		}
		if !p.MonthlySalary.Equal(decimal.NewFromInt(2500)) {
			t.Errorf("unexpected salary %s", p.MonthlySalary)
		}
	})

	t.Run("updates and advances updatedAt", func(t *testing.T) {
		store := newFakeStore()
		c, clock := newTestCoordinator(store)

		if err := c.FetchProfile(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		before := c.Profile()

		clock.Advance(time.Hour)
		if err := c.SaveProfile(context.Background(), form); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		after := c.Profile()
		if after.ID != before.ID {
			t.Errorf("expected same id, got %s and %s", before.ID, after.ID)
		}
		if !after.UpdatedAt.After(before.UpdatedAt) {
			t.Errorf("expected updatedAt to advance, got %s -> %s", before.UpdatedAt, after.UpdatedAt)
		}
		if _, _, _, createProfile, update := store.calls(); createProfile != 1 || update != 1 {
			t.Errorf("expected one create from fetch and one update, got create=%d update=%d", createProfile, update)
		}
		if c.Snapshot().ProfileForm.CurrentSavings != "1000.00" {
			t.Errorf("unexpected form %+v", c.Snapshot().ProfileForm)
		}
	})

	t.Run("negative or sub-cent values are rejected", func(t *testing.T) {
		store := newFakeStore()
		c, _ := newTestCoordinator(store)

		err := c.SaveProfile(context.Background(), entity.ProfileForm{MonthlySalary: "-1"})
		if !errors.Is(err, domainerror.ErrInvalidProfileValues) {
			t.Fatalf("expected ErrInvalidProfileValues, got %v", err)
		}
		err = c.SaveProfile(context.Background(), entity.ProfileForm{CurrentSavings: "100.005"})
		if !errors.Is(err, domainerror.ErrInvalidProfileValues) {
			t.Fatalf("expected ErrInvalidProfileValues for sub-cent savings, got %v", err)
		}
		if _, _, _, createProfile, update := store.calls(); createProfile+update != 0 {
			t.Error("expected no store calls")
		}
	})
}

func TestAddToSavings(t *testing.T) {
	t.Run("non-positive amount is rejected", func(t *testing.T) {
		store := newFakeStore()
		c, _ := newTestCoordinator(store)

		for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5), decimal.RequireFromString("0.001")} {
			if err := c.AddToSavings(context.Background(), amount); !errors.Is(err, domainerror.ErrInvalidSavingsAmount) {
				t.Errorf("amount %s: expected ErrInvalidSavingsAmount, got %v", amount, err)
			}
		}
		create, list, get, createProfile, update := store.calls()
		if create+list+get+createProfile+update != 0 {
			t.Error("expected no store calls")
		}
	})

	t.Run("requires a loaded profile", func(t *testing.T) {
		store := newFakeStore()
		c, _ := newTestCoordinator(store)

		if err := c.AddToSavings(context.Background(), decimal.NewFromInt(5)); !errors.Is(err, domainerror.ErrProfileNotLoaded) {
			t.Fatalf("expected ErrProfileNotLoaded, got %v", err)
		}
	})

	t.Run("adds to current savings", func(t *testing.T) {
		store := newFakeStore()
		store.profile = &entity.FinancialProfile{
			ID:             "p-1",
			OwnerID:        owner,
			CurrentSavings: decimal.RequireFromString("100.25"),
		}
		c, _ := newTestCoordinator(store)

		if err := c.FetchProfile(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := c.AddToSavings(context.Background(), decimal.RequireFromString("50.50")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := decimal.RequireFromString("150.75")
		if got := c.Profile().CurrentSavings; !got.Equal(want) {
			t.Errorf("expected %s, got %s", want, got)
		}
		store.mu.Lock()
		stored := store.profile.CurrentSavings
		store.mu.Unlock()
		if !stored.Equal(want) {
			t.Errorf("expected store to hold %s, got %s", want, stored)
		}
	})

	t.Run("failed update leaves the profile unchanged", func(t *testing.T) {
		store := newFakeStore()
		store.profile = &entity.FinancialProfile{ID: "p-1", OwnerID: owner, CurrentSavings: decimal.NewFromInt(10)}
		c, _ := newTestCoordinator(store)
		_ = c.FetchProfile(context.Background())

		store.mu.Lock()
		store.failUpdate = true
		store.mu.Unlock()

		err := c.AddToSavings(context.Background(), decimal.NewFromInt(5))
		if !domainerror.IsRemote(err) {
			t.Fatalf("expected remote error, got %v", err)
		}
		if got := c.Profile().CurrentSavings; !got.Equal(decimal.NewFromInt(10)) {
			t.Errorf("expected savings unchanged, got %s", got)
		}
		if c.Snapshot().LastError != "Failed to add to savings" {
			t.Errorf("unexpected last error %q", c.Snapshot().LastError)
		}
	})
}

func TestOperationTimeout(t *testing.T) {
	store := newFakeStore()
	store.profile = &entity.FinancialProfile{ID: "p-1", OwnerID: owner}
	store.updateGate = make(chan struct{})
	defer close(store.updateGate)

	c, _ := newTestCoordinator(store, WithOperationTimeout(50*time.Millisecond))
	if err := c.FetchProfile(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := c.AddToSavings(context.Background(), decimal.NewFromInt(1))
	if !domainerror.IsRemote(err) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if s := c.Status(entity.ActionAddToSavings); s.State != entity.ActionIdle {
		t.Errorf("expected action back to idle, got %s", s.State)
	}
}

func TestSubscribe(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCoordinator(store)

	events, unsubscribe := c.Subscribe()
	defer unsubscribe()

	if err := c.FetchExpenses(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []entity.ActionState{entity.ActionPending, entity.ActionSuccess, entity.ActionIdle}
	for i, state := range want {
		select {
		case ev := <-events:
			if ev.Action != entity.ActionFetchExpenses || ev.Status.State != state {
				t.Errorf("event %d: expected %s/%s, got %s/%s", i, entity.ActionFetchExpenses, state, ev.Action, ev.Status.State)
			}
		case <-time.After(time.Second):
			t.Fatalf("event %d: timed out", i)
		}
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCoordinator(store)
	if err := c.AddExpense(context.Background(), validDraft("9")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := c.Snapshot()
	snap.Expenses[0].Note = "mutated"

	if c.Expenses()[0].Note == "mutated" {
		t.Error("snapshot mutation leaked into the coordinator")
	}
}
