package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

var errStoreDown = errors.New("store unavailable")

type fakeStore struct {
	mu       sync.Mutex
	expenses []entity.Expense
	profile  *entity.FinancialProfile
	nextID   int

	createExpenseCalls int
	listCalls          int
	getProfileCalls    int
	createProfileCalls int
	updateProfileCalls int

	inFlightLists    int
	maxInFlightLists int

	failCreateExpense bool
	failList          bool
	failUpdate        bool

	// listGate, when set, blocks ListExpenses until closed.
	listGate    chan struct{}
	listEntered chan struct{}
	// updateGate, when set, blocks UpdateProfile until closed or ctx is done.
	updateGate chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) CreateExpense(ctx context.Context, ownerID string, expense entity.Expense) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createExpenseCalls++
	if s.failCreateExpense {
		return "", errStoreDown
	}
	s.nextID++
	expense.ID = fmt.Sprintf("exp-%d", s.nextID)
	expense.OwnerID = ownerID
	s.expenses = append(s.expenses, expense)
	return expense.ID, nil
}

func (s *fakeStore) ListExpenses(ctx context.Context, ownerID string, orderByDateDescending bool) ([]entity.Expense, error) {
	s.mu.Lock()
	s.listCalls++
	s.inFlightLists++
	if s.inFlightLists > s.maxInFlightLists {
		s.maxInFlightLists = s.inFlightLists
	}
	gate, entered := s.listGate, s.listEntered
	s.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlightLists--
	if s.failList {
		return nil, errStoreDown
	}

	out := make([]entity.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	if orderByDateDescending {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	}
	return out, nil
}

func (s *fakeStore) GetProfile(ctx context.Context, ownerID string) (*entity.FinancialProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getProfileCalls++
	if s.profile == nil || s.profile.OwnerID != ownerID {
		return nil, nil
	}
	return s.profile.Clone(), nil
}

func (s *fakeStore) CreateProfile(ctx context.Context, profile *entity.FinancialProfile) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createProfileCalls++
	s.nextID++
	stored := profile.Clone()
	stored.ID = fmt.Sprintf("profile-%d", s.nextID)
	s.profile = stored
	return stored.ID, nil
}

func (s *fakeStore) UpdateProfile(ctx context.Context, id string, profile *entity.FinancialProfile) error {
	s.mu.Lock()
	s.updateProfileCalls++
	gate := s.updateGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate {
		return errStoreDown
	}
	stored := profile.Clone()
	stored.ID = id
	s.profile = stored
	return nil
}

func (s *fakeStore) calls() (create, list, get, createProfile, update int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createExpenseCalls, s.listCalls, s.getProfileCalls, s.createProfileCalls, s.updateProfileCalls
}

type staticIdentity struct {
	ownerID string
}

func (i staticIdentity) CurrentOwnerID() (string, bool) {
	return i.ownerID, i.ownerID != ""
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
