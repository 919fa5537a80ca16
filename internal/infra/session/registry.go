// Package session keeps one coordinator and report session per
// authenticated owner.
package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/application/usecase/alert"
	"github.com/expense-tracker/backend/internal/application/usecase/coordinator"
	"github.com/expense-tracker/backend/internal/application/usecase/report"
	"github.com/expense-tracker/backend/internal/integration/email"
)

// DefaultIdleTTL is used when no idle TTL is configured.
const DefaultIdleTTL = 30 * time.Minute

// Owner identifies the user a session belongs to.
type Owner struct {
	ID    string
	Email string
	Name  string
}

// StaticIdentity resolves to one fixed owner.
type StaticIdentity struct {
	OwnerID string
}

// CurrentOwnerID returns the bound owner.
func (i StaticIdentity) CurrentOwnerID() (string, bool) {
	return i.OwnerID, i.OwnerID != ""
}

// Session is the state of one owner.
type Session struct {
	Coordinator *coordinator.Coordinator
	Report      *report.Session

	owner    Owner
	lastSeen time.Time
}

// Config holds registry settings.
type Config struct {
	IdleTTL          time.Duration
	OperationTimeout time.Duration
}

// Registry creates sessions on first use and evicts idle ones.
type Registry struct {
	store  adapter.ExpenseStore
	clock  adapter.Clock
	logger *slog.Logger
	cfg    Config

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(store adapter.ExpenseStore, cfg Config, clock adapter.Clock, logger *slog.Logger) *Registry {
	if clock == nil {
		clock = adapter.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	return &Registry{
		store:    store,
		clock:    clock,
		logger:   logger.With("component", "session_registry"),
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Get returns the owner's session, creating it when needed.
func (r *Registry) Get(owner Owner) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	if s, ok := r.sessions[owner.ID]; ok {
		s.lastSeen = now
		if owner.Email != "" {
			s.owner.Email = owner.Email
		}
		if owner.Name != "" {
			s.owner.Name = owner.Name
		}
		return s
	}

	c := coordinator.New(r.store, StaticIdentity{OwnerID: owner.ID},
		coordinator.WithClock(r.clock),
		coordinator.WithLogger(r.logger.With("owner_id", owner.ID)),
		coordinator.WithOperationTimeout(r.cfg.OperationTimeout),
	)
	s := &Session{
		Coordinator: c,
		Report:      report.NewSession(c, r.clock),
		owner:       owner,
		lastSeen:    now,
	}
	r.sessions[owner.ID] = s

	r.logger.Debug("Session created", "owner_id", owner.ID)
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict removes sessions idle for longer than the idle TTL and returns how
// many were removed.
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.clock.Now().Add(-r.cfg.IdleTTL)
	evicted := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Debug("Idle sessions evicted", "count", evicted)
	}
	return evicted
}

// Run evicts idle sessions until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.IdleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}

// AlertTargets lists every live session with an email address, ordered by
// owner id.
func (r *Registry) AlertTargets() []email.AlertTarget {
	type entry struct {
		owner       Owner
		coordinator *coordinator.Coordinator
	}

	r.mu.Lock()
	entries := make([]entry, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.owner.Email != "" {
			entries = append(entries, entry{owner: s.owner, coordinator: s.Coordinator})
		}
	}
	r.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].owner.ID < entries[j].owner.ID })

	targets := make([]email.AlertTarget, len(entries))
	for i, e := range entries {
		targets[i] = AlertTargetFor(e.owner, e.coordinator)
	}
	return targets
}

// AlertTargetFor builds the budget check input of an owner. Refresh loads
// the latest expenses and profile.
func AlertTargetFor(owner Owner, c *coordinator.Coordinator) email.AlertTarget {
	return email.AlertTarget{
		Input: alert.CheckBudgetInput{
			OwnerID: owner.ID,
			Email:   owner.Email,
			Name:    owner.Name,
			Source:  c,
		},
		Refresh: func(ctx context.Context) error {
			return refresh(ctx, c)
		},
	}
}

// Refresh reloads the session's expenses and profile from the store.
func (s *Session) Refresh(ctx context.Context) error {
	return refresh(ctx, s.Coordinator)
}

func refresh(ctx context.Context, c *coordinator.Coordinator) error {
	if err := c.FetchExpenses(ctx); err != nil {
		return err
	}
	return c.FetchProfile(ctx)
}
