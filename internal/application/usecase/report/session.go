// Package report derives the time-frame bound expense report of one session.
package report

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/application/usecase/aggregation"
	"github.com/expense-tracker/backend/internal/application/usecase/coordinator"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// ChartCategoryLimit is the number of categories shown in the category chart.
const ChartCategoryLimit = 6

// Source provides the session state the report is computed from.
type Source interface {
	Snapshot() coordinator.Snapshot
}

// BudgetOverview compares the profile's salary with the spending of the
// selected time frame.
type BudgetOverview struct {
	Income     decimal.Decimal
	TotalSpent decimal.Decimal
	Status     aggregation.BudgetStatus
	HasProfile bool
}

// Report holds every derived view of the selected time frame.
type Report struct {
	TimeFrame   entity.TimeFrame
	GeneratedAt time.Time
	Expenses    []entity.Expense
	Total       decimal.Decimal
	Chart       []aggregation.CategoryAmount
	Breakdown   []aggregation.CategoryShare
	Trend       []aggregation.DailyAmount
	Budget      BudgetOverview
}

// Session is a report view bound to a selected time frame. The time frame is
// its only state; every read is recomputed from the source.
type Session struct {
	source Source
	clock  adapter.Clock

	mu        sync.RWMutex
	timeFrame entity.TimeFrame
}

// NewSession creates a Session with the default time frame.
func NewSession(source Source, clock adapter.Clock) *Session {
	if clock == nil {
		clock = adapter.SystemClock{}
	}
	return &Session{
		source:    source,
		clock:     clock,
		timeFrame: entity.DefaultTimeFrame,
	}
}

// SelectedTimeFrame returns the current time frame.
func (s *Session) SelectedTimeFrame() entity.TimeFrame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeFrame
}

// SetTimeFrame selects frame for subsequent reads.
func (s *Session) SetTimeFrame(frame entity.TimeFrame) error {
	if !frame.IsValid() {
		return domainerror.NewValidationError(domainerror.ErrCodeInvalidTimeFrame, "unknown time frame", domainerror.ErrInvalidTimeFrame)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeFrame = frame
	return nil
}

// FilteredExpenses returns the expenses inside the selected time frame.
func (s *Session) FilteredExpenses() []entity.Expense {
	snap := s.source.Snapshot()
	return aggregation.FilterByTimeFrame(snap.Expenses, s.SelectedTimeFrame(), s.clock.Now())
}

// CategoryChart returns the top categories of the selected time frame.
func (s *Session) CategoryChart() []aggregation.CategoryAmount {
	return aggregation.TopCategories(s.FilteredExpenses(), ChartCategoryLimit)
}

// CategoryBreakdown returns every category of the selected time frame with
// its share of the total.
func (s *Session) CategoryBreakdown() []aggregation.CategoryShare {
	return aggregation.CategoryBreakdown(s.FilteredExpenses())
}

// TrendSeries returns the daily totals of the selected time frame.
func (s *Session) TrendSeries() []aggregation.DailyAmount {
	return aggregation.DailyTrend(s.FilteredExpenses())
}

// BudgetOverview returns the budget health of the selected time frame.
func (s *Session) BudgetOverview() BudgetOverview {
	snap := s.source.Snapshot()
	filtered := aggregation.FilterByTimeFrame(snap.Expenses, s.SelectedTimeFrame(), s.clock.Now())
	return budgetOverview(snap.Profile, aggregation.TotalAmount(filtered))
}

// Report computes every view from one snapshot.
func (s *Session) Report() Report {
	snap := s.source.Snapshot()
	frame := s.SelectedTimeFrame()
	now := s.clock.Now()

	filtered := aggregation.FilterByTimeFrame(snap.Expenses, frame, now)
	total := aggregation.TotalAmount(filtered)

	return Report{
		TimeFrame:   frame,
		GeneratedAt: now,
		Expenses:    filtered,
		Total:       total,
		Chart:       aggregation.TopCategories(filtered, ChartCategoryLimit),
		Breakdown:   aggregation.CategoryBreakdown(filtered),
		Trend:       aggregation.DailyTrend(filtered),
		Budget:      budgetOverview(snap.Profile, total),
	}
}

func budgetOverview(profile *entity.FinancialProfile, spent decimal.Decimal) BudgetOverview {
	status := aggregation.BudgetStatusForProfile(profile, spent)
	return BudgetOverview{
		Income:     status.Income,
		TotalSpent: spent,
		Status:     status,
		HasProfile: profile != nil,
	}
}
