package aggregation

import (
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// BudgetStatus summarizes spending against income.
type BudgetStatus struct {
	Income               decimal.Decimal
	TotalSpent           decimal.Decimal
	Remaining            decimal.Decimal
	PercentOfIncomeSpent float64
	IsOverBudget         bool
}

// ComputeBudgetStatus compares totalSpent with income. Income of zero yields
// a zero percentage.
func ComputeBudgetStatus(income, totalSpent decimal.Decimal) BudgetStatus {
	remaining := income.Sub(totalSpent)
	return BudgetStatus{
		Income:               income,
		TotalSpent:           totalSpent,
		Remaining:            remaining,
		PercentOfIncomeSpent: percentOf(totalSpent, income),
		IsOverBudget:         remaining.IsNegative(),
	}
}

// BudgetStatusForProfile uses the profile's monthly salary as income. A nil
// profile counts as zero income.
func BudgetStatusForProfile(profile *entity.FinancialProfile, totalSpent decimal.Decimal) BudgetStatus {
	income := decimal.Zero
	if profile != nil {
		income = profile.MonthlySalary
	}
	return ComputeBudgetStatus(income, totalSpent)
}

// Progress is the spent fraction of income capped at 1, for progress bars.
func (b BudgetStatus) Progress() float64 {
	p := b.PercentOfIncomeSpent / 100
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
