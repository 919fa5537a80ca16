// Package entity defines the core business entities for the domain layer.
package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyDecimals is the number of fractional digits stores keep for money.
const MoneyDecimals = 2

// IsMoneyAmount reports whether d fits in MoneyDecimals fractional digits.
// Trailing zeros do not count, so "12.500" is accepted.
func IsMoneyAmount(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyDecimals))
}

// Expense is a single spending record owned by one user.
// ID is empty until the store has persisted the record.
type Expense struct {
	ID       string
	Amount   decimal.Decimal
	Category Category
	Note     string
	Date     time.Time
	OwnerID  string
}

// NewExpense creates an unsaved Expense.
func NewExpense(ownerID string, amount decimal.Decimal, category Category, note string, date time.Time) Expense {
	return Expense{
		Amount:   amount,
		Category: category,
		Note:     note,
		Date:     date,
		OwnerID:  ownerID,
	}
}

// IsPersisted reports whether the store has assigned an id.
func (e Expense) IsPersisted() bool {
	return e.ID != ""
}

// ExpenseDraft holds the add-expense form as entered by the user.
// Amount is kept as raw text until submission.
type ExpenseDraft struct {
	Amount   string
	Category Category
	Note     string
	Date     time.Time
}

// NewExpenseDraft returns a cleared form dated now.
func NewExpenseDraft(now time.Time) ExpenseDraft {
	return ExpenseDraft{
		Category: DefaultCategory,
		Date:     now,
	}
}

// ParsedAmount parses the raw amount text.
func (d ExpenseDraft) ParsedAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(d.Amount))
}
