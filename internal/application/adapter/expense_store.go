// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// ExpenseStore is the remote document store holding expenses and profiles.
// Implementations scope every query to the given owner.
type ExpenseStore interface {
	// CreateExpense persists an expense and returns the id assigned to it.
	CreateExpense(ctx context.Context, ownerID string, expense entity.Expense) (string, error)

	// ListExpenses returns every expense of the owner, newest first when orderByDateDescending is set.
	ListExpenses(ctx context.Context, ownerID string, orderByDateDescending bool) ([]entity.Expense, error)

	// GetProfile returns the owner's profile, or nil without error when none exists.
	GetProfile(ctx context.Context, ownerID string) (*entity.FinancialProfile, error)

	// CreateProfile persists a new profile and returns its id.
	CreateProfile(ctx context.Context, profile *entity.FinancialProfile) (string, error)

	// UpdateProfile replaces the stored profile identified by id.
	UpdateProfile(ctx context.Context, id string, profile *entity.FinancialProfile) error
}

// IdentityProvider resolves the authenticated owner of a session.
type IdentityProvider interface {
	// CurrentOwnerID returns the owner id, or false when nobody is authenticated.
	CurrentOwnerID() (string, bool)
}
