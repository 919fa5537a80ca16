// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// ExpenseModel represents the expenses table in the database.
type ExpenseModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID   string          `gorm:"type:varchar(128);not null;index:idx_expenses_owner_date,priority:1"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Category  string          `gorm:"type:varchar(64);not null"`
	Note      string          `gorm:"type:text"`
	Date      time.Time       `gorm:"not null;index:idx_expenses_owner_date,priority:2"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the ExpenseModel.
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToEntity converts an ExpenseModel to a domain Expense entity.
// Categories outside the known set are passed through unchanged.
func (m *ExpenseModel) ToEntity() entity.Expense {
	return entity.Expense{
		ID:       m.ID.String(),
		OwnerID:  m.OwnerID,
		Amount:   m.Amount,
		Category: entity.Category(m.Category),
		Note:     m.Note,
		Date:     m.Date,
	}
}

// ExpenseFromEntity creates an ExpenseModel from a domain Expense entity.
// The id is left for the caller to assign.
func ExpenseFromEntity(expense entity.Expense) *ExpenseModel {
	return &ExpenseModel{
		OwnerID:  expense.OwnerID,
		Amount:   expense.Amount,
		Category: string(expense.Category),
		Note:     expense.Note,
		Date:     expense.Date,
	}
}
