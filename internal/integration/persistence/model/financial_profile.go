package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// FinancialProfileModel represents the financial_profiles table in the database.
type FinancialProfileModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID            string          `gorm:"type:varchar(128);not null;uniqueIndex"`
	MonthlySalary      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	MonthlySavingsGoal decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	CurrentSavings     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the FinancialProfileModel.
func (FinancialProfileModel) TableName() string {
	return "financial_profiles"
}

// ToEntity converts a FinancialProfileModel to a domain FinancialProfile entity.
func (m *FinancialProfileModel) ToEntity() *entity.FinancialProfile {
	return &entity.FinancialProfile{
		ID:                 m.ID.String(),
		OwnerID:            m.OwnerID,
		MonthlySalary:      m.MonthlySalary,
		MonthlySavingsGoal: m.MonthlySavingsGoal,
		CurrentSavings:     m.CurrentSavings,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FinancialProfileFromEntity creates a FinancialProfileModel from a domain
// FinancialProfile entity. The id is left for the caller to assign.
func FinancialProfileFromEntity(profile *entity.FinancialProfile) *FinancialProfileModel {
	return &FinancialProfileModel{
		OwnerID:            profile.OwnerID,
		MonthlySalary:      profile.MonthlySalary,
		MonthlySavingsGoal: profile.MonthlySavingsGoal,
		CurrentSavings:     profile.CurrentSavings,
		CreatedAt:          profile.CreatedAt,
		UpdatedAt:          profile.UpdatedAt,
	}
}

// All returns every model managed by the store, for migrations.
func All() []interface{} {
	return []interface{}{
		&ExpenseModel{},
		&FinancialProfileModel{},
	}
}
