package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// SaveProfileRequest represents the request body for saving the profile.
type SaveProfileRequest struct {
	MonthlySalary      decimal.Decimal `json:"monthly_salary"`
	MonthlySavingsGoal decimal.Decimal `json:"monthly_savings_goal"`
	CurrentSavings     decimal.Decimal `json:"current_savings"`
}

// ToForm converts the request into a profile form.
func (r SaveProfileRequest) ToForm() entity.ProfileForm {
	return entity.ProfileForm{
		MonthlySalary:      r.MonthlySalary.String(),
		MonthlySavingsGoal: r.MonthlySavingsGoal.String(),
		CurrentSavings:     r.CurrentSavings.String(),
	}
}

// AddToSavingsRequest represents the request body for a savings deposit.
type AddToSavingsRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ProfileResponse represents the financial profile in API responses.
type ProfileResponse struct {
	ID                 string          `json:"id"`
	MonthlySalary      decimal.Decimal `json:"monthly_salary"`
	MonthlySavingsGoal decimal.Decimal `json:"monthly_savings_goal"`
	CurrentSavings     decimal.Decimal `json:"current_savings"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToProfileResponse converts a domain FinancialProfile to a ProfileResponse DTO.
func ToProfileResponse(p *entity.FinancialProfile) ProfileResponse {
	return ProfileResponse{
		ID:                 p.ID,
		MonthlySalary:      p.MonthlySalary,
		MonthlySavingsGoal: p.MonthlySavingsGoal,
		CurrentSavings:     p.CurrentSavings,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
