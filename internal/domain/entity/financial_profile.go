// Package entity defines the core business entities for the domain layer.
package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FinancialProfile holds a user's income and savings figures. One per owner.
type FinancialProfile struct {
	ID                 string
	OwnerID            string
	MonthlySalary      decimal.Decimal
	MonthlySavingsGoal decimal.Decimal
	CurrentSavings     decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewFinancialProfile creates the zero-valued default profile for an owner.
func NewFinancialProfile(ownerID string, now time.Time) *FinancialProfile {
	return &FinancialProfile{
		OwnerID:            ownerID,
		MonthlySalary:      decimal.Zero,
		MonthlySavingsGoal: decimal.Zero,
		CurrentSavings:     decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// IsPersisted reports whether the store has assigned an id.
func (p *FinancialProfile) IsPersisted() bool {
	return p != nil && p.ID != ""
}

// Clone returns a copy that does not alias p.
func (p *FinancialProfile) Clone() *FinancialProfile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// ProfileForm holds the profile fields as text, the way the user edits them.
type ProfileForm struct {
	MonthlySalary      string
	MonthlySavingsGoal string
	CurrentSavings     string
}

// ProfileFormFrom formats a profile with two decimal places.
func ProfileFormFrom(p *FinancialProfile) ProfileForm {
	if p == nil {
		return ProfileForm{}
	}
	return ProfileForm{
		MonthlySalary:      p.MonthlySalary.StringFixed(2),
		MonthlySavingsGoal: p.MonthlySavingsGoal.StringFixed(2),
		CurrentSavings:     p.CurrentSavings.StringFixed(2),
	}
}

// ProfileValues is the parsed content of a ProfileForm.
type ProfileValues struct {
	MonthlySalary      decimal.Decimal
	MonthlySavingsGoal decimal.Decimal
	CurrentSavings     decimal.Decimal
}

// Parse converts the form to numbers. It returns false when any field is not
// a decimal or is negative. Empty fields count as zero.
func (f ProfileForm) Parse() (ProfileValues, bool) {
	salary, ok := parseNonNegative(f.MonthlySalary)
	if !ok {
		return ProfileValues{}, false
	}
	goal, ok := parseNonNegative(f.MonthlySavingsGoal)
	if !ok {
		return ProfileValues{}, false
	}
	savings, ok := parseNonNegative(f.CurrentSavings)
	if !ok {
		return ProfileValues{}, false
	}
	return ProfileValues{
		MonthlySalary:      salary,
		MonthlySavingsGoal: goal,
		CurrentSavings:     savings,
	}, true
}

func parseNonNegative(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() || !IsMoneyAmount(d) {
		return decimal.Zero, false
	}
	return d, true
}
