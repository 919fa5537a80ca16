// Package alert contains the budget alert use case.
package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/application/usecase/report"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// BudgetAlertTemplate is the name of the email template for budget alerts.
const BudgetAlertTemplate = "budget_alert"

// periodLayout keys ledger entries by calendar month.
const periodLayout = "2006-01"

// BudgetAlertData contains data for the budget alert email template.
type BudgetAlertData struct {
	UserName      string
	Period        string
	MonthlySalary string
	TotalSpent    string
	OverBy        string
	PercentSpent  string
}

// CheckBudgetInput represents the input for a budget check.
type CheckBudgetInput struct {
	OwnerID string
	Email   string
	Name    string
	Source  report.Source
}

// CheckBudgetOutput represents the result of a budget check.
type CheckBudgetOutput struct {
	Period      string
	OverBudget  bool
	AlertSent   bool
	AlreadySent bool
	Budget      report.BudgetOverview
}

// CheckBudgetUseCase sends one over-budget email per owner per month.
type CheckBudgetUseCase struct {
	ledger   adapter.AlertLedger
	renderer adapter.EmailRenderer
	sender   adapter.EmailSender
	clock    adapter.Clock
	logger   *slog.Logger
}

// NewCheckBudgetUseCase creates a new CheckBudgetUseCase instance. A nil
// sender disables delivery.
func NewCheckBudgetUseCase(
	ledger adapter.AlertLedger,
	renderer adapter.EmailRenderer,
	sender adapter.EmailSender,
	clock adapter.Clock,
	logger *slog.Logger,
) *CheckBudgetUseCase {
	if clock == nil {
		clock = adapter.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckBudgetUseCase{
		ledger:   ledger,
		renderer: renderer,
		sender:   sender,
		clock:    clock,
		logger:   logger.With("component", "budget_alert"),
	}
}

// Execute checks this month's spending and sends the alert when the owner is
// over budget and has not been alerted for the month yet.
func (uc *CheckBudgetUseCase) Execute(ctx context.Context, input CheckBudgetInput) (*CheckBudgetOutput, error) {
	if input.OwnerID == "" {
		return nil, domainerror.NewValidationError(domainerror.ErrCodeUnauthenticated, "User not authenticated", domainerror.ErrUnauthenticated)
	}
	if input.Source == nil {
		return nil, domainerror.NewValidationError(domainerror.ErrCodeProfileNotLoaded, "profile must be loaded first", domainerror.ErrProfileNotLoaded)
	}

	now := uc.clock.Now()
	session := report.NewSession(input.Source, uc.clock)
	overview := session.BudgetOverview()

	output := &CheckBudgetOutput{
		Period:     now.Format(periodLayout),
		OverBudget: overview.Status.IsOverBudget,
		Budget:     overview,
	}

	// Without a salary every expense is over budget; there is nothing to warn about.
	if !output.OverBudget || !overview.Income.IsPositive() {
		return output, nil
	}
	if uc.sender == nil || uc.renderer == nil {
		return nil, domainerror.NewEmailError(domainerror.ErrCodeEmailNotConfigured, "budget alerts are not configured", domainerror.ErrEmailNotConfigured)
	}

	logger := uc.logger.With("owner_id", input.OwnerID, "period", output.Period)

	first, err := uc.ledger.MarkSent(ctx, input.OwnerID, output.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to record budget alert: %w", err)
	}
	if !first {
		output.AlreadySent = true
		return output, nil
	}

	if err := uc.send(ctx, input, overview, output.Period); err != nil {
		if forgetErr := uc.ledger.Forget(ctx, input.OwnerID, output.Period); forgetErr != nil {
			logger.Error("Failed to release budget alert record", "error", forgetErr)
		}
		return nil, err
	}

	logger.Info("Budget alert sent")
	output.AlertSent = true
	return output, nil
}

func (uc *CheckBudgetUseCase) send(ctx context.Context, input CheckBudgetInput, overview report.BudgetOverview, period string) error {
	data := BudgetAlertData{
		UserName:      input.Name,
		Period:        period,
		MonthlySalary: overview.Income.StringFixed(2),
		TotalSpent:    overview.TotalSpent.StringFixed(2),
		OverBy:        overview.Status.Remaining.Neg().StringFixed(2),
		PercentSpent:  decimal.NewFromFloat(overview.Status.PercentOfIncomeSpent).StringFixed(1),
	}

	html, text, err := uc.renderer.Render(BudgetAlertTemplate, data)
	if err != nil {
		return domainerror.NewEmailError(domainerror.ErrCodeTemplateRenderFailed, "failed to render budget alert", err)
	}

	_, err = uc.sender.Send(ctx, adapter.SendEmailInput{
		To:       input.Email,
		Name:     input.Name,
		Subject:  fmt.Sprintf("You are over budget for %s", period),
		HTML:     html,
		Text:     text,
		Category: BudgetAlertTemplate,
	})
	if err != nil {
		return domainerror.NewEmailError(domainerror.ErrCodeEmailSendFailed, "failed to send budget alert", err)
	}
	return nil
}
