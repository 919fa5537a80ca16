package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/usecase/alert"
	"github.com/expense-tracker/backend/internal/application/usecase/coordinator"
	"github.com/expense-tracker/backend/internal/application/usecase/report"
	"github.com/expense-tracker/backend/internal/domain/entity"
)

// ReportQuery represents the query parameters of GET /report.
type ReportQuery struct {
	TimeFrame string `form:"time_frame" binding:"omitempty,oneof=this-week this-month last-30-days last-90-days"`
}

// CategoryAmountResponse is one bar of the category chart.
type CategoryAmountResponse struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// CategoryShareResponse is one row of the category breakdown.
type CategoryShareResponse struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  float64         `json:"percent"`
}

// TrendPointResponse is the spending of one day.
type TrendPointResponse struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// BudgetResponse represents the budget overview.
type BudgetResponse struct {
	HasProfile           bool            `json:"has_profile"`
	Income               decimal.Decimal `json:"income"`
	TotalSpent           decimal.Decimal `json:"total_spent"`
	Remaining            decimal.Decimal `json:"remaining"`
	PercentOfIncomeSpent float64         `json:"percent_of_income_spent"`
	Progress             float64         `json:"progress"`
	IsOverBudget         bool            `json:"is_over_budget"`
}

// ReportResponse represents the report of one time frame.
type ReportResponse struct {
	TimeFrame      string                   `json:"time_frame"`
	TimeFrameLabel string                   `json:"time_frame_label"`
	GeneratedAt    time.Time                `json:"generated_at"`
	Expenses       []ExpenseResponse        `json:"expenses"`
	Total          decimal.Decimal          `json:"total"`
	Chart          []CategoryAmountResponse `json:"chart"`
	Breakdown      []CategoryShareResponse  `json:"breakdown"`
	Trend          []TrendPointResponse     `json:"trend"`
	Budget         BudgetResponse           `json:"budget"`
}

// ActionStatusResponse represents the state of one coordinator action.
type ActionStatusResponse struct {
	Action      string     `json:"action"`
	State       string     `json:"state"`
	LastOutcome string     `json:"last_outcome,omitempty"`
	Error       string     `json:"error,omitempty"`
	ErrorCode   string     `json:"error_code,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// SessionStatusResponse represents every action status of the session.
type SessionStatusResponse struct {
	OwnerID   string                 `json:"owner_id"`
	TimeFrame string                 `json:"time_frame"`
	Actions   []ActionStatusResponse `json:"actions"`
	LastError string                 `json:"last_error,omitempty"`
}

// AlertCheckResponse represents the result of a budget alert check.
type AlertCheckResponse struct {
	Period      string         `json:"period"`
	OverBudget  bool           `json:"over_budget"`
	AlertSent   bool           `json:"alert_sent"`
	AlreadySent bool           `json:"already_sent"`
	Budget      BudgetResponse `json:"budget"`
}

// ToBudgetResponse converts a budget overview to a BudgetResponse DTO.
func ToBudgetResponse(b report.BudgetOverview) BudgetResponse {
	return BudgetResponse{
		HasProfile:           b.HasProfile,
		Income:               b.Income,
		TotalSpent:           b.TotalSpent,
		Remaining:            b.Status.Remaining,
		PercentOfIncomeSpent: b.Status.PercentOfIncomeSpent,
		Progress:             b.Status.Progress(),
		IsOverBudget:         b.Status.IsOverBudget,
	}
}

// ToReportResponse converts a report to a ReportResponse DTO.
func ToReportResponse(r report.Report) ReportResponse {
	response := ReportResponse{
		TimeFrame:      string(r.TimeFrame),
		TimeFrameLabel: r.TimeFrame.Label(),
		GeneratedAt:    r.GeneratedAt,
		Expenses:       make([]ExpenseResponse, len(r.Expenses)),
		Total:          r.Total,
		Chart:          make([]CategoryAmountResponse, len(r.Chart)),
		Breakdown:      make([]CategoryShareResponse, len(r.Breakdown)),
		Trend:          make([]TrendPointResponse, len(r.Trend)),
		Budget:         ToBudgetResponse(r.Budget),
	}
	for i, e := range r.Expenses {
		response.Expenses[i] = ToExpenseResponse(e)
	}
	for i, c := range r.Chart {
		response.Chart[i] = CategoryAmountResponse{Category: string(c.Category), Amount: c.Amount}
	}
	for i, s := range r.Breakdown {
		response.Breakdown[i] = CategoryShareResponse{Category: string(s.Category), Amount: s.Amount, Percent: s.Percent}
	}
	for i, d := range r.Trend {
		response.Trend[i] = TrendPointResponse{Date: d.Day.Format(DateLayout), Amount: d.Amount}
	}
	return response
}

// ToSessionStatusResponse converts a coordinator snapshot to a SessionStatusResponse DTO.
func ToSessionStatusResponse(snap coordinator.Snapshot, frame entity.TimeFrame) SessionStatusResponse {
	response := SessionStatusResponse{
		OwnerID:   snap.OwnerID,
		TimeFrame: string(frame),
		Actions:   make([]ActionStatusResponse, 0, len(snap.Actions)),
		LastError: snap.LastError,
	}
	for _, action := range entity.Actions() {
		status, ok := snap.Actions[action]
		if !ok {
			continue
		}
		item := ActionStatusResponse{
			Action:      string(action),
			State:       string(status.State),
			LastOutcome: string(status.LastOutcome),
		}
		if !status.UpdatedAt.IsZero() {
			updatedAt := status.UpdatedAt
			item.UpdatedAt = &updatedAt
		}
		if status.LastError != nil {
			item.Error = status.LastError.Message
			item.ErrorCode = status.LastError.Code
		}
		response.Actions = append(response.Actions, item)
	}
	return response
}

// ToAlertCheckResponse converts a budget check result to an AlertCheckResponse DTO.
func ToAlertCheckResponse(output *alert.CheckBudgetOutput) AlertCheckResponse {
	return AlertCheckResponse{
		Period:      output.Period,
		OverBudget:  output.OverBudget,
		AlertSent:   output.AlertSent,
		AlreadySent: output.AlreadySent,
		Budget:      ToBudgetResponse(output.Budget),
	}
}
