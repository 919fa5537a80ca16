package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// DateLayout is the calendar date format used by expense requests.
const DateLayout = "2006-01-02"

// CreateExpenseRequest represents the request body for adding an expense.
type CreateExpenseRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category" binding:"required,expense_category"`
	Note     string          `json:"note" binding:"max=500"`
	Date     string          `json:"date,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

// ToDraft converts the request into an expense draft. A missing date means now.
func (r CreateExpenseRequest) ToDraft(now time.Time) entity.ExpenseDraft {
	draft := entity.NewExpenseDraft(now)
	draft.Amount = r.Amount.String()
	draft.Category = entity.Category(r.Category)
	draft.Note = r.Note
	if r.Date != "" {
		if date, err := time.ParseInLocation(DateLayout, r.Date, now.Location()); err == nil {
			draft.Date = date
		}
	}
	return draft
}

// ExpenseResponse represents a single expense in API responses.
type ExpenseResponse struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
	Date     time.Time       `json:"date"`
}

// ExpenseListResponse represents the response for listing expenses.
type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Total    decimal.Decimal   `json:"total"`
}

// CategoryListResponse represents the closed set of categories.
type CategoryListResponse struct {
	Categories []string `json:"categories"`
	Default    string   `json:"default"`
}

// SuggestCategoryRequest represents the request body for a category suggestion.
type SuggestCategoryRequest struct {
	Note   string          `json:"note" binding:"required,max=500"`
	Amount decimal.Decimal `json:"amount"`
}

// ToExpenseResponse converts a domain Expense entity to an ExpenseResponse DTO.
func ToExpenseResponse(e entity.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:       e.ID,
		Amount:   e.Amount,
		Category: string(e.Category),
		Note:     e.Note,
		Date:     e.Date,
	}
}

// ToExpenseListResponse converts expenses to an ExpenseListResponse DTO.
func ToExpenseListResponse(expenses []entity.Expense) ExpenseListResponse {
	response := ExpenseListResponse{
		Expenses: make([]ExpenseResponse, len(expenses)),
		Total:    decimal.Zero,
	}
	for i, e := range expenses {
		response.Expenses[i] = ToExpenseResponse(e)
		response.Total = response.Total.Add(e.Amount)
	}
	return response
}

// ToCategoryListResponse lists every category.
func ToCategoryListResponse() CategoryListResponse {
	categories := entity.Categories()
	response := CategoryListResponse{
		Categories: make([]string, len(categories)),
		Default:    string(entity.DefaultCategory),
	}
	for i, c := range categories {
		response.Categories[i] = string(c)
	}
	return response
}
