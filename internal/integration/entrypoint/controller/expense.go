package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/application/usecase/suggestion"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/infra/session"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/dto"
)

// ExpenseController handles expense endpoints.
type ExpenseController struct {
	registry       *session.Registry
	suggestUseCase *suggestion.SuggestCategoryUseCase
	clock          adapter.Clock
}

// NewExpenseController creates a new expense controller instance.
func NewExpenseController(
	registry *session.Registry,
	suggestUseCase *suggestion.SuggestCategoryUseCase,
	clock adapter.Clock,
) *ExpenseController {
	if clock == nil {
		clock = adapter.SystemClock{}
	}
	return &ExpenseController{
		registry:       registry,
		suggestUseCase: suggestUseCase,
		clock:          clock,
	}
}

// List handles GET /expenses requests.
func (c *ExpenseController) List(ctx *gin.Context) {
	s, _, ok := ownerSession(ctx, c.registry)
	if !ok {
		return
	}

	if err := s.Coordinator.FetchExpenses(ctx.Request.Context()); err != nil {
		respondError(ctx, err, "Failed to retrieve expenses")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToExpenseListResponse(s.Coordinator.Expenses()))
}

// Create handles POST /expenses requests.
func (c *ExpenseController) Create(ctx *gin.Context) {
	s, _, ok := ownerSession(ctx, c.registry)
	if !ok {
		return
	}

	var req dto.CreateExpenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err, domainerror.ErrCodeMissingFields)
		return
	}

	if err := s.Coordinator.AddExpense(ctx.Request.Context(), req.ToDraft(c.clock.Now())); err != nil {
		respondError(ctx, err, "Failed to add expense")
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToExpenseListResponse(s.Coordinator.Expenses()))
}

// Categories handles GET /expenses/categories requests.
func (c *ExpenseController) Categories(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.ToCategoryListResponse())
}

// SuggestCategory handles POST /expenses/suggest-category requests.
func (c *ExpenseController) SuggestCategory(ctx *gin.Context) {
	var req dto.SuggestCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err, domainerror.ErrCodeMissingFields)
		return
	}

	output, err := c.suggestUseCase.Execute(ctx.Request.Context(), suggestion.SuggestCategoryInput{
		Note:   req.Note,
		Amount: req.Amount,
	})
	if err != nil {
		respondError(ctx, err, "Failed to suggest a category")
		return
	}

	ctx.JSON(http.StatusOK, output)
}
