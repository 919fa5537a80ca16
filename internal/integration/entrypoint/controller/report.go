package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expense-tracker/backend/internal/application/usecase/alert"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/infra/session"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/dto"
)

// ReportController handles report and session status endpoints.
type ReportController struct {
	registry     *session.Registry
	checkUseCase *alert.CheckBudgetUseCase
}

// NewReportController creates a new report controller instance.
func NewReportController(registry *session.Registry, checkUseCase *alert.CheckBudgetUseCase) *ReportController {
	return &ReportController{
		registry:     registry,
		checkUseCase: checkUseCase,
	}
}

// Get handles GET /report requests.
// The expenses and profile are reloaded before the report is computed.
func (c *ReportController) Get(ctx *gin.Context) {
	s, _, ok := ownerSession(ctx, c.registry)
	if !ok {
		return
	}

	var query dto.ReportQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		bindError(ctx, err, domainerror.ErrCodeInvalidTimeFrame)
		return
	}

	if query.TimeFrame != "" {
		if err := s.Report.SetTimeFrame(entity.TimeFrame(query.TimeFrame)); err != nil {
			respondError(ctx, err, "Failed to select time frame")
			return
		}
	}

	if err := s.Refresh(ctx.Request.Context()); err != nil {
		respondError(ctx, err, "Failed to load report data")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReportResponse(s.Report.Report()))
}

// Status handles GET /session/status requests.
func (c *ReportController) Status(ctx *gin.Context) {
	s, _, ok := ownerSession(ctx, c.registry)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSessionStatusResponse(s.Coordinator.Snapshot(), s.Report.SelectedTimeFrame()))
}

// CheckAlerts handles POST /report/alerts/check requests.
func (c *ReportController) CheckAlerts(ctx *gin.Context) {
	s, owner, ok := ownerSession(ctx, c.registry)
	if !ok {
		return
	}

	target := session.AlertTargetFor(owner, s.Coordinator)
	if err := target.Refresh(ctx.Request.Context()); err != nil {
		respondError(ctx, err, "Failed to load report data")
		return
	}

	output, err := c.checkUseCase.Execute(ctx.Request.Context(), target.Input)
	if err != nil {
		respondError(ctx, err, "Failed to check budget")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAlertCheckResponse(output))
}
