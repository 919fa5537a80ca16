package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/infra/session"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/dto"
)

// ProfileController handles financial profile endpoints.
type ProfileController struct {
	registry *session.Registry
}

// NewProfileController creates a new profile controller instance.
func NewProfileController(registry *session.Registry) *ProfileController {
	return &ProfileController{
		registry: registry,
	}
}

// Get handles GET /profile requests.
func (c *ProfileController) Get(ctx *gin.Context) {
	s, _, ok := ownerSession(ctx, c.registry)
	if !ok {
		return
	}

	if err := s.Coordinator.FetchProfile(ctx.Request.Context()); err != nil {
		respondError(ctx, err, "Failed to retrieve profile")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProfileResponse(s.Coordinator.Profile()))
}

// Save handles PUT /profile requests.
func (c *ProfileController) Save(ctx *gin.Context) {
	s, _, ok := ownerSession(ctx, c.registry)
	if !ok {
		return
	}

	var req dto.SaveProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err, domainerror.ErrCodeInvalidProfileValues)
		return
	}

	if err := ensureProfile(ctx.Request.Context(), s); err != nil {
		respondError(ctx, err, "Failed to retrieve profile")
		return
	}

	if err := s.Coordinator.SaveProfile(ctx.Request.Context(), req.ToForm()); err != nil {
		respondError(ctx, err, "Failed to save profile")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProfileResponse(s.Coordinator.Profile()))
}

// AddToSavings handles POST /profile/savings requests.
func (c *ProfileController) AddToSavings(ctx *gin.Context) {
	s, _, ok := ownerSession(ctx, c.registry)
	if !ok {
		return
	}

	var req dto.AddToSavingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err, domainerror.ErrCodeInvalidSavingsAmount)
		return
	}

	if err := ensureProfile(ctx.Request.Context(), s); err != nil {
		respondError(ctx, err, "Failed to retrieve profile")
		return
	}

	if err := s.Coordinator.AddToSavings(ctx.Request.Context(), req.Amount); err != nil {
		respondError(ctx, err, "Failed to add to savings")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProfileResponse(s.Coordinator.Profile()))
}

// ensureProfile loads the profile the first time a session writes to it.
func ensureProfile(ctx context.Context, s *session.Session) error {
	if s.Coordinator.Profile().IsPersisted() {
		return nil
	}
	return s.Coordinator.FetchProfile(ctx)
}
