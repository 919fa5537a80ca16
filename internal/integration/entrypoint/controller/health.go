// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/expense-tracker/backend/internal/application/adapter"
)

// HealthController reports whether the expense store behind the API is reachable.
type HealthController struct {
	backend    string
	storeCheck func() bool
	clock      adapter.Clock
}

// StoreHealth describes the configured expense store.
type StoreHealth struct {
	Backend string `json:"backend"`
	Status  string `json:"status"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string      `json:"status"`
	Store     StoreHealth `json:"store"`
	Timestamp string      `json:"timestamp"`
}

// NewHealthController creates a health controller for the named store backend
// (postgres, sqlite or redis).
func NewHealthController(backend string, storeCheck func() bool, clock adapter.Clock) *HealthController {
	if clock == nil {
		clock = adapter.SystemClock{}
	}
	return &HealthController{
		backend:    backend,
		storeCheck: storeCheck,
		clock:      clock,
	}
}

// Check handles GET /health requests. An unreachable store answers 503.
func (h *HealthController) Check(ctx *gin.Context) {
	status, code := "ok", http.StatusOK
	store := StoreHealth{Backend: h.backend, Status: "connected"}

	if h.storeCheck == nil || !h.storeCheck() {
		store.Status = "disconnected"
		status, code = "degraded", http.StatusServiceUnavailable
	}

	ctx.JSON(code, HealthResponse{
		Status:    status,
		Store:     store,
		Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
	})
}
