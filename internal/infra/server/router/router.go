// Package router sets up the HTTP routing for the application.
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/expense-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/dto"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine            *gin.Engine
	healthController  *controller.HealthController
	expenseController *controller.ExpenseController
	profileController *controller.ProfileController
	reportController  *controller.ReportController
	writeRateLimiter  *middleware.RateLimiter
	authMiddleware    *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	expenseController *controller.ExpenseController,
	profileController *controller.ProfileController,
	reportController *controller.ReportController,
	writeRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:  healthController,
		expenseController: expenseController,
		profileController: profileController,
		reportController:  reportController,
		writeRateLimiter:  writeRateLimiter,
		authMiddleware:    authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	if err := dto.RegisterValidations(); err != nil {
		slog.Error("Failed to register request validations", "error", err)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	// Setup routes
	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// Engine returns the configured engine, or nil before Setup.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	// API v1 group
	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())

	write := r.writeRateLimiter.Middleware()

	expenses := v1.Group("/expenses")
	{
		expenses.GET("", r.expenseController.List)
		expenses.POST("", write, r.expenseController.Create)
		expenses.GET("/categories", r.expenseController.Categories)
		expenses.POST("/suggest-category", write, r.expenseController.SuggestCategory)
	}

	profile := v1.Group("/profile")
	{
		profile.GET("", r.profileController.Get)
		profile.PUT("", write, r.profileController.Save)
		profile.POST("/savings", write, r.profileController.AddToSavings)
	}

	report := v1.Group("/report")
	{
		report.GET("", r.reportController.Get)
		report.POST("/alerts/check", write, r.reportController.CheckAlerts)
	}

	v1.GET("/session/status", r.reportController.Status)
}
