// Package dependency provides dependency injection for the application.
package dependency

import (
	"log/slog"
	"time"

	"github.com/expense-tracker/backend/config"
	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/application/usecase/alert"
	"github.com/expense-tracker/backend/internal/application/usecase/suggestion"
	"github.com/expense-tracker/backend/internal/infra/server/router"
	"github.com/expense-tracker/backend/internal/infra/session"
	"github.com/expense-tracker/backend/internal/integration/adapters"
	"github.com/expense-tracker/backend/internal/integration/email"
	"github.com/expense-tracker/backend/internal/integration/email/templates"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/expense-tracker/backend/internal/integration/entrypoint/middleware"
)

// Injector holds all application dependencies.
type Injector struct {
	Config          *config.Config
	Backend         *Backend
	Registry        *session.Registry
	TokenService    adapter.TokenService
	RateLimiter     *middleware.RateLimiter
	AlertWorker     *email.Worker
	CheckBudget     *alert.CheckBudgetUseCase
	SuggestCategory *suggestion.SuggestCategoryUseCase
	Router          *router.Router
}

// Options overrides collaborators, mostly for tests.
type Options struct {
	Clock       adapter.Clock
	EmailSender adapter.EmailSender
	Suggester   adapter.CategorySuggester
	Logger      *slog.Logger
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, backend *Backend, opts Options) *Injector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = adapter.SystemClock{}
	}

	// Create sessions
	registry := session.NewRegistry(backend.Store, session.Config{
		IdleTTL:          cfg.Coordinator.SessionIdleTTL,
		OperationTimeout: cfg.Coordinator.OperationTimeout,
	}, clock, logger)

	// Create adapters/services
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	var suggester adapter.CategorySuggester = adapters.NewGeminiService(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
	if opts.Suggester != nil {
		suggester = opts.Suggester
	}

	sender := opts.EmailSender
	if sender == nil && cfg.Email.ResendAPIKey != "" {
		sender = email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	var renderer adapter.EmailRenderer
	if r, err := templates.NewRenderer(); err != nil {
		logger.Error("Failed to load email templates, budget alerts disabled", "error", err)
	} else {
		renderer = r
	}

	// Create use cases
	checkBudgetUseCase := alert.NewCheckBudgetUseCase(backend.Ledger, renderer, sender, clock, logger)
	suggestCategoryUseCase := suggestion.NewSuggestCategoryUseCase(suggester, logger)

	var worker *email.Worker
	if cfg.Email.AlertsEnabled {
		if sender == nil {
			logger.Warn("Budget alerts enabled without RESEND_API_KEY, worker not started")
		} else {
			worker = email.NewWorker(registry, checkBudgetUseCase, email.WorkerConfig{
				PollInterval: cfg.Email.AlertCheckInterval,
				BatchSize:    cfg.Email.AlertBatchSize,
			})
		}
	}

	// Create controllers
	healthController := controller.NewHealthController(backend.Name, backend.HealthCheck, clock)
	expenseController := controller.NewExpenseController(registry, suggestCategoryUseCase, clock)
	profileController := controller.NewProfileController(registry)
	reportController := controller.NewReportController(registry, checkBudgetUseCase)

	// Create middleware
	// Use higher rate limits for test environments to prevent flaky tests
	var writeRateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "test" {
		writeRateLimiter = middleware.NewRateLimiterWithConfig(1000, 1*time.Minute)
	} else {
		writeRateLimiter = middleware.NewRateLimiter()
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Create router
	r := router.NewRouter(healthController, expenseController, profileController, reportController, writeRateLimiter, authMiddleware)

	return &Injector{
		Config:          cfg,
		Backend:         backend,
		Registry:        registry,
		TokenService:    tokenService,
		RateLimiter:     writeRateLimiter,
		AlertWorker:     worker,
		CheckBudget:     checkBudgetUseCase,
		SuggestCategory: suggestCategoryUseCase,
		Router:          r,
	}
}
