//go:build integration

// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/expense-tracker/backend/config"
	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/infra/dependency"
	"github.com/expense-tracker/backend/internal/integration/email"
	"github.com/expense-tracker/backend/internal/integration/persistence"
	"github.com/expense-tracker/backend/internal/integration/persistence/model"
	"github.com/expense-tracker/backend/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

// suiteEnv is shared by every scenario; the server is started once.
type suiteEnv struct {
	server      *httptest.Server
	db          *mock.Db
	injector    *dependency.Injector
	store       adapter.ExpenseStore
	ledger      adapter.AlertLedger
	emailSender *email.MockEmailSender
	timeMock    *mock.Time
}

var (
	env      *suiteEnv
	envInit  sync.Once
	redisKey = "expense-tracker-test"
)

// testContext holds the state of one scenario.
type testContext struct {
	env         *suiteEnv
	headers     map[string]string
	client      *http.Client
	response    *response
	accessToken string
	ownerID     uuid.UUID
	email       string
}

type response struct {
	status int
	body   any
}

func startEnv() *suiteEnv {
	envInit.Do(func() {
		_ = os.Setenv("ENV", "test")
		gin.SetMode(gin.TestMode)

		testDB := mock.NewDb(mock.TablesOf(model.All()...))
		redisClient := mock.NewRedis()

		cfg := config.Load()
		cfg.Server.Environment = "test"
		cfg.JWT.Secret = testJWTSecret
		cfg.AI.GeminiAPIKey = ""
		cfg.Coordinator.OperationTimeout = 5 * time.Second
		cfg.Email.AlertsEnabled = true

		store := persistence.NewGormStore(testDB.DbConn)
		ledger := persistence.NewRedisAlertLedger(redisClient, redisKey)
		backend := &dependency.Backend{
			Name:        config.StoreBackendSQLite,
			Store:       store,
			Ledger:      ledger,
			HealthCheck: func() bool { return testDB != nil && testDB.DbConn != nil },
			Close:       func() error { return nil },
		}

		sender := email.NewMockEmailSender()
		timeMock := mock.NewTime()

		injector := dependency.NewInjector(cfg, backend, dependency.Options{
			Clock:       timeMock,
			EmailSender: sender,
		})

		env = &suiteEnv{
			server:      httptest.NewServer(injector.Router.Setup("test")),
			db:          testDB,
			injector:    injector,
			store:       store,
			ledger:      ledger,
			emailSender: sender,
			timeMock:    timeMock,
		}
	})
	return env
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		startEnv()
	})

	ctx.AfterSuite(func() {
		if env != nil && env.server != nil {
			env.server.Close()
		}
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	test := &testContext{
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	// Background steps
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)
	ctx.Given(`^the current time is "([^"]*)"$`, test.theCurrentTimeIs)

	// Identity steps
	ctx.Given(`^I am authenticated as "([^"]*)"$`, test.iAmAuthenticatedAs)
	ctx.Given(`^I am not authenticated$`, test.iAmNotAuthenticated)

	// Data setup steps
	ctx.Given(`^the following expenses exist:$`, test.theFollowingExpensesExist)
	ctx.Given(`^my monthly salary is "([^"]*)"$`, test.myMonthlySalaryIs)
	ctx.Given(`^a budget alert was already sent for "([^"]*)"$`, test.aBudgetAlertWasAlreadySentFor)
	ctx.Given(`^the email provider is failing$`, test.theEmailProviderIsFailing)

	// Header steps
	ctx.Given(`^the header is empty$`, test.theHeaderIsEmpty)
	ctx.Given(`^the header contains the key "([^"]*)" with "([^"]*)"$`, test.theHeaderContainsTheKeyWith)

	// Request steps
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)
	ctx.When(`^the budget alert worker runs$`, test.theBudgetAlertWorkerRuns)

	// Response assertion steps
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response should be JSON$`, test.theResponseShouldBeJSON)
	ctx.Then(`^the response should contain "([^"]*)"$`, test.theResponseShouldContain)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)
	ctx.Then(`^the response field "([^"]*)" should have (\d+) items$`, test.theResponseFieldShouldHaveItems)

	// Database assertion steps
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)

	// Email assertion steps
	ctx.Then(`^(\d+) budget alert emails? should have been sent$`, test.budgetAlertEmailsShouldHaveBeenSent)
	ctx.Then(`^the last email should be sent to "([^"]*)"$`, test.theLastEmailShouldBeSentTo)
}

func (t *testContext) before() error {
	t.env = startEnv()
	t.headers = make(map[string]string)
	t.response = nil
	t.accessToken = ""
	t.ownerID = uuid.Nil
	t.email = ""

	t.env.timeMock.Reset()
	t.env.emailSender.Reset()

	if err := t.env.db.ClearDB(); err != nil {
		return err
	}
	return mock.ClearRedis(mock.NewRedis())
}
