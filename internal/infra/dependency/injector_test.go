package dependency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/expense-tracker/backend/config"
	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/infra/db"
	"github.com/expense-tracker/backend/internal/integration/email"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type stubSuggester struct{ answer string }

func (s stubSuggester) IsAvailable() bool { return true }

func (s stubSuggester) Suggest(context.Context, adapter.CategorySuggestionRequest) (*adapter.CategorySuggestion, error) {
	return &adapter.CategorySuggestion{Category: s.answer, Confidence: 0.9}, nil
}

var dbCounter int64

type apiHarness struct {
	t        *testing.T
	engine   *gin.Engine
	injector *Injector
	sender   *email.MockEmailSender
	token    string
}

func newHarness(t *testing.T, opts Options) *apiHarness {
	t.Helper()

	dsn := fmt.Sprintf("file:injector_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	backend, err := NewSQLBackend(config.StoreBackendSQLite, db.NewFromGorm(gormDB))
	if err != nil {
		t.Fatalf("failed to prepare backend: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.JWT.Secret = "test-secret"
	cfg.AI.GeminiAPIKey = ""

	sender := email.NewMockEmailSender()
	if opts.EmailSender == nil {
		opts.EmailSender = sender
	}
	if opts.Clock == nil {
		opts.Clock = fixedClock{now: time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)}
	}

	injector := NewInjector(cfg, backend, opts)
	token, err := injector.TokenService.GenerateAccessToken(context.Background(), uuid.New(), "ana@example.com")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	return &apiHarness{
		t:        t,
		engine:   injector.Router.Setup("test"),
		injector: injector,
		sender:   sender,
		token:    token,
	}
}

func (h *apiHarness) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			h.t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

func TestAPI_HealthAndAuth(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(http.MethodGet, "/health", nil)
	expectStatus(t, w, http.StatusOK)
	store, _ := decode(t, w)["store"].(map[string]interface{})
	if store["status"] != "connected" || store["backend"] != config.StoreBackendSQLite {
		t.Errorf("expected connected sqlite store, got %v", store)
	}

	h.token = ""
	expectStatus(t, h.do(http.MethodGet, "/api/v1/expenses", nil), http.StatusUnauthorized)
}

func TestAPI_ExpenseFlow(t *testing.T) {
	h := newHarness(t, Options{})

	t.Run("empty list", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/v1/expenses", nil)
		expectStatus(t, w, http.StatusOK)
		if got := decode(t, w)["expenses"].([]interface{}); len(got) != 0 {
			t.Errorf("expected no expenses, got %d", len(got))
		}
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/v1/expenses", map[string]interface{}{
			"amount": "10", "category": "Pets",
		})
		expectStatus(t, w, http.StatusBadRequest)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/v1/expenses", map[string]interface{}{
			"amount": "0", "category": "Travel",
		})
		expectStatus(t, w, http.StatusBadRequest)
		if got := decode(t, w)["code"]; got != "EXP-010001" {
			t.Errorf("expected invalid amount code, got %v", got)
		}
	})

	t.Run("adds expenses", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/v1/expenses", map[string]interface{}{
			"amount": "12.50", "category": "Travel", "note": "taxi", "date": "2024-03-12",
		})
		expectStatus(t, w, http.StatusCreated)

		w = h.do(http.MethodPost, "/api/v1/expenses", map[string]interface{}{
			"amount": 7.5, "category": "Shopping",
		})
		expectStatus(t, w, http.StatusCreated)

		body := decode(t, w)
		if got := len(body["expenses"].([]interface{})); got != 2 {
			t.Errorf("expected 2 expenses, got %d", got)
		}
		if got := body["total"]; got != "20" {
			t.Errorf("expected total 20, got %v", got)
		}
	})

	t.Run("categories", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/v1/expenses/categories", nil)
		expectStatus(t, w, http.StatusOK)
		if got := len(decode(t, w)["categories"].([]interface{})); got != 9 {
			t.Errorf("expected 9 categories, got %d", got)
		}
	})

	t.Run("report", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/v1/report?time_frame=this-week", nil)
		expectStatus(t, w, http.StatusOK)

		body := decode(t, w)
		if body["time_frame"] != "this-week" {
			t.Errorf("unexpected time frame %v", body["time_frame"])
		}
		if got := len(body["chart"].([]interface{})); got != 2 {
			t.Errorf("expected 2 chart entries, got %d", got)
		}

		expectStatus(t, h.do(http.MethodGet, "/api/v1/report?time_frame=yesterday", nil), http.StatusBadRequest)
	})

	t.Run("session status", func(t *testing.T) {
		w := h.do(http.MethodGet, "/api/v1/session/status", nil)
		expectStatus(t, w, http.StatusOK)

		body := decode(t, w)
		if body["time_frame"] != "this-week" {
			t.Errorf("expected selected time frame to persist, got %v", body["time_frame"])
		}
		if got := len(body["actions"].([]interface{})); got != 5 {
			t.Errorf("expected 5 actions, got %d", got)
		}
	})
}

func TestAPI_ProfileFlow(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(http.MethodGet, "/api/v1/profile", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["monthly_salary"]; got != "0" {
		t.Errorf("expected a zero-valued profile, got %v", got)
	}

	w = h.do(http.MethodPut, "/api/v1/profile", map[string]interface{}{
		"monthly_salary": "100", "monthly_savings_goal": "20", "current_savings": "100.25",
	})
	expectStatus(t, w, http.StatusOK)

	w = h.do(http.MethodPost, "/api/v1/profile/savings", map[string]interface{}{"amount": "50.50"})
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["current_savings"]; got != "150.75" {
		t.Errorf("expected savings 150.75, got %v", got)
	}

	expectStatus(t, h.do(http.MethodPost, "/api/v1/profile/savings", map[string]interface{}{"amount": "-1"}), http.StatusBadRequest)
	expectStatus(t, h.do(http.MethodPut, "/api/v1/profile", map[string]interface{}{"monthly_salary": "-5"}), http.StatusBadRequest)
}

func TestAPI_BudgetAlert(t *testing.T) {
	h := newHarness(t, Options{})

	expectStatus(t, h.do(http.MethodPut, "/api/v1/profile", map[string]interface{}{"monthly_salary": "100"}), http.StatusOK)
	expectStatus(t, h.do(http.MethodPost, "/api/v1/expenses", map[string]interface{}{
		"amount": "150", "category": "Bills & Utilities",
	}), http.StatusCreated)

	w := h.do(http.MethodPost, "/api/v1/report/alerts/check", nil)
	expectStatus(t, w, http.StatusOK)
	body := decode(t, w)
	if body["alert_sent"] != true || body["period"] != "2024-03" {
		t.Errorf("expected an alert for 2024-03, got %v", body)
	}

	w = h.do(http.MethodPost, "/api/v1/report/alerts/check", nil)
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["already_sent"] != true {
		t.Error("expected the second check to be deduplicated")
	}

	sent := h.sender.Sent()
	if len(sent) != 1 || sent[0].To != "ana@example.com" {
		t.Errorf("expected one email to ana@example.com, got %+v", sent)
	}
}

func TestAPI_SuggestCategory(t *testing.T) {
	t.Run("unavailable without a model", func(t *testing.T) {
		h := newHarness(t, Options{})
		w := h.do(http.MethodPost, "/api/v1/expenses/suggest-category", map[string]interface{}{"note": "groceries"})
		expectStatus(t, w, http.StatusServiceUnavailable)
	})

	t.Run("returns the suggested category", func(t *testing.T) {
		h := newHarness(t, Options{Suggester: stubSuggester{answer: "food & dining"}})
		w := h.do(http.MethodPost, "/api/v1/expenses/suggest-category", map[string]interface{}{"note": "groceries"})
		expectStatus(t, w, http.StatusOK)
		if got := decode(t, w)["category"]; got != "Food & Dining" {
			t.Errorf("expected Food & Dining, got %v", got)
		}
	})

	t.Run("requires a note", func(t *testing.T) {
		h := newHarness(t, Options{Suggester: stubSuggester{answer: "Travel"}})
		w := h.do(http.MethodPost, "/api/v1/expenses/suggest-category", map[string]interface{}{})
		expectStatus(t, w, http.StatusBadRequest)
	})
}
