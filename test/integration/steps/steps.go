//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

const dateLayout = "2006-01-02"

func (t *testContext) theAPIServerIsRunning() error {
	resp, err := t.client.Get(t.env.server.URL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (t *testContext) theCurrentTimeIs(value string) error {
	now, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", value, err)
	}
	t.env.timeMock.SetCurrentTime(now)
	return nil
}

func (t *testContext) iAmAuthenticatedAs(email string) error {
	t.ownerID = uuid.New()
	t.email = email

	token, err := t.env.injector.TokenService.GenerateAccessToken(context.Background(), t.ownerID, email)
	if err != nil {
		return err
	}
	t.accessToken = token
	return nil
}

func (t *testContext) iAmNotAuthenticated() error {
	t.accessToken = ""
	t.ownerID = uuid.Nil
	return nil
}

func (t *testContext) requireOwner() (string, error) {
	if t.ownerID == uuid.Nil {
		return "", errors.New("no authenticated user in this scenario")
	}
	return t.ownerID.String(), nil
}

// theFollowingExpensesExist stores expenses for the current user. Columns:
// amount, category, note (optional), date (YYYY-MM-DD, optional).
func (t *testContext) theFollowingExpensesExist(table *godog.Table) error {
	ownerID, err := t.requireOwner()
	if err != nil {
		return err
	}
	if len(table.Rows) < 2 {
		return errors.New("expense table needs a header and at least one row")
	}

	header := make([]string, len(table.Rows[0].Cells))
	for i, cell := range table.Rows[0].Cells {
		header[i] = strings.TrimSpace(cell.Value)
	}

	for _, row := range table.Rows[1:] {
		values := make(map[string]string, len(header))
		for i, cell := range row.Cells {
			values[header[i]] = strings.TrimSpace(cell.Value)
		}

		amount, err := decimal.NewFromString(values["amount"])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", values["amount"], err)
		}

		date := t.env.timeMock.Now()
		if raw := values["date"]; raw != "" {
			if date, err = time.Parse(dateLayout, raw); err != nil {
				return fmt.Errorf("invalid date %q: %w", raw, err)
			}
		}

		expense := entity.NewExpense(ownerID, amount, entity.Category(values["category"]), values["note"], date)
		if _, err := t.env.store.CreateExpense(context.Background(), ownerID, expense); err != nil {
			return err
		}
	}
	return nil
}

func (t *testContext) myMonthlySalaryIs(salary string) error {
	ownerID, err := t.requireOwner()
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(salary)
	if err != nil {
		return err
	}

	profile := entity.NewFinancialProfile(ownerID, t.env.timeMock.Now())
	profile.MonthlySalary = amount
	_, err = t.env.store.CreateProfile(context.Background(), profile)
	return err
}

func (t *testContext) aBudgetAlertWasAlreadySentFor(period string) error {
	ownerID, err := t.requireOwner()
	if err != nil {
		return err
	}
	_, err = t.env.ledger.MarkSent(context.Background(), ownerID, period)
	return err
}

func (t *testContext) theEmailProviderIsFailing() error {
	t.env.emailSender.SetFailure(errors.New("provider unavailable"), false)
	return nil
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = value
	return nil
}

func (t *testContext) iSendARequestTo(method, path string) error {
	return t.executeRequest(method, path, nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	var payload []byte
	if body != nil && body.Content != "" {
		payload = []byte(t.replacePlaceholders(body.Content))
	}
	return t.executeRequest(method, t.replacePlaceholders(path), payload)
}

func (t *testContext) replacePlaceholders(content string) string {
	content = strings.ReplaceAll(content, "{{access_token}}", t.accessToken)
	content = strings.ReplaceAll(content, "{{today}}", t.env.timeMock.Now().Format(dateLayout))
	return content
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, t.env.server.URL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}

	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{
		status: resp.StatusCode,
	}

	var responseBody map[string]any
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		t.response.body = string(bodyBytes)
	} else {
		t.response.body = responseBody
	}
	return nil
}

func (t *testContext) theBudgetAlertWorkerRuns() error {
	worker := t.env.injector.AlertWorker
	if worker == nil {
		return errors.New("budget alert worker is not configured")
	}
	worker.ProcessNow(context.Background())
	return nil
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %v)", expectedStatus, t.response.status, t.response.body)
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if _, ok := t.response.body.(map[string]any); !ok {
		return fmt.Errorf("response is not JSON: %v", t.response.body)
	}
	return nil
}

func (t *testContext) responseObject() (map[string]any, error) {
	if t.response == nil {
		return nil, errors.New("no response received")
	}
	body, ok := t.response.body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("response is not a JSON object: %v", t.response.body)
	}
	return body, nil
}

func (t *testContext) theResponseShouldContain(field string) error {
	body, err := t.responseObject()
	if err != nil {
		return err
	}
	if _, exists := body[field]; !exists {
		return fmt.Errorf("response does not contain field '%s': %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	body, err := t.responseObject()
	if err != nil {
		return err
	}

	value := getFieldValue(body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}

	actualValue := fmt.Sprintf("%v", value)
	if actualValue != expectedValue {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	body, err := t.responseObject()
	if err != nil {
		return err
	}
	if getFieldValue(body, field) == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldHaveItems(field string, count int) error {
	body, err := t.responseObject()
	if err != nil {
		return err
	}

	items, ok := getFieldValue(body, field).([]any)
	if !ok {
		return fmt.Errorf("field '%s' is not a list: %v", field, body)
	}
	if len(items) != count {
		return fmt.Errorf("field '%s' expected %d items, got %d", field, count, len(items))
	}
	return nil
}

func (t *testContext) countRows(table string, criteria map[string]any) (int, error) {
	entity, ok := t.env.db.GetModel(table)
	if !ok {
		return 0, fmt.Errorf("table '%s' not found in models", table)
	}

	entityType := reflect.TypeOf(entity).Elem()
	entitySlicePtr := reflect.New(reflect.SliceOf(entityType))

	query := t.env.db.DbConn.Unscoped()
	for key, value := range criteria {
		if value == "{{owner_id}}" {
			value = t.ownerID.String()
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	result := query.Find(entitySlicePtr.Interface())
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 0, result.Error
	}
	return entitySlicePtr.Elem().Len(), nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	count, err := t.countRows(table, nil)
	if err != nil {
		return err
	}
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s', got %d", quantity, table, count)
	}
	return nil
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	if err := json.Unmarshal([]byte(content.Content), &criteria); err != nil {
		return err
	}

	count, err := t.countRows(table, criteria)
	if err != nil {
		return err
	}
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
	}
	return nil
}

func (t *testContext) budgetAlertEmailsShouldHaveBeenSent(count int) error {
	sent := t.env.emailSender.Sent()
	if len(sent) != count {
		return fmt.Errorf("expected %d emails, got %d", count, len(sent))
	}
	return nil
}

func (t *testContext) theLastEmailShouldBeSentTo(address string) error {
	sent := t.env.emailSender.Sent()
	if len(sent) == 0 {
		return errors.New("no email was sent")
	}
	if got := sent[len(sent)-1].To; got != address {
		return fmt.Errorf("expected email to %s, got %s", address, got)
	}
	return nil
}

func getFieldValue(object any, dotSeparatedField string) any {
	if object == nil {
		return nil
	}

	var objectMap map[string]any
	switch v := object.(type) {
	case map[string]any:
		objectMap = v
	default:
		objectJSON, _ := json.Marshal(object)
		if err := json.Unmarshal(objectJSON, &objectMap); err != nil {
			return nil
		}
	}

	var field any = objectMap
	for _, currentField := range strings.Split(dotSeparatedField, ".") {
		if field == nil {
			return nil
		}

		if i, err := strconv.Atoi(currentField); err == nil {
			if arr, ok := field.([]any); ok && i < len(arr) {
				field = arr[i]
			} else {
				return nil
			}
		} else {
			if m, ok := field.(map[string]any); ok {
				field = m[currentField]
			} else {
				return nil
			}
		}
	}

	return field
}
