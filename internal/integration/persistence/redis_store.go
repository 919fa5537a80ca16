package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// DefaultKeyPrefix namespaces every key written by the redis store.
const DefaultKeyPrefix = "expense-tracker"

// expenseDocument is the JSON form of an expense in redis.
type expenseDocument struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Note      string          `json:"note,omitempty"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

// profileDocument is the JSON form of a financial profile in redis.
type profileDocument struct {
	ID                 string          `json:"id"`
	OwnerID            string          `json:"owner_id"`
	MonthlySalary      decimal.Decimal `json:"monthly_salary"`
	MonthlySavingsGoal decimal.Decimal `json:"monthly_savings_goal"`
	CurrentSavings     decimal.Decimal `json:"current_savings"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// redisStore implements the adapter.ExpenseStore interface on redis.
// Expenses live in one sorted set per owner scored by date; the profile is
// one JSON string per owner.
type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new redis-backed expense store.
func NewRedisStore(client *redis.Client, prefix string) adapter.ExpenseStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *redisStore) expensesKey(ownerID string) string {
	return fmt.Sprintf("%s:expenses:%s", s.prefix, ownerID)
}

func (s *redisStore) profileKey(ownerID string) string {
	return fmt.Sprintf("%s:profile:%s", s.prefix, ownerID)
}

// CreateExpense adds an expense document and returns its new id.
func (s *redisStore) CreateExpense(ctx context.Context, ownerID string, expense entity.Expense) (string, error) {
	doc := expenseDocument{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Amount:    expense.Amount,
		Category:  string(expense.Category),
		Note:      expense.Note,
		Date:      expense.Date,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode expense: %w", err)
	}

	member := redis.Z{Score: dateScore(doc.Date), Member: string(payload)}
	if err := s.client.ZAdd(ctx, s.expensesKey(ownerID), member).Err(); err != nil {
		return "", fmt.Errorf("failed to create expense: %w", err)
	}
	return doc.ID, nil
}

// ListExpenses returns every expense of the owner. Without descending order
// the expenses come oldest first.
func (s *redisStore) ListExpenses(ctx context.Context, ownerID string, orderByDateDescending bool) ([]entity.Expense, error) {
	key := s.expensesKey(ownerID)

	var (
		members []string
		err     error
	)
	if orderByDateDescending {
		members, err = s.client.ZRevRange(ctx, key, 0, -1).Result()
	} else {
		members, err = s.client.ZRange(ctx, key, 0, -1).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := make([]entity.Expense, 0, len(members))
	for _, member := range members {
		var doc expenseDocument
		if err := json.Unmarshal([]byte(member), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode expense: %w", err)
		}
		expenses = append(expenses, entity.Expense{
			ID:       doc.ID,
			OwnerID:  doc.OwnerID,
			Amount:   doc.Amount,
			Category: entity.Category(doc.Category),
			Note:     doc.Note,
			Date:     doc.Date,
		})
	}
	return expenses, nil
}

// GetProfile returns the owner's profile, or nil when none exists.
func (s *redisStore) GetProfile(ctx context.Context, ownerID string) (*entity.FinancialProfile, error) {
	payload, err := s.client.Get(ctx, s.profileKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var doc profileDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return doc.toEntity(), nil
}

// CreateProfile stores a profile for an owner that has none yet.
func (s *redisStore) CreateProfile(ctx context.Context, profile *entity.FinancialProfile) (string, error) {
	doc := profileDocumentFrom(profile)
	doc.ID = uuid.NewString()

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.profileKey(profile.OwnerID), payload, 0).Result()
	if err != nil {
		return "", fmt.Errorf("failed to create profile: %w", err)
	}
	if !created {
		return "", fmt.Errorf("failed to create profile: owner %q already has one", profile.OwnerID)
	}
	return doc.ID, nil
}

// UpdateProfile overwrites the profile with the given id.
func (s *redisStore) UpdateProfile(ctx context.Context, id string, profile *entity.FinancialProfile) error {
	key := s.profileKey(profile.OwnerID)

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return fmt.Errorf("failed to update profile %q: %w", id, domainerror.ErrProfileNotFound)
			}
			return fmt.Errorf("failed to update profile: %w", err)
		}

		var current profileDocument
		if err := json.Unmarshal(payload, &current); err != nil {
			return fmt.Errorf("failed to decode profile: %w", err)
		}
		if current.ID != id {
			return fmt.Errorf("failed to update profile %q: %w", id, domainerror.ErrProfileNotFound)
		}

		doc := profileDocumentFrom(profile)
		doc.ID = id
		doc.CreatedAt = current.CreatedAt
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = time.Now().UTC()
		}

		updated, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode profile: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		return nil
	}, key)
}

func profileDocumentFrom(p *entity.FinancialProfile) profileDocument {
	return profileDocument{
		OwnerID:            p.OwnerID,
		MonthlySalary:      p.MonthlySalary,
		MonthlySavingsGoal: p.MonthlySavingsGoal,
		CurrentSavings:     p.CurrentSavings,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func (d profileDocument) toEntity() *entity.FinancialProfile {
	return &entity.FinancialProfile{
		ID:                 d.ID,
		OwnerID:            d.OwnerID,
		MonthlySalary:      d.MonthlySalary,
		MonthlySavingsGoal: d.MonthlySavingsGoal,
		CurrentSavings:     d.CurrentSavings,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// dateScore orders expenses by date with millisecond resolution, which a
// float64 score holds exactly.
func dateScore(t time.Time) float64 {
	return float64(t.UnixMilli())
}
