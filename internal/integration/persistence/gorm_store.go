// Package persistence implements the expense store over existing databases.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
	"github.com/expense-tracker/backend/internal/integration/persistence/model"
)

// gormStore implements the adapter.ExpenseStore interface on a SQL database.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new gorm-backed expense store.
func NewGormStore(db *gorm.DB) adapter.ExpenseStore {
	return &gormStore{
		db: db,
	}
}

// CreateExpense inserts an expense and returns its new id.
func (s *gormStore) CreateExpense(ctx context.Context, ownerID string, expense entity.Expense) (string, error) {
	expenseModel := model.ExpenseFromEntity(expense)
	expenseModel.ID = uuid.New()
	expenseModel.OwnerID = ownerID
	expenseModel.CreatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Create(expenseModel).Error; err != nil {
		return "", fmt.Errorf("failed to create expense: %w", err)
	}
	return expenseModel.ID.String(), nil
}

// ListExpenses returns every expense of the owner, newest or oldest date first.
func (s *gormStore) ListExpenses(ctx context.Context, ownerID string, orderByDateDescending bool) ([]entity.Expense, error) {
	query := s.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if orderByDateDescending {
		query = query.Order("date DESC").Order("created_at DESC")
	} else {
		query = query.Order("date ASC").Order("created_at ASC")
	}

	var expenseModels []model.ExpenseModel
	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := make([]entity.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = expenseModels[i].ToEntity()
	}
	return expenses, nil
}

// GetProfile returns the owner's profile, or nil when none exists.
func (s *gormStore) GetProfile(ctx context.Context, ownerID string) (*entity.FinancialProfile, error) {
	var profileModel model.FinancialProfileModel
	result := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&profileModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", result.Error)
	}
	return profileModel.ToEntity(), nil
}

// CreateProfile inserts a profile and returns its new id.
func (s *gormStore) CreateProfile(ctx context.Context, profile *entity.FinancialProfile) (string, error) {
	profileModel := model.FinancialProfileFromEntity(profile)
	profileModel.ID = uuid.New()

	now := time.Now().UTC()
	if profileModel.CreatedAt.IsZero() {
		profileModel.CreatedAt = now
	}
	if profileModel.UpdatedAt.IsZero() {
		profileModel.UpdatedAt = now
	}

	if err := s.db.WithContext(ctx).Create(profileModel).Error; err != nil {
		return "", fmt.Errorf("failed to create profile: %w", err)
	}
	return profileModel.ID.String(), nil
}

// UpdateProfile overwrites every value of the profile with the given id.
func (s *gormStore) UpdateProfile(ctx context.Context, id string, profile *entity.FinancialProfile) error {
	profileID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("failed to update profile %q: %w", id, domainerror.ErrProfileNotFound)
	}

	updatedAt := profile.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	result := s.db.WithContext(ctx).
		Model(&model.FinancialProfileModel{}).
		Where("id = ? AND owner_id = ?", profileID, profile.OwnerID).
		Updates(map[string]interface{}{
			"monthly_salary":       profile.MonthlySalary,
			"monthly_savings_goal": profile.MonthlySavingsGoal,
			"current_savings":      profile.CurrentSavings,
			"updated_at":           updatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update profile %q: %w", id, domainerror.ErrProfileNotFound)
	}
	return nil
}

// AutoMigrate creates or updates the store's tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
