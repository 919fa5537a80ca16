// Package suggestion contains the category suggestion use case.
package suggestion

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

// SuggestCategoryInput represents the input for a category suggestion.
type SuggestCategoryInput struct {
	Note   string
	Amount decimal.Decimal
}

// SuggestCategoryOutput represents the suggested category.
type SuggestCategoryOutput struct {
	Category   entity.Category `json:"category"`
	Confidence float64         `json:"confidence"`
	Reasoning  string          `json:"reasoning,omitempty"`
	Fallback   bool            `json:"fallback"`
}

// SuggestCategoryUseCase picks one of the fixed categories for an expense note.
type SuggestCategoryUseCase struct {
	suggester adapter.CategorySuggester
	logger    *slog.Logger
}

// NewSuggestCategoryUseCase creates a new SuggestCategoryUseCase instance.
func NewSuggestCategoryUseCase(suggester adapter.CategorySuggester, logger *slog.Logger) *SuggestCategoryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestCategoryUseCase{
		suggester: suggester,
		logger:    logger.With("component", "category_suggestion"),
	}
}

// IsAvailable reports whether a suggester is configured.
func (uc *SuggestCategoryUseCase) IsAvailable() bool {
	return uc.suggester != nil && uc.suggester.IsAvailable()
}

// Execute asks the suggester for a category. Answers outside the fixed set
// fall back to Others.
func (uc *SuggestCategoryUseCase) Execute(ctx context.Context, input SuggestCategoryInput) (*SuggestCategoryOutput, error) {
	note := strings.TrimSpace(input.Note)
	if note == "" {
		return nil, domainerror.NewValidationError(domainerror.ErrCodeMissingFields, "note is required", domainerror.ErrMissingNote)
	}
	if !uc.IsAvailable() {
		return nil, domainerror.NewRemoteError(domainerror.ErrCodeSuggestionDisabled, "Category suggestions are not available", domainerror.ErrSuggestionUnavailable)
	}

	suggestion, err := uc.suggester.Suggest(ctx, adapter.CategorySuggestionRequest{
		Note:       note,
		Amount:     input.Amount.StringFixed(2),
		Categories: entity.Categories(),
	})
	if err != nil {
		return nil, domainerror.NewRemoteError(domainerror.ErrCodeSuggestionFailed, "Failed to suggest category", err)
	}

	if suggestion == nil {
		return &SuggestCategoryOutput{Category: entity.CategoryOthers, Fallback: true}, nil
	}

	category, ok := matchCategory(suggestion.Category)
	if !ok {
		uc.logger.Debug("Suggestion outside the category set", "answer", suggestion.Category)
		return &SuggestCategoryOutput{Category: entity.CategoryOthers, Fallback: true}, nil
	}

	return &SuggestCategoryOutput{
		Category:   category,
		Confidence: suggestion.Confidence,
		Reasoning:  suggestion.Reasoning,
	}, nil
}

// matchCategory accepts the exact label, ignoring case and surrounding space.
func matchCategory(answer string) (entity.Category, bool) {
	answer = strings.TrimSpace(answer)
	for _, c := range entity.Categories() {
		if strings.EqualFold(string(c), answer) {
			return c, true
		}
	}
	return "", false
}
