// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/expense-tracker/backend/internal/domain/entity"
)

// CategorySuggestionRequest describes an expense to classify.
type CategorySuggestionRequest struct {
	Note       string
	Amount     string
	Categories []entity.Category
}

// CategorySuggestion is the model's answer.
type CategorySuggestion struct {
	Category   string
	Confidence float64
	Reasoning  string
}

// CategorySuggester defines the interface for AI category suggestions.
type CategorySuggester interface {
	// Suggest picks a category for the described expense.
	Suggest(ctx context.Context, request CategorySuggestionRequest) (*CategorySuggestion, error)

	// IsAvailable checks if the AI service is available and properly configured.
	IsAvailable() bool
}
