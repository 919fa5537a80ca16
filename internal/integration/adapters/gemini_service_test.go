package adapters

import (
	"context"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/domain/entity"
)

func TestGeminiService_IsAvailable(t *testing.T) {
	if NewGeminiService("", "").IsAvailable() {
		t.Error("expected service without key to be unavailable")
	}
	if !NewGeminiService("key", "").IsAvailable() {
		t.Error("expected service with key to be available")
	}
	if _, err := NewGeminiService("", "").Suggest(context.Background(), adapter.CategorySuggestionRequest{Note: "x"}); err == nil {
		t.Error("expected an error without key")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(adapter.CategorySuggestionRequest{
		Note:       "train to Porto",
		Amount:     "42.00",
		Categories: entity.Categories(),
	})

	for _, want := range []string{"- Travel\n", "- Food & Dining\n", `"train to Porto"`, "42.00"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("fenced json", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("```json\n{\"category\":\" Travel \",\"confidence\":1.4,\"reasoning\":\"train\"}\n```")}},
		}}}

		got, err := parseResponse(resp)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Category != "Travel" || got.Confidence != 1 || got.Reasoning != "train" {
			t.Errorf("unexpected suggestion %+v", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := parseResponse(nil); err == nil {
			t.Error("expected error for nil response")
		}
		if _, err := parseResponse(&genai.GenerateContentResponse{}); err == nil {
			t.Error("expected error without candidates")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := decodeSuggestion("not json"); err == nil {
			t.Error("expected parse error")
		}
	})
}
