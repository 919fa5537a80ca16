// Package adapters provides implementations for external service integrations.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/expense-tracker/backend/internal/application/adapter"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash-lite"

// GeminiService implements the CategorySuggester using Google Gemini.
type GeminiService struct {
	apiKey    string
	modelName string
}

// NewGeminiService creates a new Gemini service instance.
func NewGeminiService(apiKey, modelName string) *GeminiService {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiService{
		apiKey:    apiKey,
		modelName: modelName,
	}
}

// IsAvailable checks if the Gemini service is available and properly configured.
func (s *GeminiService) IsAvailable() bool {
	return s.apiKey != ""
}

// Suggest asks Gemini to classify one expense into the given categories.
func (s *GeminiService) Suggest(ctx context.Context, request adapter.CategorySuggestionRequest) (*adapter.CategorySuggestion, error) {
	if !s.IsAvailable() {
		return nil, fmt.Errorf("gemini service is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.modelName)

	// Configure model for JSON output
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(request)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	suggestion, err := parseResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return suggestion, nil
}

func buildPrompt(request adapter.CategorySuggestionRequest) string {
	var sb strings.Builder

	sb.WriteString(`You classify personal expenses. Pick exactly one category for the expense below.

RULES:
- Answer with one of the listed category names, spelled exactly as listed
- Use "Others" when nothing fits
- Keep the reasoning to one short sentence

CATEGORIES:
`)
	for _, c := range request.Categories {
		sb.WriteString(fmt.Sprintf("- %s\n", c))
	}

	sb.WriteString("\nEXPENSE:\n")
	sb.WriteString(fmt.Sprintf("- Note: %q\n", request.Note))
	if request.Amount != "" {
		sb.WriteString(fmt.Sprintf("- Amount: %s\n", request.Amount))
	}

	sb.WriteString(`
Respond with a JSON object:
{
  "category": "one of the category names",
  "confidence": 0.0-1.0,
  "reasoning": "short explanation"
}

RESPONSE FORMAT: Return only the JSON object, no additional text.
`)

	return sb.String()
}

// geminiSuggestion represents the raw response from Gemini.
type geminiSuggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func parseResponse(resp *genai.GenerateContentResponse) (*adapter.CategorySuggestion, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var textContent string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			textContent = string(text)
			break
		}
	}
	return decodeSuggestion(textContent)
}

// decodeSuggestion reads the JSON answer, tolerating a markdown code fence.
func decodeSuggestion(textContent string) (*adapter.CategorySuggestion, error) {
	textContent = strings.TrimSpace(textContent)
	if textContent == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	textContent = strings.TrimPrefix(textContent, "```json")
	textContent = strings.TrimPrefix(textContent, "```")
	textContent = strings.TrimSuffix(textContent, "```")
	textContent = strings.TrimSpace(textContent)

	var raw geminiSuggestion
	if err := json.Unmarshal([]byte(textContent), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w, content: %s", err, textContent)
	}

	confidence := raw.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &adapter.CategorySuggestion{
		Category:   strings.TrimSpace(raw.Category),
		Confidence: confidence,
		Reasoning:  raw.Reasoning,
	}, nil
}

// Ensure GeminiService implements adapter.CategorySuggester.
var _ adapter.CategorySuggester = (*GeminiService)(nil)
