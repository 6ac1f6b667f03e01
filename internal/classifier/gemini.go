package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"cardwise/internal/models"
)

// GeminiClassifier classifies transaction descriptions with a Gemini model.
// Credentials are taken from the environment (GEMINI_API_KEY or Vertex env
// vars), matching the genai SDK's defaults.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier creates a Gemini-backed classifier.
func NewGeminiClassifier(ctx context.Context, model string) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClassifier{client: client, model: model}, nil
}

// Name returns the classifier's display name.
func (g *GeminiClassifier) Name() string { return "Gemini" }

// buildPrompt constrains the model to the fixed category enumeration and a
// strict JSON reply.
func buildPrompt(description string, amount float64) string {
	var b strings.Builder
	b.WriteString("You are a credit card transaction classifier.\n\n")
	b.WriteString("Classify the transaction below into EXACTLY one of these categories:\n")
	for _, c := range models.AllCategories {
		b.WriteString("- " + string(c) + "\n")
	}
	b.WriteString("\nTransaction description: " + description + "\n")
	fmt.Fprintf(&b, "Transaction amount: %.2f INR\n\n", amount)
	b.WriteString("Return ONLY valid raw JSON with this shape:\n")
	b.WriteString(`{"category": "<category>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}` + "\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("If unsure, use category \"others\" with low confidence.\n")
	return b.String()
}

// Classify sends the description to Gemini and parses its JSON opinion.
func (g *GeminiClassifier) Classify(ctx context.Context, description string, amount float64) (*Classification, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(description, amount)},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var result Classification
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &result); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}

	if !models.IsValidCategory(result.Category) {
		return nil, fmt.Errorf("model returned unknown category %q", result.Category)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, fmt.Errorf("model returned out-of-range confidence %f", result.Confidence)
	}

	return &result, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first '{' to the last '}' if there is still junk.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
