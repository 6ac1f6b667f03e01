// Package classifier defines the interface to the external natural-language
// transaction classifier. The categorizer treats this collaborator as
// unreliable infrastructure: any error, timeout, or malformed response is
// "no opinion" and the pipeline falls through to its default.
package classifier

import "context"

// Classification is the external classifier's opinion on one transaction.
type Classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// Classifier asks an external model to categorize a transaction description.
type Classifier interface {
	// Name returns the classifier's display name (e.g., "Gemini").
	Name() string

	// Classify returns the model's category opinion for a transaction.
	// Callers must tolerate errors: the classifier is a best-effort
	// fallback tier, never a required dependency.
	Classify(ctx context.Context, description string, amount float64) (*Classification, error)
}
