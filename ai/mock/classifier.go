package mock

import (
	"context"
	"strings"

	"github.com/poiesic/docent/ai"
)

// MockClassifier is a test double for ai.Classifier.
// It allows custom behavior injection via function fields.
type MockClassifier struct {
	// ClassifyDocumentFunc is called by ClassifyDocument if set.
	// If nil, uses default keyword-based classification.
	ClassifyDocumentFunc func(ctx context.Context, sample string) (*ai.DocumentClassification, error)

	callCount int
}

// NewMockClassifier creates a mock classifier with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockClassifier().
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// ClassifyDocument classifies a sample using simple keyword matching.
// Default behavior: keyword hits pick the type, anything else is "other".
func (m *MockClassifier) ClassifyDocument(ctx context.Context, sample string) (*ai.DocumentClassification, error) {
	m.callCount++

	if m.ClassifyDocumentFunc != nil {
		return m.ClassifyDocumentFunc(ctx, sample)
	}

	lower := strings.ToLower(sample)
	docType := "other"
	switch {
	case strings.Contains(lower, "agreement") || strings.Contains(lower, "contract"):
		docType = "contract"
	case strings.Contains(lower, "invoice"):
		docType = "invoice"
	case strings.Contains(lower, "policy"):
		docType = "policy"
	case strings.Contains(lower, "report"):
		docType = "report"
	}

	confidence := 0.5
	if docType != "other" {
		confidence = 0.9
	}

	// Summary from the first few words of the sample
	words := strings.Fields(sample)
	if len(words) > 12 {
		words = words[:12]
	}

	return &ai.DocumentClassification{
		DocumentType: docType,
		Confidence:   confidence,
		Summary:      strings.Join(words, " "),
		Language:     "en",
		Entities:     []string{},
		Dates:        []string{},
	}, nil
}

// CallCount returns the number of times ClassifyDocument was called.
func (m *MockClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockClassifier) Reset() {
	m.callCount = 0
	m.ClassifyDocumentFunc = nil
}
