package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings.
	// Inputs beyond the provider batch ceiling are split into batches
	// transparently. The returned slice contains embeddings in the same
	// order as the input texts, one per input.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Classifier determines a document's type and descriptive metadata from a
// representative text sample.
// Implementations must be thread-safe for concurrent use.
type Classifier interface {
	// ClassifyDocument analyzes a text sample and returns the document's
	// type, a confidence score, a short summary, the detected language,
	// and any prominent entities and dates.
	// The returned type is always one of DocumentTypes.
	// Returns an error if classification fails.
	ClassifyDocument(ctx context.Context, sample string) (*DocumentClassification, error)
}

// DocumentClassification is the result of classifying a document sample.
type DocumentClassification struct {
	// DocumentType is one of the DocumentTypes values.
	// Example: "contract", "invoice", "report"
	DocumentType string

	// Confidence is the classifier's confidence in the type, from 0 to 1.
	Confidence float64

	// Summary is a one or two sentence description of the document.
	Summary string

	// Language is the ISO 639-1 code of the document's primary language,
	// or "unknown" when it cannot be determined.
	Language string

	// Entities lists prominent organizations, people, and places.
	Entities []string

	// Dates lists dates mentioned in the sample, as written.
	Dates []string
}

// Generator produces grounded answers from an assembled prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// GenerateAnswer runs a single generation call with the given prompt.
	// It makes exactly one attempt; callers decide whether to retry.
	// Returns an error if the model call fails or yields no content.
	GenerateAnswer(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, Classifier, and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Classifier returns the document classification service.
	// The returned Classifier is safe for concurrent use.
	Classifier() Classifier

	// Generator returns the answer generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
