package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docent/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	embedMaxAttempts = 5
	embedBaseDelay   = 1 * time.Second
	embedMaxDelay    = 60 * time.Second
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
//
// Large inputs are split into batches of at most ai.MaxEmbeddingBatchSize
// texts. Batches run concurrently under a shared rate limit, and each batch
// retries transient provider failures with exponential backoff before the
// whole call fails.
type Embedder struct {
	embedder    embeddings.Embedder
	concurrency int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for embeddings
	// The default token "none" satisfies local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:    embedder,
		concurrency: config.EmbeddingConcurrency,
		limiter:     rate.NewLimiter(rate.Limit(config.EmbeddingRequestsPerSecond), 1),
		logger:      slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings.
//
// The returned slice is index-aligned with texts. On any error no partial
// results are returned.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	results := make([][]float32, len(texts))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency)

	for start := 0; start < len(texts); start += ai.MaxEmbeddingBatchSize {
		end := min(start+ai.MaxEmbeddingBatchSize, len(texts))
		group.Go(func() error {
			batch, err := e.embedBatch(ctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(results[start:end], batch)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	// All vectors must share one dimension or similarity scoring breaks downstream
	dimension := len(results[0])
	for i, vector := range results {
		if len(vector) != dimension {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				ai.ErrEmbeddingProvider, i, len(vector), dimension)
		}
	}

	return results, nil
}

// embedBatch embeds a single batch, retrying transient failures.
func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	delay := embedBaseDelay
	for attempt := 1; attempt <= embedMaxAttempts; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		vectors, err := e.embedder.EmbedDocuments(ctx, texts)
		if err == nil {
			if len(vectors) != len(texts) {
				return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
					ai.ErrEmbeddingProvider, len(vectors), len(texts))
			}
			return vectors, nil
		}
		lastErr = err

		if attempt < embedMaxAttempts {
			e.logger.Warn("embedding batch failed, retrying",
				"attempt", attempt, "delay", delay, "err", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			delay *= 2
			if delay > embedMaxDelay {
				delay = embedMaxDelay
			}
		}
	}

	return nil, fmt.Errorf("%w: %w", ai.ErrEmbeddingProvider, lastErr)
}
