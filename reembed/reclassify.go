package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// Reclassifier re-runs document classification from stored chunk samples.
// It exists for taxonomy or model upgrades: the raw files are not kept, so
// classification re-reads the stored chunk text instead.
type Reclassifier struct {
	documentRepo storage.DocumentRepository
	chunkRepo    storage.ChunkRepository
	classifier   ai.Classifier
	config       *Config
	progress     io.Writer
}

// NewReclassifier creates a new reclassifier.
// progress: where to write progress output (typically os.Stderr)
func NewReclassifier(
	documentRepo storage.DocumentRepository,
	chunkRepo storage.ChunkRepository,
	classifier ai.Classifier,
	config *Config,
	progress io.Writer,
) *Reclassifier {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reclassifier{
		documentRepo: documentRepo,
		chunkRepo:    chunkRepo,
		classifier:   classifier,
		config:       config,
		progress:     progress,
	}
}

// Run executes the reclassification operation.
// Every document with stored chunks is reclassified and updated in place.
// Documents without chunks keep their current classification.
func (r *Reclassifier) Run(ctx context.Context) error {
	documents, err := r.documentRepo.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}

	total := len(documents)
	if total == 0 {
		fmt.Fprintf(r.progress, "No documents found in database (0 documents)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reclassification of %d documents\n", total)

	// Documents are few compared to chunks, so report on every one.
	tracker := NewProgressTracker(r.progress, total, 1)
	tracker.Start()

	updated := 0
	skipped := 0

	for i, document := range documents {
		// Check context before each document
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunks, err := r.chunkRepo.GetChunksByDocument(ctx, document.Id)
		if err != nil {
			return fmt.Errorf("failed to load chunks for document %d: %w", uint64(document.Id), err)
		}

		sample := core.ClassificationSample(chunks)
		if sample == "" {
			skipped++
			tracker.Update(i + 1)
			continue
		}

		// Classify with retry
		var result *ai.DocumentClassification
		err = RetryWithBackoff(ctx, func() error {
			var err error
			result, err = r.classifier.ClassifyDocument(ctx, sample)
			return err
		}, r.config.MaxRetries, r.config.RetryDelay)

		if err != nil {
			return fmt.Errorf("failed to classify document %d after %d attempts: %w",
				uint64(document.Id), r.config.MaxRetries, err)
		}

		document.Classification = core.Classification{
			DocumentType: result.DocumentType,
			Confidence:   result.Confidence,
			Summary:      result.Summary,
			Language:     result.Language,
			Entities:     result.Entities,
			Dates:        result.Dates,
		}

		if _, err := r.documentRepo.UpdateDocuments(ctx, document); err != nil {
			return fmt.Errorf("failed to update document %d: %w", uint64(document.Id), err)
		}

		updated++
		tracker.Update(i + 1)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reclassification complete. Updated %d documents (%d without chunks skipped) in %v\n",
		updated, skipped, elapsed.Round(time.Second))

	return nil
}
