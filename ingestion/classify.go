package ingestion

import (
	"context"

	"github.com/poiesic/docent/core"
)

// classify derives the document classification from its leading chunks.
// Classification is best-effort: any failure falls back to the default so
// ingestion never fails on it.
func (p *Pipeline) classify(ctx context.Context, chunks []*core.Chunk) core.Classification {
	sample := core.ClassificationSample(chunks)
	if sample == "" {
		return core.DefaultClassification()
	}

	result, err := p.provider.Classifier().ClassifyDocument(ctx, sample)
	if err != nil {
		p.logger.Warn("classification failed, using default", "error", err)
		return core.DefaultClassification()
	}

	return core.Classification{
		DocumentType: result.DocumentType,
		Confidence:   result.Confidence,
		Summary:      result.Summary,
		Language:     result.Language,
		Entities:     result.Entities,
		Dates:        result.Dates,
	}
}
