// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

const (
	// DefaultBatchSize is the default number of chunks to hand out per batch
	DefaultBatchSize = 100
)

// ChunkIterator iterates over every stored chunk in batches, walking
// documents in ID order. Memory stays bounded by the largest document, not
// the whole corpus.
type ChunkIterator struct {
	documents storage.DocumentRepository
	chunks    storage.ChunkRepository
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks per batch (must be > 0)
func NewChunkIterator(documents storage.DocumentRepository, chunks storage.ChunkRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		documents: documents,
		chunks:    chunks,
		batchSize: batchSize,
	}
}

// ForEach iterates over all chunks, calling fn for each batch. A batch
// never spans two documents. Iteration stops on the first error from fn.
// Context cancellation is checked between batches.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	documents, err := it.documents.ListDocuments(ctx)
	if err != nil {
		return err
	}

	for _, document := range documents {
		chunks, err := it.chunks.GetChunksByDocument(ctx, document.Id)
		if err != nil {
			return err
		}

		for i := 0; i < len(chunks); i += it.batchSize {
			end := i + it.batchSize
			if end > len(chunks) {
				end = len(chunks)
			}

			if err := fn(chunks[i:end]); err != nil {
				return err
			}

			// Check context after each batch
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}

	return nil
}
