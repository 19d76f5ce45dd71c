package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

const (
	// DefaultTopK bounds how many chunks a retrieval returns.
	DefaultTopK = 15

	// DefaultSimilarityFloor is the minimum cosine similarity a chunk must
	// reach to be retrieved.
	DefaultSimilarityFloor float32 = 0.3
)

// Retriever ranks stored chunks against a query vector within a candidate
// document set.
type Retriever struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	logger             *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	opts ...Option,
) (*Retriever, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}

	r := &Retriever{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve returns the chunks most similar to the query vector among the
// candidate documents, ordered by similarity descending. topK <= 0 selects
// DefaultTopK; floor < 0 selects DefaultSimilarityFloor, and a floor of
// exactly zero disables the cutoff. The result order defines source
// numbering downstream, so callers must preserve it.
func (r *Retriever) Retrieve(ctx context.Context, vector []float32, candidateDocs []core.ID, topK int, floor float32) ([]*core.RetrievedChunk, error) {
	return r.RetrieveWithMonitor(ctx, vector, candidateDocs, topK, floor, nil)
}

// RetrieveWithMonitor retrieves with monitoring. The monitor receives
// callbacks at each stage of the retrieval process.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, vector []float32, candidateDocs []core.ID, topK int, floor float32, monitor RetrievalMonitor) ([]*core.RetrievedChunk, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if len(vector) == 0 {
		return nil, ErrEmptyQueryVector
	}
	if len(candidateDocs) == 0 {
		return nil, ErrNoCandidates
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if floor < 0 {
		floor = DefaultSimilarityFloor
	}

	monitor.Start(candidateDocs, topK, floor)

	// 1. Score candidate chunks by cosine similarity
	matches, err := r.chunkRepository.FindSimilar(ctx, vector, candidateDocs, floor, topK)
	if err != nil {
		r.logger.Error("error querying for similar chunks", "candidates", len(candidateDocs), "err", err)
		return nil, err
	}
	monitor.AfterSimilaritySearch(matches)

	if len(matches) == 0 {
		return []*core.RetrievedChunk{}, nil
	}

	// 2. Load the matched chunks
	chunkIds := make([]core.ID, 0, len(matches))
	for _, match := range matches {
		chunkIds = append(chunkIds, match.ChunkId)
	}

	chunks, err := r.chunkRepository.GetChunks(ctx, chunkIds...)
	if err != nil {
		r.logger.Error("error retrieving chunks", "chunkCount", len(chunkIds), "err", err)
		return nil, err
	}
	monitor.AfterChunkRetrieval(chunks)

	chunksById := make(map[core.ID]*core.Chunk, len(chunks))
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		chunksById[chunk.Id] = chunk
	}

	// 3. Attach document titles
	titles, err := r.documentTitles(ctx, chunks)
	if err != nil {
		r.logger.Error("error retrieving documents for titles", "err", err)
		return nil, err
	}

	// 4. Build results in match order so source numbering follows rank
	results := make([]*core.RetrievedChunk, 0, len(matches))
	for _, match := range matches {
		chunk, ok := chunksById[match.ChunkId]
		if !ok {
			// Removed between the similarity scan and the load.
			r.logger.Warn("matched chunk no longer exists", "chunkId", match.ChunkId)
			continue
		}
		results = append(results, &core.RetrievedChunk{
			Chunk:         chunk,
			DocumentTitle: titles[chunk.DocumentId],
			Similarity:    match.Score,
		})
	}

	monitor.Finish(results)
	r.logger.Debug("retrieval complete",
		"candidates", len(candidateDocs),
		"matches", len(matches),
		"results", len(results))

	return results, nil
}

// documentTitles maps the chunks' documents to display titles, falling back
// to the filename for documents without one.
func (r *Retriever) documentTitles(ctx context.Context, chunks []*core.Chunk) (map[core.ID]string, error) {
	seen := make(map[core.ID]bool)
	ids := make([]core.ID, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == nil || seen[chunk.DocumentId] {
			continue
		}
		seen[chunk.DocumentId] = true
		ids = append(ids, chunk.DocumentId)
	}

	documents, err := r.documentRepository.GetDocuments(ctx, ids...)
	if err != nil {
		return nil, err
	}

	titles := make(map[core.ID]string, len(documents))
	for _, document := range documents {
		if document == nil {
			continue
		}
		title := document.Title
		if title == "" {
			title = document.Filename
		}
		titles[document.Id] = title
	}
	return titles, nil
}
