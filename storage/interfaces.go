package storage

import (
	"context"

	"github.com/poiesic/docent/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing document records.
type DocumentRepository interface {
	Repository
	// AddDocuments adds one or more documents to storage.
	// For documents with ID=0, generates new IDs from sequence.
	// Sets InsertedAt timestamp if not already set.
	// Returns ErrDuplicateKey if another document already holds the same
	// content hash.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocument removes a document and its index entries.
	// Chunks are not touched; callers remove them via ChunkRepository.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// ListDocuments retrieves all documents ordered by ID ascending.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// FindByContentHash looks up a document by its content hash.
	// Returns ErrNotFound if no document holds the hash.
	FindByContentHash(ctx context.Context, hash string) (*core.Document, error)
}

// ChunkRepository provides operations for managing chunks and their vectors.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, generates new IDs from sequence.
	// Sets InsertedAt timestamp if not already set.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// ReplaceChunks atomically replaces a document's chunk set.
	// The new chunks are written before the old ones are removed, so readers
	// never observe a document without chunks.
	ReplaceChunks(ctx context.Context, documentID core.ID, chunks []*core.Chunk) ([]*core.Chunk, error)

	// DeleteChunksByDocument removes all chunks belonging to a document.
	// Deleting a document with no chunks is not an error.
	DeleteChunksByDocument(ctx context.Context, documentID core.ID) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// GetChunksByDocument retrieves a document's chunks ordered by index.
	GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// FindSimilar finds chunks similar to the given vector among the
	// candidate documents. Returns matches with similarity >= minSimilarity,
	// up to limit results, ordered by similarity descending with ties broken
	// by (document ID, chunk index) ascending. Chunks without vectors are
	// skipped. An empty candidate list searches no documents.
	FindSimilar(ctx context.Context, vector []float32, documentIDs []core.ID, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error)
}

// MessageRepository provides operations for managing session messages.
type MessageRepository interface {
	Repository
	// AddMessages appends one or more messages to storage.
	// For messages with ID=0, generates new IDs from sequence.
	// Sets InsertedAt timestamp if not already set.
	AddMessages(ctx context.Context, msgs ...*core.Message) ([]*core.Message, error)

	// GetMessage retrieves a single message by ID.
	// Returns ErrNotFound if the message doesn't exist.
	GetMessage(ctx context.Context, id core.ID) (*core.Message, error)

	// GetSessionMessages retrieves a session's messages in chronological
	// order. When limit > 0, only the most recent limit messages are
	// returned (still in chronological order).
	GetSessionMessages(ctx context.Context, sessionID core.ID, limit int) ([]*core.Message, error)
}

// UsageRepository provides operations for per-organization usage counters.
type UsageRepository interface {
	Repository
	// AddUsage atomically adds the given token and query counts to the
	// organization's accumulated usage.
	AddUsage(ctx context.Context, usage *core.Usage) error

	// GetUsage retrieves accumulated usage for an organization.
	// Returns nil, nil if the organization has no recorded usage.
	GetUsage(ctx context.Context, organizationID core.ID) (*core.Usage, error)
}
