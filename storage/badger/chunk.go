package badger

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	idSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChunkRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChunkRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks adds one or more chunks to storage.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if err := r.writeNewChunk(tx, chunk); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// UpdateChunks updates existing chunks.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Id)

			// Read old record to detect changes
			old, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Update timestamp
			chunk.UpdatedAt = time.Now().UTC()

			// Store updated record
			value := storage.MarshalChunk(chunk)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update document index if placement changed
			if old.DocumentId != chunk.DocumentId || old.Index != chunk.Index {
				oldKey := makeChunkDocKey(old.DocumentId, old.Index, old.Id)
				if err := tx.Delete(oldKey); err != nil {
					return err
				}
				newKey := makeChunkDocKey(chunk.DocumentId, chunk.Index, chunk.Id)
				if err := tx.Set(newKey, storage.MarshalID(chunk.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// ReplaceChunks atomically replaces a document's chunk set.
// New chunks are written before the old ones are removed, within a single
// transaction.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, documentID core.ID, chunks []*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Snapshot the old chunk set before writing anything
		oldIDs, oldIndexKeys, err := r.readDocIndex(tx, documentID)
		if err != nil {
			return err
		}

		// Write replacements
		for _, chunk := range chunks {
			chunk.DocumentId = documentID
			if err := r.writeNewChunk(tx, chunk); err != nil {
				return err
			}
		}

		// Remove the replaced records and their index entries
		for i, id := range oldIDs {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(oldIndexKeys[i]); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// DeleteChunksByDocument removes all chunks belonging to a document.
func (r *ChunkRepository) DeleteChunksByDocument(ctx context.Context, documentID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		ids, indexKeys, err := r.readDocIndex(tx, documentID)
		if err != nil {
			return err
		}

		for i, id := range ids {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(indexKeys[i]); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeChunkKey(id)
		var err error
		result, err = r.readChunk(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunks retrieves multiple chunks by their IDs.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	var result []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeChunkKey(id)
			chunk, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if chunk != nil {
				result = append(result, chunk)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetChunksByDocument retrieves a document's chunks ordered by index.
func (r *ChunkRepository) GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ids, _, err := r.readDocIndex(tx, documentID)
		if err != nil {
			return err
		}

		// Index keys encode the chunk index in BigEndian, so scan order
		// is already index order
		for _, id := range ids {
			chunk, err := r.readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	return results, err
}

// CountChunks returns the total number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			// Skip the sequence key, which shares the record prefix
			if bytes.Equal(iter.Item().Key(), []byte(chunkIDSeq)) {
				continue
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindSimilar finds chunks similar to the given vector among the candidate
// documents. Results are ordered by similarity descending, ties broken by
// (document ID, chunk index) ascending so equal scores rank deterministically.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, documentIDs []core.ID, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", storage.ErrInvalidQuery)
	}

	type scoredChunk struct {
		id         core.ID
		documentID core.ID
		index      int
		score      float32
	}

	var scored []scoredChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, documentID := range documentIDs {
			if err := ctx.Err(); err != nil {
				return err
			}

			ids, _, err := r.readDocIndex(tx, documentID)
			if err != nil {
				return err
			}

			for _, id := range ids {
				chunk, err := r.readChunk(tx, makeChunkKey(id))
				if err != nil {
					return err
				}
				// Chunks without vectors never match
				if chunk == nil || len(chunk.Vector) == 0 {
					continue
				}

				score := core.CosineSimilarity(vector, chunk.Vector)
				if score < minSimilarity {
					continue
				}
				scored = append(scored, scoredChunk{
					id:         chunk.Id,
					documentID: chunk.DocumentId,
					index:      chunk.Index,
					score:      score,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(scored, func(a, b scoredChunk) int {
		if a.score != b.score {
			if a.score > b.score {
				return -1
			}
			return 1
		}
		if a.documentID != b.documentID {
			if a.documentID < b.documentID {
				return -1
			}
			return 1
		}
		return a.index - b.index
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	matches := make([]*core.SimilarityMatch, 0, len(scored))
	for _, s := range scored {
		matches = append(matches, &core.SimilarityMatch{
			ChunkId: s.id,
			Score:   s.score,
		})
	}
	return matches, nil
}

// Helper methods

// writeNewChunk assigns an ID and timestamps, then stores the primary
// record and its document index entry.
func (r *ChunkRepository) writeNewChunk(tx *badger.Txn, chunk *core.Chunk) error {
	// Always generate new ID from sequence
	nextID, err := r.idSeq.Next()
	if err != nil {
		return err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if nextID == 0 {
		nextID, err = r.idSeq.Next()
		if err != nil {
			return err
		}
	}
	chunk.Id = core.ID(nextID)

	chunk.InsertedAt = time.Now().UTC()
	chunk.UpdatedAt = chunk.InsertedAt

	// Store primary record
	key := makeChunkKey(chunk.Id)
	value := storage.MarshalChunk(chunk)
	if err := tx.Set(key, value); err != nil {
		return err
	}

	// Update document index
	docKey := makeChunkDocKey(chunk.DocumentId, chunk.Index, chunk.Id)
	return tx.Set(docKey, storage.MarshalID(chunk.Id))
}

// readDocIndex scans the document index for a document's chunk IDs.
// Returns the IDs in (index, ID) order along with the index keys themselves
// for callers that need to delete them.
func (r *ChunkRepository) readDocIndex(tx *badger.Txn, documentID core.ID) ([]core.ID, [][]byte, error) {
	startKey := makePartialChunkDocKey(documentID)

	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()

	var ids []core.ID
	var keys [][]byte
	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		// Check if key still has our documentID prefix
		if len(key) < len(startKey) {
			break
		}
		if slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}

		// Read the chunk ID from the value
		var chunkID core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			chunkID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return nil, nil, err
		}

		ids = append(ids, chunkID)
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return ids, keys, nil
}

// readChunk reads a chunk from the transaction.
func (r *ChunkRepository) readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}
