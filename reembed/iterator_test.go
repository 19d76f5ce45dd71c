package reembed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docent/core"
)

func TestChunkIterator_Basic(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	_, first := addDocumentWithChunks(t, repos, "first", nil, "a", "b", "c")
	_, second := addDocumentWithChunks(t, repos, "second", nil, "d", "e")

	iter := NewChunkIterator(repos.Documents, repos.Chunks, 2) // Batch size of 2
	count := 0
	var ids []core.ID

	err := iter.ForEach(ctx, func(chunks []*core.Chunk) error {
		count += len(chunks)
		for _, c := range chunks {
			ids = append(ids, c.Id)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 5, count, "should iterate all 5 chunks")

	want := []core.ID{first[0].Id, first[1].Id, first[2].Id, second[0].Id, second[1].Id}
	assert.Equal(t, want, ids, "chunks arrive in document then index order")
}

func TestChunkIterator_BatchBoundaries(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	firstDoc, _ := addDocumentWithChunks(t, repos, "first", nil, "a", "b", "c")
	secondDoc, _ := addDocumentWithChunks(t, repos, "second", nil, "d", "e")

	iter := NewChunkIterator(repos.Documents, repos.Chunks, 2)
	var batches [][]core.ID

	err := iter.ForEach(ctx, func(chunks []*core.Chunk) error {
		batch := make([]core.ID, len(chunks))
		for i, c := range chunks {
			batch[i] = c.DocumentId
		}
		batches = append(batches, batch)
		return nil
	})
	require.NoError(t, err)

	// 3 chunks at batch size 2 make two batches; a batch never mixes documents
	require.Len(t, batches, 3)
	assert.Equal(t, []core.ID{firstDoc.Id, firstDoc.Id}, batches[0])
	assert.Equal(t, []core.ID{firstDoc.Id}, batches[1])
	assert.Equal(t, []core.ID{secondDoc.Id, secondDoc.Id}, batches[2])
}

func TestChunkIterator_DefaultBatchSize(t *testing.T) {
	repos := newTestRepositories(t)

	iter := NewChunkIterator(repos.Documents, repos.Chunks, 0)
	assert.Equal(t, DefaultBatchSize, iter.batchSize)

	iter = NewChunkIterator(repos.Documents, repos.Chunks, -5)
	assert.Equal(t, DefaultBatchSize, iter.batchSize)
}

func TestChunkIterator_EmptyDatabase(t *testing.T) {
	repos := newTestRepositories(t)

	iter := NewChunkIterator(repos.Documents, repos.Chunks, 10)
	calls := 0

	err := iter.ForEach(context.Background(), func([]*core.Chunk) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, calls, "no batches for an empty database")
}

func TestChunkIterator_StopsOnError(t *testing.T) {
	repos := newTestRepositories(t)
	ctx := context.Background()

	addDocumentWithChunks(t, repos, "first", nil, "a", "b", "c", "d")

	iter := NewChunkIterator(repos.Documents, repos.Chunks, 2)
	expectedErr := errors.New("stop here")
	calls := 0

	err := iter.ForEach(ctx, func([]*core.Chunk) error {
		calls++
		return expectedErr
	})

	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 1, calls, "iteration stops on first error")
}

func TestChunkIterator_ContextCancelled(t *testing.T) {
	repos := newTestRepositories(t)

	addDocumentWithChunks(t, repos, "first", nil, "a", "b", "c", "d")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	iter := NewChunkIterator(repos.Documents, repos.Chunks, 2)
	calls := 0

	err := iter.ForEach(ctx, func([]*core.Chunk) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls, "cancelled context stops before the first batch")
}
