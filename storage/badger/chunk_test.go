package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

func TestChunkBasics(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	chunk := &core.Chunk{
		DocumentId:  1,
		Index:       0,
		Contents:    "Payment is due within thirty days.",
		Kind:        core.ChunkKindClause,
		PageNumber:  2,
		SectionPath: []string{"Payment Terms"},
		ClauseId:    "4.2",
		TokenCount:  8,
	}

	added, err := repos.Chunks.AddChunks(ctx, chunk)
	if err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(added))
	}

	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := repos.Chunks.GetChunk(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get chunk: %v", err)
	}

	if retrieved.Contents != "Payment is due within thirty days." {
		t.Fatalf("Unexpected contents: '%s'", retrieved.Contents)
	}
	if retrieved.Kind != core.ChunkKindClause {
		t.Fatalf("Expected clause kind, got %v", retrieved.Kind)
	}
	if retrieved.ClauseId != "4.2" {
		t.Fatalf("Expected clause ID '4.2', got '%s'", retrieved.ClauseId)
	}
	if len(retrieved.SectionPath) != 1 || retrieved.SectionPath[0] != "Payment Terms" {
		t.Fatalf("Unexpected section path: %v", retrieved.SectionPath)
	}
}

func TestChunkUpdate(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	added, err := repos.Chunks.AddChunks(ctx, &core.Chunk{
		DocumentId: 1,
		Index:      0,
		Contents:   "Unvectored chunk",
		Kind:       core.ChunkKindParagraph,
	})
	if err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}

	chunk := added[0]
	chunk.Vector = []float32{0.1, 0.2, 0.3}

	_, err = repos.Chunks.UpdateChunks(ctx, chunk)
	if err != nil {
		t.Fatalf("Failed to update chunk: %v", err)
	}

	retrieved, err := repos.Chunks.GetChunk(ctx, chunk.Id)
	if err != nil {
		t.Fatalf("Failed to get chunk: %v", err)
	}

	if len(retrieved.Vector) != 3 {
		t.Fatalf("Expected 3-element vector, got %d", len(retrieved.Vector))
	}
}

func TestChunkUpdateMissing(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	_, err = repos.Chunks.UpdateChunks(ctx, &core.Chunk{
		Id:       9999,
		Contents: "Ghost chunk",
		Kind:     core.ChunkKindParagraph,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetChunksByDocument(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	// Insert out of index order across two documents
	chunks := []*core.Chunk{
		{DocumentId: 1, Index: 2, Contents: "Doc one third", Kind: core.ChunkKindParagraph},
		{DocumentId: 2, Index: 0, Contents: "Doc two first", Kind: core.ChunkKindParagraph},
		{DocumentId: 1, Index: 0, Contents: "Doc one first", Kind: core.ChunkKindParagraph},
		{DocumentId: 1, Index: 1, Contents: "Doc one second", Kind: core.ChunkKindParagraph},
	}

	_, err = repos.Chunks.AddChunks(ctx, chunks...)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	results, err := repos.Chunks.GetChunksByDocument(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get chunks by document: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(results))
	}

	want := []string{"Doc one first", "Doc one second", "Doc one third"}
	for i, chunk := range results {
		if chunk.Contents != want[i] {
			t.Fatalf("Expected '%s' at position %d, got '%s'", want[i], i, chunk.Contents)
		}
		if chunk.Index != i {
			t.Fatalf("Expected index %d, got %d", i, chunk.Index)
		}
	}
}

func TestReplaceChunks(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	old, err := repos.Chunks.AddChunks(ctx,
		&core.Chunk{DocumentId: 1, Index: 0, Contents: "Old first", Kind: core.ChunkKindParagraph},
		&core.Chunk{DocumentId: 1, Index: 1, Contents: "Old second", Kind: core.ChunkKindParagraph},
		&core.Chunk{DocumentId: 1, Index: 2, Contents: "Old third", Kind: core.ChunkKindParagraph},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	replacements := []*core.Chunk{
		{Index: 0, Contents: "New first", Kind: core.ChunkKindParagraph},
		{Index: 1, Contents: "New second", Kind: core.ChunkKindParagraph},
	}

	replaced, err := repos.Chunks.ReplaceChunks(ctx, 1, replacements)
	if err != nil {
		t.Fatalf("Failed to replace chunks: %v", err)
	}
	if len(replaced) != 2 {
		t.Fatalf("Expected 2 replacement chunks, got %d", len(replaced))
	}

	results, err := repos.Chunks.GetChunksByDocument(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get chunks by document: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 chunks after replace, got %d", len(results))
	}
	if results[0].Contents != "New first" || results[1].Contents != "New second" {
		t.Fatalf("Unexpected chunk contents after replace: '%s', '%s'",
			results[0].Contents, results[1].Contents)
	}

	// Old records must be gone
	for _, chunk := range old {
		_, err := repos.Chunks.GetChunk(ctx, chunk.Id)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound for old chunk %d, got %v", chunk.Id, err)
		}
	}

	count, err := repos.Chunks.CountChunks(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 chunks total, got %d", count)
	}
}

func TestReplaceChunksEmptyDocument(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	replaced, err := repos.Chunks.ReplaceChunks(ctx, 5, []*core.Chunk{
		{Index: 0, Contents: "Only chunk", Kind: core.ChunkKindParagraph},
	})
	if err != nil {
		t.Fatalf("Failed to replace chunks on empty document: %v", err)
	}
	if len(replaced) != 1 || replaced[0].Id == 0 {
		t.Fatalf("Expected 1 chunk with assigned ID, got %+v", replaced)
	}

	results, err := repos.Chunks.GetChunksByDocument(ctx, 5)
	if err != nil {
		t.Fatalf("Failed to get chunks by document: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(results))
	}
}

func TestDeleteChunksByDocument(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	_, err = repos.Chunks.AddChunks(ctx,
		&core.Chunk{DocumentId: 1, Index: 0, Contents: "Doc one", Kind: core.ChunkKindParagraph},
		&core.Chunk{DocumentId: 1, Index: 1, Contents: "Doc one again", Kind: core.ChunkKindParagraph},
		&core.Chunk{DocumentId: 2, Index: 0, Contents: "Doc two", Kind: core.ChunkKindParagraph},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	if err := repos.Chunks.DeleteChunksByDocument(ctx, 1); err != nil {
		t.Fatalf("Failed to delete chunks: %v", err)
	}

	gone, err := repos.Chunks.GetChunksByDocument(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to get chunks by document: %v", err)
	}
	if len(gone) != 0 {
		t.Fatalf("Expected 0 chunks for document 1, got %d", len(gone))
	}

	kept, err := repos.Chunks.GetChunksByDocument(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to get chunks by document: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("Expected 1 chunk for document 2, got %d", len(kept))
	}

	// Deleting an empty document is not an error
	if err := repos.Chunks.DeleteChunksByDocument(ctx, 1); err != nil {
		t.Fatalf("Expected no error on second delete, got %v", err)
	}
}

func TestCountChunks(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	count, err := repos.Chunks.CountChunks(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 chunks, got %d", count)
	}

	_, err = repos.Chunks.AddChunks(ctx,
		&core.Chunk{DocumentId: 1, Index: 0, Contents: "One", Kind: core.ChunkKindParagraph},
		&core.Chunk{DocumentId: 1, Index: 1, Contents: "Two", Kind: core.ChunkKindParagraph},
		&core.Chunk{DocumentId: 2, Index: 0, Contents: "Three", Kind: core.ChunkKindParagraph},
	)
	if err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	count, err = repos.Chunks.CountChunks(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 chunks, got %d", count)
	}
}
