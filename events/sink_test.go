package events

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage/badger"
)

// capturingSink records received events for assertions.
type capturingSink struct {
	ingestions []IngestionEvent
	queries    []QueryEvent
	usage      []UsageEvent
}

func (s *capturingSink) IngestionCompleted(_ context.Context, event IngestionEvent) {
	s.ingestions = append(s.ingestions, event)
}

func (s *capturingSink) QueryExecuted(_ context.Context, event QueryEvent) {
	s.queries = append(s.queries, event)
}

func (s *capturingSink) UsageIncremented(_ context.Context, event UsageEvent) {
	s.usage = append(s.usage, event)
}

func TestMultiFansOut(t *testing.T) {
	first := &capturingSink{}
	second := &capturingSink{}
	multi := Multi{first, second}

	ctx := context.Background()
	multi.IngestionCompleted(ctx, IngestionEvent{DocumentId: 7, Status: core.DocumentStatusCompleted, ChunkCount: 3})
	multi.QueryExecuted(ctx, QueryEvent{SessionId: 9, ChunksRetrieved: 5, Model: "qwen2.5:3b"})
	multi.UsageIncremented(ctx, UsageEvent{OrganizationId: 1, InputTokens: 100, OutputTokens: 40, Queries: 1})

	for _, sink := range []*capturingSink{first, second} {
		require.Len(t, sink.ingestions, 1)
		assert.Equal(t, core.ID(7), sink.ingestions[0].DocumentId)
		require.Len(t, sink.queries, 1)
		assert.Equal(t, 5, sink.queries[0].ChunksRetrieved)
		require.Len(t, sink.usage, 1)
		assert.Equal(t, int64(100), sink.usage[0].InputTokens)
	}
}

func TestUsageRecorderPersists(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	recorder, err := NewUsageRecorder(repos.Usage)
	require.NoError(t, err)

	ctx := context.Background()
	recorder.UsageIncremented(ctx, UsageEvent{OrganizationId: 42, InputTokens: 120, OutputTokens: 30, Queries: 1})
	recorder.UsageIncremented(ctx, UsageEvent{OrganizationId: 42, InputTokens: 80, OutputTokens: 20, Queries: 1})

	usage, err := repos.Usage.GetUsage(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, usage)
	assert.Equal(t, int64(200), usage.InputTokens)
	assert.Equal(t, int64(50), usage.OutputTokens)
	assert.Equal(t, int64(2), usage.QueryCount)
}

func TestUsageRecorderIgnoresOtherEvents(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	recorder, err := NewUsageRecorder(repos.Usage)
	require.NoError(t, err)

	ctx := context.Background()
	recorder.IngestionCompleted(ctx, IngestionEvent{DocumentId: 1})
	recorder.QueryExecuted(ctx, QueryEvent{SessionId: 1})

	usage, err := repos.Usage.GetUsage(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, usage)
}

func TestNewUsageRecorderRequiresRepository(t *testing.T) {
	_, err := NewUsageRecorder(nil)
	assert.ErrorIs(t, err, ErrUsageRepositoryRequired)
}

func TestLogSink(t *testing.T) {
	sink := NewLogSink(slog.New(slog.DiscardHandler))

	// The sink must tolerate every event shape without error or panic.
	ctx := context.Background()
	sink.IngestionCompleted(ctx, IngestionEvent{DocumentId: 1, Status: core.DocumentStatusCompleted, PageCount: 2, ChunkCount: 10})
	sink.IngestionCompleted(ctx, IngestionEvent{DocumentId: 2, Status: core.DocumentStatusFailed, Error: "parse failure"})
	sink.QueryExecuted(ctx, QueryEvent{SessionId: 3, DocumentsSearched: 4, ChunksRetrieved: 5, CitationsGenerated: 2, Model: "claude-sonnet-4-5"})
	sink.UsageIncremented(ctx, UsageEvent{OrganizationId: 6, InputTokens: 7, OutputTokens: 8, Queries: 1})
}

func TestNewLogSinkNilLogger(t *testing.T) {
	sink := NewLogSink(nil)
	require.NotNil(t, sink)
	sink.UsageIncremented(context.Background(), UsageEvent{})
}
