package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/ai/mock"
	"github.com/poiesic/docent/chunk"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/events"
	"github.com/poiesic/docent/search"
	"github.com/poiesic/docent/storage/badger"
)

// recordingSink captures emitted events for assertions.
type recordingSink struct {
	queries []events.QueryEvent
	usage   []events.UsageEvent
}

func (s *recordingSink) IngestionCompleted(context.Context, events.IngestionEvent) {}

func (s *recordingSink) QueryExecuted(_ context.Context, event events.QueryEvent) {
	s.queries = append(s.queries, event)
}

func (s *recordingSink) UsageIncremented(_ context.Context, event events.UsageEvent) {
	s.usage = append(s.usage, event)
}

type queryFixture struct {
	repos     *badger.Repositories
	embedder  *mock.MockEmbedder
	generator *mock.MockGenerator
	sink      *recordingSink
	processor *Processor
}

func setupProcessor(t *testing.T, opts ...ProcessorOption) *queryFixture {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	generator := mock.NewMockGenerator()
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockClassifier(), generator)

	retriever, err := search.NewRetriever(repos.Documents, repos.Chunks)
	require.NoError(t, err)

	sink := &recordingSink{}
	base := []ProcessorOption{
		WithEventSink(sink),
		WithTokenizer(chunk.NewWordTokenizer()),
		WithSimilarityFloor(0),
	}
	processor, err := NewProcessor(repos.Documents, repos.Messages, retriever, provider,
		append(base, opts...)...)
	require.NoError(t, err)

	return &queryFixture{
		repos:     repos,
		embedder:  embedder,
		generator: generator,
		sink:      sink,
		processor: processor,
	}
}

func (f *queryFixture) addDocument(t *testing.T, title string, status core.DocumentStatus) *core.Document {
	t.Helper()
	docs, err := f.repos.Documents.AddDocuments(context.Background(), &core.Document{
		Filename: strings.ToLower(strings.ReplaceAll(title, " ", "-")) + ".txt",
		Title:    title,
		MimeType: "text/plain",
		Status:   status,
	})
	require.NoError(t, err)
	return docs[0]
}

func (f *queryFixture) addChunk(t *testing.T, documentID core.ID, index int, contents string, vector []float32) *core.Chunk {
	t.Helper()
	chunks, err := f.repos.Chunks.AddChunks(context.Background(), &core.Chunk{
		DocumentId: documentID,
		Index:      index,
		Contents:   contents,
		Kind:       core.ChunkKindParagraph,
		PageNumber: 1,
		Vector:     vector,
	})
	require.NoError(t, err)
	return chunks[0]
}

func (f *queryFixture) sessionMessages(t *testing.T, sessionID core.ID) []*core.Message {
	t.Helper()
	msgs, err := f.repos.Messages.GetSessionMessages(context.Background(), sessionID, 0)
	require.NoError(t, err)
	return msgs
}

func TestNewProcessor(t *testing.T) {
	fixture := setupProcessor(t)
	provider := mock.NewMockProvider()
	retriever, err := search.NewRetriever(fixture.repos.Documents, fixture.repos.Chunks)
	require.NoError(t, err)

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewProcessor(nil, fixture.repos.Messages, retriever, provider)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil message repository", func(t *testing.T) {
		_, err := NewProcessor(fixture.repos.Documents, nil, retriever, provider)
		assert.Equal(t, ErrMessageRepositoryRequired, err)
	})

	t.Run("nil retriever", func(t *testing.T) {
		_, err := NewProcessor(fixture.repos.Documents, fixture.repos.Messages, nil, provider)
		assert.Equal(t, ErrRetrieverRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewProcessor(fixture.repos.Documents, fixture.repos.Messages, retriever, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("nil tokenizer option", func(t *testing.T) {
		_, err := NewProcessor(fixture.repos.Documents, fixture.repos.Messages, retriever, provider,
			WithTokenizer(nil))
		assert.Equal(t, ErrTokenizerRequired, err)
	})
}

func TestAsk_EmptyQuestion(t *testing.T) {
	fixture := setupProcessor(t)

	_, err := fixture.processor.Ask(context.Background(), Request{SessionId: 1, Question: "   "})
	assert.Equal(t, ErrEmptyQuestion, err)
}

func TestAsk_SuccessPersistsBothTurns(t *testing.T) {
	fixture := setupProcessor(t)
	doc := fixture.addDocument(t, "Service Agreement", core.DocumentStatusCompleted)
	stored := fixture.addChunk(t, doc.Id, 0, "Payment is due within 30 days.", []float32{1, 0, 0})

	answer, err := fixture.processor.Ask(context.Background(), Request{
		SessionId:      7,
		OrganizationId: 42,
		Question:       "When is payment due?",
		DocumentIds:    []core.ID{doc.Id},
	})
	require.NoError(t, err)
	require.NotNil(t, answer)

	assert.NotZero(t, answer.Id)
	assert.Equal(t, core.MessageRoleAssistant, answer.Role)
	assert.Equal(t, "mock-generator", answer.ModelUsed)
	assert.Greater(t, answer.InputTokens, 0)
	assert.Greater(t, answer.OutputTokens, 0)
	assert.Equal(t, []core.ID{stored.Id}, answer.ChunkRefs)

	// The default mock answer cites source [1]
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, 1, answer.Citations[0].Marker)
	assert.Equal(t, stored.Id, answer.Citations[0].ChunkId)
	assert.Equal(t, "Service Agreement", answer.Citations[0].DocumentTitle)

	msgs := fixture.sessionMessages(t, 7)
	require.Len(t, msgs, 2)
	assert.Equal(t, core.MessageRoleUser, msgs[0].Role)
	assert.Equal(t, "When is payment due?", msgs[0].Contents)
	assert.Equal(t, core.MessageRoleAssistant, msgs[1].Role)
	assert.Equal(t, answer.Contents, msgs[1].Contents)

	require.Len(t, fixture.sink.usage, 1)
	assert.Equal(t, core.ID(42), fixture.sink.usage[0].OrganizationId)
	assert.Greater(t, fixture.sink.usage[0].InputTokens, int64(0))
	assert.Equal(t, int64(1), fixture.sink.usage[0].Queries)

	require.Len(t, fixture.sink.queries, 1)
	event := fixture.sink.queries[0]
	assert.Equal(t, core.ID(7), event.SessionId)
	assert.Equal(t, 1, event.DocumentsSearched)
	assert.Equal(t, 1, event.ChunksRetrieved)
	assert.Equal(t, 1, event.CitationsGenerated)
	assert.Equal(t, "mock-generator", event.Model)
}

func TestAsk_NoRelevantChunksSkipsModel(t *testing.T) {
	fixture := setupProcessor(t, WithSimilarityFloor(0.5))
	doc := fixture.addDocument(t, "Unrelated Manual", core.DocumentStatusCompleted)
	fixture.addChunk(t, doc.Id, 0, "Assembly instructions.", []float32{0, 1, 0})

	answer, err := fixture.processor.Ask(context.Background(), Request{
		SessionId:      3,
		OrganizationId: 42,
		Question:       "When is payment due?",
		DocumentIds:    []core.ID{doc.Id},
	})
	require.NoError(t, err)
	require.NotNil(t, answer)

	assert.Equal(t, 0, fixture.generator.CallCount())
	assert.Equal(t, insufficientSourcesAnswer, answer.Contents)
	assert.Empty(t, answer.Citations)
	assert.Empty(t, answer.ModelUsed)

	// Both turns are still recorded
	msgs := fixture.sessionMessages(t, 3)
	require.Len(t, msgs, 2)
	assert.Equal(t, core.MessageRoleUser, msgs[0].Role)

	// The turn counts as a query but carries no token cost
	require.Len(t, fixture.sink.usage, 1)
	assert.Equal(t, int64(0), fixture.sink.usage[0].InputTokens)
	assert.Equal(t, int64(1), fixture.sink.usage[0].Queries)

	require.Len(t, fixture.sink.queries, 1)
	assert.Equal(t, 0, fixture.sink.queries[0].ChunksRetrieved)
}

func TestAsk_NoCandidatesWithFallbackDisabled(t *testing.T) {
	fixture := setupProcessor(t, WithSearchAllFallback(false))
	doc := fixture.addDocument(t, "Service Agreement", core.DocumentStatusCompleted)
	fixture.addChunk(t, doc.Id, 0, "text", []float32{1, 0, 0})

	_, err := fixture.processor.Ask(context.Background(), Request{
		SessionId: 1,
		Question:  "anything",
	})
	assert.ErrorIs(t, err, search.ErrNoCandidates)
	assert.Empty(t, fixture.sessionMessages(t, 1))
	assert.Equal(t, 0, fixture.generator.CallCount())
}

func TestAsk_FallbackSearchesCompletedDocuments(t *testing.T) {
	fixture := setupProcessor(t)
	completed := fixture.addDocument(t, "Service Agreement", core.DocumentStatusCompleted)
	fixture.addChunk(t, completed.Id, 0, "Payment is due within 30 days.", []float32{1, 0, 0})
	fixture.addDocument(t, "Half Uploaded", core.DocumentStatusPending)
	fixture.addDocument(t, "Broken Scan", core.DocumentStatusFailed)

	answer, err := fixture.processor.Ask(context.Background(), Request{
		SessionId: 1,
		Question:  "When is payment due?",
	})
	require.NoError(t, err)
	require.Len(t, answer.ChunkRefs, 1)

	// Only the completed document was searched
	require.Len(t, fixture.sink.queries, 1)
	assert.Equal(t, 1, fixture.sink.queries[0].DocumentsSearched)
}

func TestAsk_NoDocumentsAtAll(t *testing.T) {
	fixture := setupProcessor(t)

	_, err := fixture.processor.Ask(context.Background(), Request{
		SessionId: 1,
		Question:  "anything",
	})
	assert.ErrorIs(t, err, search.ErrNoCandidates)
}

func TestAsk_CandidateScoping(t *testing.T) {
	fixture := setupProcessor(t)
	docA := fixture.addDocument(t, "Doc A", core.DocumentStatusCompleted)
	fixture.addChunk(t, docA.Id, 0, "From document A.", []float32{1, 0, 0})
	docB := fixture.addDocument(t, "Doc B", core.DocumentStatusCompleted)
	chunkB := fixture.addChunk(t, docB.Id, 0, "From document B.", []float32{1, 0, 0})

	answer, err := fixture.processor.Ask(context.Background(), Request{
		SessionId:   1,
		Question:    "which document?",
		DocumentIds: []core.ID{docB.Id},
	})
	require.NoError(t, err)

	assert.Equal(t, []core.ID{chunkB.Id}, answer.ChunkRefs)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "Doc B", answer.Citations[0].DocumentTitle)
}

func TestAsk_GenerationFailureLeavesSessionUntouched(t *testing.T) {
	fixture := setupProcessor(t)
	doc := fixture.addDocument(t, "Service Agreement", core.DocumentStatusCompleted)
	fixture.addChunk(t, doc.Id, 0, "Payment is due within 30 days.", []float32{1, 0, 0})

	fixture.generator.GenerateAnswerFunc = func(context.Context, *ai.GenerationRequest) (*ai.GenerationResult, error) {
		return nil, fmt.Errorf("%w: backend unavailable", ai.ErrModelProvider)
	}

	_, err := fixture.processor.Ask(context.Background(), Request{
		SessionId:   5,
		Question:    "When is payment due?",
		DocumentIds: []core.ID{doc.Id},
	})
	assert.ErrorIs(t, err, ai.ErrModelProvider)

	assert.Empty(t, fixture.sessionMessages(t, 5))
	assert.Empty(t, fixture.sink.usage)
	assert.Empty(t, fixture.sink.queries)
}

func TestAsk_CancelledBeforeEmbedding(t *testing.T) {
	fixture := setupProcessor(t)
	doc := fixture.addDocument(t, "Service Agreement", core.DocumentStatusCompleted)
	fixture.addChunk(t, doc.Id, 0, "text", []float32{1, 0, 0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fixture.processor.Ask(ctx, Request{
		SessionId:   1,
		Question:    "anything",
		DocumentIds: []core.ID{doc.Id},
	})
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 0, fixture.embedder.CallCount())
	assert.Equal(t, 0, fixture.generator.CallCount())
	assert.Empty(t, fixture.sessionMessages(t, 1))
}

func TestAsk_CancelledAfterGenerationDiscardsAnswer(t *testing.T) {
	fixture := setupProcessor(t)
	doc := fixture.addDocument(t, "Service Agreement", core.DocumentStatusCompleted)
	fixture.addChunk(t, doc.Id, 0, "Payment is due within 30 days.", []float32{1, 0, 0})

	ctx, cancel := context.WithCancel(context.Background())
	fixture.generator.GenerateAnswerFunc = func(context.Context, *ai.GenerationRequest) (*ai.GenerationResult, error) {
		// The caller goes away while the provider call is in flight.
		cancel()
		return &ai.GenerationResult{Content: "Too late [1].", ModelUsed: "mock-generator"}, nil
	}

	_, err := fixture.processor.Ask(ctx, Request{
		SessionId:   9,
		Question:    "When is payment due?",
		DocumentIds: []core.ID{doc.Id},
	})
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1, fixture.generator.CallCount())
	assert.Empty(t, fixture.sessionMessages(t, 9))
	assert.Empty(t, fixture.sink.usage)
	assert.Empty(t, fixture.sink.queries)
}

func TestAsk_StreamFuncReceivesAnswer(t *testing.T) {
	fixture := setupProcessor(t)
	doc := fixture.addDocument(t, "Service Agreement", core.DocumentStatusCompleted)
	fixture.addChunk(t, doc.Id, 0, "Payment is due within 30 days.", []float32{1, 0, 0})

	var streamed strings.Builder
	answer, err := fixture.processor.Ask(context.Background(), Request{
		SessionId:   1,
		Question:    "When is payment due?",
		DocumentIds: []core.ID{doc.Id},
		StreamFunc: func(_ context.Context, chunk []byte) error {
			streamed.Write(chunk)
			return nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, answer.Contents, streamed.String())
}

func TestAsk_HistoryCarriedIntoPrompt(t *testing.T) {
	fixture := setupProcessor(t)
	doc := fixture.addDocument(t, "Service Agreement", core.DocumentStatusCompleted)
	fixture.addChunk(t, doc.Id, 0, "Payment is due within 30 days.", []float32{1, 0, 0})

	_, err := fixture.processor.Ask(context.Background(), Request{
		SessionId:   4,
		Question:    "When is payment due?",
		DocumentIds: []core.ID{doc.Id},
	})
	require.NoError(t, err)

	_, err = fixture.processor.Ask(context.Background(), Request{
		SessionId:   4,
		Question:    "And what about late fees?",
		DocumentIds: []core.ID{doc.Id},
	})
	require.NoError(t, err)

	// Second call: two history turns plus the new question
	last := fixture.generator.LastRequest
	require.NotNil(t, last)
	require.Len(t, last.Messages, 3)
	assert.Equal(t, "When is payment due?", last.Messages[0].Content)
	assert.Equal(t, ai.PromptRoleAssistant, last.Messages[1].Role)
	assert.Equal(t, "And what about late fees?", last.Messages[2].Content)
}

func TestAsk_EmbeddingFailurePropagates(t *testing.T) {
	fixture := setupProcessor(t)
	doc := fixture.addDocument(t, "Service Agreement", core.DocumentStatusCompleted)
	fixture.addChunk(t, doc.Id, 0, "text", []float32{1, 0, 0})

	fixture.embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("embedding backend down")
	}

	_, err := fixture.processor.Ask(context.Background(), Request{
		SessionId:   1,
		Question:    "anything",
		DocumentIds: []core.ID{doc.Id},
	})
	require.Error(t, err)
	assert.Empty(t, fixture.sessionMessages(t, 1))
	assert.Equal(t, 0, fixture.generator.CallCount())
}
