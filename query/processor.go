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


package query

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/chunk"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/events"
	"github.com/poiesic/docent/search"
	"github.com/poiesic/docent/storage"
)

// DefaultHistoryMessages bounds how many recent session messages are loaded
// per query. The prompt builder trims further by token budget.
const DefaultHistoryMessages = 50

// insufficientSourcesAnswer is persisted as the assistant's reply when
// retrieval finds nothing above the similarity floor. It is an answer, not
// an error; the session history records that the sources came up empty.
const insufficientSourcesAnswer = "The available documents do not contain relevant information for " +
	"this question. Try rephrasing it or selecting different documents."

// Request describes one question asked within a session.
type Request struct {
	// SessionId scopes conversation history and message persistence.
	SessionId core.ID

	// OrganizationId attributes token usage.
	OrganizationId core.ID

	// Question is the user's natural-language query.
	Question string

	// DocumentIds restricts retrieval to the listed documents. Empty applies
	// the processor's candidate fallback policy.
	DocumentIds []core.ID

	// Template overrides the default grounding instruction when set.
	Template string

	// StreamFunc, when set, receives raw answer fragments as they arrive.
	StreamFunc func(ctx context.Context, chunk []byte) error
}

// Processor runs the query pipeline: embed, retrieve, prompt, generate,
// extract citations, persist. The pipeline is strictly sequential; each
// stage's output is the next stage's input.
type Processor struct {
	documentRepository storage.DocumentRepository
	messageRepository  storage.MessageRepository
	retriever          *search.Retriever
	provider           ai.AIProvider
	prompts            *PromptBuilder
	sink               events.Sink
	tokenizer          chunk.Tokenizer
	topK               int
	similarityFloor    float32
	searchAllFallback  bool
	historyMessages    int
	historyBudget      int
	logger             *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithEventSink sets the sink receiving query and usage events.
// Default is events.NopSink.
func WithEventSink(sink events.Sink) ProcessorOption {
	return func(p *Processor) error {
		if sink == nil {
			sink = events.NopSink{}
		}
		p.sink = sink
		return nil
	}
}

// WithSearchAllFallback controls what happens when a request selects no
// documents: search every completed document (true, the default), or reject
// the request with search.ErrNoCandidates (false).
func WithSearchAllFallback(enabled bool) ProcessorOption {
	return func(p *Processor) error {
		p.searchAllFallback = enabled
		return nil
	}
}

// WithTopK sets how many chunks retrieval returns.
// Values below 1 select the retriever default.
func WithTopK(topK int) ProcessorOption {
	return func(p *Processor) error {
		p.topK = topK
		return nil
	}
}

// WithSimilarityFloor sets the minimum similarity for retrieved chunks.
// Negative values select the retriever default; zero disables the cutoff.
func WithSimilarityFloor(floor float32) ProcessorOption {
	return func(p *Processor) error {
		p.similarityFloor = floor
		return nil
	}
}

// WithTokenizer sets the tokenizer used for history trimming.
// Default is chunk.NewTokenizer().
func WithTokenizer(tokenizer chunk.Tokenizer) ProcessorOption {
	return func(p *Processor) error {
		if tokenizer == nil {
			return ErrTokenizerRequired
		}
		p.tokenizer = tokenizer
		return nil
	}
}

// WithHistoryBudget sets the token budget for conversation history.
// Values below 1 keep the default.
func WithHistoryBudget(budget int) ProcessorOption {
	return func(p *Processor) error {
		if budget > 0 {
			p.historyBudget = budget
		}
		return nil
	}
}

// NewProcessor creates a query processor.
func NewProcessor(
	documentRepository storage.DocumentRepository,
	messageRepository storage.MessageRepository,
	retriever *search.Retriever,
	provider ai.AIProvider,
	opts ...ProcessorOption,
) (*Processor, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if messageRepository == nil {
		return nil, ErrMessageRepositoryRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Processor{
		documentRepository: documentRepository,
		messageRepository:  messageRepository,
		retriever:          retriever,
		provider:           provider,
		sink:               events.NopSink{},
		similarityFloor:    -1,
		searchAllFallback:  true,
		historyMessages:    DefaultHistoryMessages,
		historyBudget:      DefaultHistoryTokenBudget,
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.tokenizer == nil {
		p.tokenizer = chunk.NewTokenizer()
	}

	prompts, err := NewPromptBuilder(p.tokenizer, WithHistoryTokenBudget(p.historyBudget))
	if err != nil {
		return nil, err
	}
	p.prompts = prompts

	return p, nil
}

// Ask answers a question against the session's documents and returns the
// persisted assistant message. On success the user and assistant messages
// are appended atomically, usage is incremented, and a query event is
// emitted. Any failure before persistence leaves the session untouched.
//
// Cancellation observed before the model call aborts with no side effects.
// Cancellation observed after the model call discards the generated answer;
// nothing is persisted.
func (p *Processor) Ask(ctx context.Context, req Request) (*core.Message, error) {
	start := time.Now()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	// 1. Resolve candidate documents
	candidates, err := p.resolveCandidates(ctx, req.DocumentIds)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Embed the question
	vector, err := p.provider.Embedder().EmbedText(ctx, question)
	if err != nil {
		p.logger.Error("error embedding question", "sessionId", uint64(req.SessionId), "err", err)
		return nil, err
	}

	// 3. Retrieve
	retrieved, err := p.retriever.Retrieve(ctx, vector, candidates, p.topK, p.similarityFloor)
	if err != nil {
		return nil, err
	}

	// 4. Nothing above the floor: answer without a model call
	if len(retrieved) == 0 {
		p.logger.Info("no relevant chunks found",
			"sessionId", uint64(req.SessionId),
			"candidates", len(candidates))
		return p.persistInsufficient(ctx, req, question, len(candidates), start)
	}

	// 5. Assemble the prompt
	history, err := p.messageRepository.GetSessionMessages(ctx, req.SessionId, p.historyMessages)
	if err != nil {
		p.logger.Error("error loading session history", "sessionId", uint64(req.SessionId), "err", err)
		return nil, err
	}

	prompt := p.prompts.Build(question, retrieved, req.Template, history)
	prompt.StreamFunc = req.StreamFunc

	// 6. Generate. A cancelled caller stops here, before any provider cost.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := p.provider.Generator().GenerateAnswer(ctx, prompt)
	if err != nil {
		return nil, err
	}

	// The provider call may have finished after the caller went away. The
	// cost is sunk, but the result must not reach the session.
	if err := ctx.Err(); err != nil {
		p.logger.Warn("discarding answer generated for cancelled request",
			"sessionId", uint64(req.SessionId))
		return nil, err
	}

	// 7. Map citation markers back to sources
	citations := ExtractCitations(result.Content, retrieved)

	// 8. Persist both turns atomically
	chunkRefs := make([]core.ID, len(retrieved))
	for i, source := range retrieved {
		chunkRefs[i] = source.Chunk.Id
	}

	added, err := p.messageRepository.AddMessages(ctx,
		&core.Message{
			SessionId: req.SessionId,
			Role:      core.MessageRoleUser,
			Contents:  question,
		},
		&core.Message{
			SessionId:    req.SessionId,
			Role:         core.MessageRoleAssistant,
			Contents:     result.Content,
			Citations:    citations,
			ChunkRefs:    chunkRefs,
			ModelUsed:    result.ModelUsed,
			InputTokens:  result.InputTokens,
			OutputTokens: result.OutputTokens,
			LatencyMs:    time.Since(start).Milliseconds(),
		})
	if err != nil {
		p.logger.Error("error persisting messages", "sessionId", uint64(req.SessionId), "err", err)
		return nil, err
	}

	p.sink.UsageIncremented(ctx, events.UsageEvent{
		OrganizationId: req.OrganizationId,
		InputTokens:    int64(result.InputTokens),
		OutputTokens:   int64(result.OutputTokens),
		Queries:        1,
	})
	p.sink.QueryExecuted(ctx, events.QueryEvent{
		SessionId:          req.SessionId,
		DocumentsSearched:  len(candidates),
		ChunksRetrieved:    len(retrieved),
		CitationsGenerated: len(citations),
		Model:              result.ModelUsed,
	})

	p.logger.Debug("query complete",
		"sessionId", uint64(req.SessionId),
		"chunks", len(retrieved),
		"citations", len(citations),
		"latencyMs", time.Since(start).Milliseconds())

	return added[1], nil
}

// resolveCandidates turns the request's document selection into the set of
// documents retrieval may search. An empty selection either falls back to
// every completed document or is rejected, depending on configuration. This
// is the single decision point for the fallback policy.
func (p *Processor) resolveCandidates(ctx context.Context, selected []core.ID) ([]core.ID, error) {
	if len(selected) > 0 {
		return selected, nil
	}
	if !p.searchAllFallback {
		return nil, search.ErrNoCandidates
	}

	documents, err := p.documentRepository.ListDocuments(ctx)
	if err != nil {
		p.logger.Error("error listing documents for candidate fallback", "err", err)
		return nil, err
	}

	candidates := make([]core.ID, 0, len(documents))
	for _, document := range documents {
		if document.Status != core.DocumentStatusCompleted {
			continue
		}
		candidates = append(candidates, document.Id)
	}
	if len(candidates) == 0 {
		return nil, search.ErrNoCandidates
	}
	return candidates, nil
}

// persistInsufficient records the question and a stock assistant reply when
// retrieval returns nothing. The turn still counts as a query for usage, but
// carries no token cost since no model ran.
func (p *Processor) persistInsufficient(ctx context.Context, req Request, question string, candidateCount int, start time.Time) (*core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	added, err := p.messageRepository.AddMessages(ctx,
		&core.Message{
			SessionId: req.SessionId,
			Role:      core.MessageRoleUser,
			Contents:  question,
		},
		&core.Message{
			SessionId: req.SessionId,
			Role:      core.MessageRoleAssistant,
			Contents:  insufficientSourcesAnswer,
			LatencyMs: time.Since(start).Milliseconds(),
		})
	if err != nil {
		p.logger.Error("error persisting messages", "sessionId", uint64(req.SessionId), "err", err)
		return nil, err
	}

	p.sink.UsageIncremented(ctx, events.UsageEvent{
		OrganizationId: req.OrganizationId,
		Queries:        1,
	})
	p.sink.QueryExecuted(ctx, events.QueryEvent{
		SessionId:         req.SessionId,
		DocumentsSearched: candidateCount,
	})

	return added[1], nil
}
