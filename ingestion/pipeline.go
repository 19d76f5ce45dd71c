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


package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/chunk"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/events"
	"github.com/poiesic/docent/parse"
	"github.com/poiesic/docent/storage"
)

// DefaultWorkers bounds how many documents are processed concurrently.
const DefaultWorkers = 2

// maxJobAttempts is the total number of deliveries a job gets before it is
// dropped and its document marked failed.
const maxJobAttempts = 2

// Pipeline turns uploaded files into searchable documents. Submission
// returns immediately; parsing, chunking, classification and embedding run
// on a worker pool, and the document record tracks progress through its
// status field.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	provider           ai.AIProvider
	queue              JobQueue
	pool               *ants.Pool
	chunker            *chunk.Chunker
	sink               events.Sink
	organization       core.ID
	logger             *slog.Logger

	mu       sync.Mutex
	inflight map[core.ID]bool
	pending  sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithWorkers sets the worker pool size for concurrent document processing.
// Default is DefaultWorkers.
func WithWorkers(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithQueue sets the job queue. Default is an in-memory queue.
func WithQueue(queue JobQueue) Option {
	return func(p *Pipeline) error {
		if queue != nil {
			p.queue = queue
		}
		return nil
	}
}

// WithChunker sets the chunker used to split parsed documents. Default is a
// chunker with the package defaults over the standard tokenizer.
func WithChunker(chunker *chunk.Chunker) Option {
	return func(p *Pipeline) error {
		if chunker != nil {
			p.chunker = chunker
		}
		return nil
	}
}

// WithEventSink sets the sink receiving ingestion completion events.
// Default discards them.
func WithEventSink(sink events.Sink) Option {
	return func(p *Pipeline) error {
		if sink == nil {
			sink = events.NopSink{}
		}
		p.sink = sink
		return nil
	}
}

// WithOrganization sets the organization recorded on ingested documents.
func WithOrganization(id core.ID) Option {
	return func(p *Pipeline) error {
		p.organization = id
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline and starts its workers.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	pool, err := ants.NewPool(DefaultWorkers)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		provider:           provider,
		pool:               pool,
		sink:               events.NopSink{},
		inflight:           make(map[core.ID]bool),
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.pool.Release()
			return nil, err
		}
	}

	if p.queue == nil {
		p.queue = NewMemoryQueue(0)
	}
	if p.chunker == nil {
		chunker, err := chunk.NewChunker(chunk.NewTokenizer())
		if err != nil {
			p.pool.Release()
			return nil, err
		}
		p.chunker = chunker
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	go p.dispatch()

	return p, nil
}

// IngestFile records a new document and queues it for processing. The
// returned document is pending; processing happens asynchronously and is
// observable through the document status and the event sink. A file whose
// content hash matches an existing document is rejected with
// storage.ErrDuplicateKey.
func (p *Pipeline) IngestFile(ctx context.Context, filename, mimeType string, data []byte) (*core.Document, error) {
	if mimeType == "" {
		mimeType = parse.DetectMime(filename)
	}

	document := &core.Document{
		OrganizationId: p.organization,
		Filename:       filename,
		Title:          titleFromFilename(filename),
		MimeType:       mimeType,
		ContentHash:    core.HashContent(data),
		Status:         core.DocumentStatusPending,
	}
	if err := core.ValidateDocument(document); err != nil {
		return nil, err
	}

	added, err := p.documentRepository.AddDocuments(ctx, document)
	if err != nil {
		return nil, err
	}
	document = added[0]

	if err := p.submit(ctx, document.Id, mimeType, data); err != nil {
		p.failDocument(ctx, document.Id, err)
		return nil, err
	}

	p.logger.Debug("document queued",
		"documentId", uint64(document.Id),
		"filename", filename,
		"bytes", len(data))

	return document, nil
}

// Reprocess runs the pipeline again for an existing document with fresh
// bytes. The current chunk set stays searchable until the replacement is
// committed. A reprocess for a document already queued or running is
// rejected with ErrReprocessInFlight.
func (p *Pipeline) Reprocess(ctx context.Context, id core.ID, data []byte) error {
	document, err := p.documentRepository.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	return p.submit(ctx, id, document.MimeType, data)
}

// Wait blocks until every submitted job has been fully handled.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release stops the dispatcher and the worker pool. Documents still in
// flight are marked failed with the cancellation error. Callers wanting a
// clean drain call Wait first.
func (p *Pipeline) Release() {
	p.cancel()
	p.pool.Release()
}

// submit registers a document as in flight and enqueues its job. Exactly
// one job per document may be live at a time.
func (p *Pipeline) submit(ctx context.Context, id core.ID, mimeType string, data []byte) error {
	p.mu.Lock()
	if p.inflight[id] {
		p.mu.Unlock()
		return ErrReprocessInFlight
	}
	p.inflight[id] = true
	p.mu.Unlock()

	p.pending.Add(1)
	if err := p.queue.Enqueue(ctx, &Job{DocumentId: id, MimeType: mimeType, Data: data}); err != nil {
		p.conclude(id)
		return err
	}
	return nil
}

// conclude clears the in-flight mark once a job is fully handled.
func (p *Pipeline) conclude(id core.ID) {
	p.mu.Lock()
	delete(p.inflight, id)
	p.mu.Unlock()
	p.pending.Done()
}

// dispatch feeds received jobs to the worker pool until the pipeline is
// released.
func (p *Pipeline) dispatch() {
	for {
		job, err := p.queue.Receive(p.ctx)
		if err != nil {
			return
		}
		if err := p.pool.Submit(func() { p.handle(job) }); err != nil {
			p.logger.Error("error submitting ingestion job",
				"documentId", uint64(job.DocumentId),
				"error", err)
			p.failDocument(context.Background(), job.DocumentId, err)
			p.conclude(job.DocumentId)
		}
	}
}

// handle runs one delivered job and settles it with the queue. A job whose
// outcome was recorded is acked; a failed delivery is redelivered until its
// attempts run out, then the document is marked failed.
func (p *Pipeline) handle(job *Job) {
	err := p.process(p.ctx, job)
	if err == nil {
		if ackErr := p.queue.Ack(p.ctx, job); ackErr != nil {
			p.logger.Error("error acking ingestion job",
				"documentId", uint64(job.DocumentId),
				"error", ackErr)
		}
		p.conclude(job.DocumentId)
		return
	}

	// A cancelled run means the pipeline is shutting down. Redelivery
	// would spin, so settle the document now. The status write uses a
	// fresh context because the run context is already dead.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		_ = p.queue.Nack(context.Background(), job, false)
		p.failDocument(context.Background(), job.DocumentId, err)
		p.conclude(job.DocumentId)
		return
	}

	if job.Attempts < maxJobAttempts {
		p.logger.Warn("requeueing ingestion job",
			"documentId", uint64(job.DocumentId),
			"attempt", job.Attempts,
			"error", err)
		if nackErr := p.queue.Nack(p.ctx, job, true); nackErr == nil {
			return
		}
		// Redelivery failed, settle below.
	} else {
		_ = p.queue.Nack(context.Background(), job, false)
	}

	p.logger.Error("ingestion job failed",
		"documentId", uint64(job.DocumentId),
		"attempts", job.Attempts,
		"error", err)
	p.failDocument(context.Background(), job.DocumentId, err)
	p.conclude(job.DocumentId)
}

// process runs one document through the pipeline stages. It returns nil
// when the outcome, completed or failed, was recorded on the document; a
// non-nil error means the outcome could not be recorded and the job may be
// redelivered.
func (p *Pipeline) process(ctx context.Context, job *Job) error {
	document, err := p.documentRepository.GetDocument(ctx, job.DocumentId)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// The record is gone, nothing to settle.
			p.logger.Error("document missing for ingestion job", "documentId", uint64(job.DocumentId))
			return nil
		}
		return err
	}

	logger := p.logger.With("documentId", uint64(document.Id), "filename", document.Filename)

	document.Status = core.DocumentStatusProcessing
	document.Error = ""
	document.ContentHash = core.HashContent(job.Data)
	if _, err := p.documentRepository.UpdateDocuments(ctx, document); err != nil {
		return err
	}

	parsed, err := p.parse(job)
	if err != nil {
		logger.Warn("parse failed", "mimeType", job.MimeType, "error", err)
		return p.recordFailure(ctx, document, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if parsed.Empty() {
		logger.Warn("no text extracted")
		document.Classification = core.DefaultClassification()
		document.PageCount = 0
		document.ChunkCount = 0
		return p.recordCompletion(ctx, document)
	}

	values := p.chunker.Chunk(parsed)
	chunks := make([]*core.Chunk, len(values))
	for i := range values {
		values[i].DocumentId = document.Id
		chunks[i] = &values[i]
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Classification and embedding only read the chunk texts, so they run
	// concurrently. Classification is best-effort and cannot fail the
	// document; an embedding error is decided after the texts are stored.
	var vectors [][]float32
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		document.Classification = p.classify(groupCtx, chunks)
		return nil
	})
	group.Go(func() error {
		var embedErr error
		vectors, embedErr = p.embed(groupCtx, chunks)
		return embedErr
	})
	embedErr := group.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	if embedErr == nil {
		for i := range chunks {
			chunks[i].Vector = vectors[i]
		}
	}

	document.PageCount = parsed.PageCount()

	stored, err := p.chunkRepository.ReplaceChunks(ctx, document.Id, chunks)
	if err != nil {
		return err
	}
	document.ChunkCount = len(stored)

	if embedErr != nil {
		// The chunk texts are stored, so a later re-embedding run can
		// recover the document without another upload.
		logger.Error("embedding failed, chunks stored without vectors", "error", embedErr)
		return p.recordFailure(ctx, document, embedErr)
	}

	if err := p.recordCompletion(ctx, document); err != nil {
		return err
	}

	logger.Info("document ingested",
		"pages", document.PageCount,
		"chunks", document.ChunkCount,
		"documentType", document.Classification.DocumentType)
	return nil
}

// parse resolves the parser for the job's mime type and runs it.
func (p *Pipeline) parse(job *Job) (*core.ParsedDocument, error) {
	parser, err := parse.ForMime(job.MimeType)
	if err != nil {
		return nil, err
	}
	return parser.Parse(job.Data)
}

// recordCompletion persists the completed status and emits the completion
// event.
func (p *Pipeline) recordCompletion(ctx context.Context, document *core.Document) error {
	document.Status = core.DocumentStatusCompleted
	document.Error = ""
	if _, err := p.documentRepository.UpdateDocuments(ctx, document); err != nil {
		return err
	}
	p.emit(ctx, document)
	return nil
}

// recordFailure persists the failed status with its cause and emits the
// completion event. The returned error is nil unless the status write
// itself failed.
func (p *Pipeline) recordFailure(ctx context.Context, document *core.Document, cause error) error {
	document.Status = core.DocumentStatusFailed
	document.Error = cause.Error()
	if _, err := p.documentRepository.UpdateDocuments(ctx, document); err != nil {
		return err
	}
	p.emit(ctx, document)
	return nil
}

// failDocument is the best-effort terminal write used when a job is
// dropped outside the stage sequence.
func (p *Pipeline) failDocument(ctx context.Context, id core.ID, cause error) {
	document, err := p.documentRepository.GetDocument(ctx, id)
	if err != nil {
		p.logger.Error("error loading document to mark failed",
			"documentId", uint64(id),
			"error", err)
		return
	}
	if err := p.recordFailure(ctx, document, cause); err != nil {
		p.logger.Error("error marking document failed",
			"documentId", uint64(id),
			"error", err)
	}
}

func (p *Pipeline) emit(ctx context.Context, document *core.Document) {
	p.sink.IngestionCompleted(ctx, events.IngestionEvent{
		DocumentId: document.Id,
		Status:     document.Status,
		Error:      document.Error,
		PageCount:  document.PageCount,
		ChunkCount: document.ChunkCount,
	})
}

// titleFromFilename strips the extension from the upload name. Parsers do
// not extract titles, so the filename stem is what list views show.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if title == "" {
		return base
	}
	return title
}
