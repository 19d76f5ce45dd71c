package events

import (
	"context"
	"log/slog"

	"github.com/poiesic/docent/core"
)

// LogSink writes events to structured logs.
type LogSink struct {
	logger *slog.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a sink logging at Info level. A nil logger selects
// slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "events")}
}

func (s *LogSink) IngestionCompleted(ctx context.Context, event IngestionEvent) {
	attrs := []any{
		"documentId", uint64(event.DocumentId),
		"status", event.Status.String(),
		"pageCount", event.PageCount,
		"chunkCount", event.ChunkCount,
	}
	if event.Status == core.DocumentStatusFailed {
		attrs = append(attrs, "error", event.Error)
		s.logger.WarnContext(ctx, "ingestion failed", attrs...)
		return
	}
	s.logger.InfoContext(ctx, "ingestion completed", attrs...)
}

func (s *LogSink) QueryExecuted(ctx context.Context, event QueryEvent) {
	s.logger.InfoContext(ctx, "query executed",
		"sessionId", uint64(event.SessionId),
		"documentsSearched", event.DocumentsSearched,
		"chunksRetrieved", event.ChunksRetrieved,
		"citationsGenerated", event.CitationsGenerated,
		"model", event.Model)
}

func (s *LogSink) UsageIncremented(ctx context.Context, event UsageEvent) {
	s.logger.DebugContext(ctx, "usage incremented",
		"organizationId", uint64(event.OrganizationId),
		"inputTokens", event.InputTokens,
		"outputTokens", event.OutputTokens,
		"queries", event.Queries)
}
