package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// ErrUsageRepositoryRequired is returned when a usage repository is not provided.
var ErrUsageRepositoryRequired = errors.New("usage repository required")

// UsageRecorder persists usage events to storage. Other events pass through
// untouched. Persistence failures are logged; usage accounting must never
// fail a query.
type UsageRecorder struct {
	usageRepository storage.UsageRepository
	logger          *slog.Logger
}

var _ Sink = (*UsageRecorder)(nil)

// NewUsageRecorder creates a sink that accumulates usage counters.
func NewUsageRecorder(usageRepository storage.UsageRepository) (*UsageRecorder, error) {
	if usageRepository == nil {
		return nil, ErrUsageRepositoryRequired
	}
	return &UsageRecorder{
		usageRepository: usageRepository,
		logger:          slog.Default().With("component", "usage-recorder"),
	}, nil
}

func (r *UsageRecorder) IngestionCompleted(_ context.Context, _ IngestionEvent) {}

func (r *UsageRecorder) QueryExecuted(_ context.Context, _ QueryEvent) {}

func (r *UsageRecorder) UsageIncremented(ctx context.Context, event UsageEvent) {
	err := r.usageRepository.AddUsage(ctx, &core.Usage{
		OrganizationId: event.OrganizationId,
		InputTokens:    event.InputTokens,
		OutputTokens:   event.OutputTokens,
		QueryCount:     event.Queries,
	})
	if err != nil {
		r.logger.Error("failed to record usage",
			"organizationId", uint64(event.OrganizationId), "err", err)
	}
}
