package events

import "context"

// Multi fans every event out to each sink in order.
type Multi []Sink

var _ Sink = (Multi)(nil)

func (m Multi) IngestionCompleted(ctx context.Context, event IngestionEvent) {
	for _, sink := range m {
		sink.IngestionCompleted(ctx, event)
	}
}

func (m Multi) QueryExecuted(ctx context.Context, event QueryEvent) {
	for _, sink := range m {
		sink.QueryExecuted(ctx, event)
	}
}

func (m Multi) UsageIncremented(ctx context.Context, event UsageEvent) {
	for _, sink := range m {
		sink.UsageIncremented(ctx, event)
	}
}
