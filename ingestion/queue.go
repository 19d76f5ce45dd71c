package ingestion

import (
	"context"

	"github.com/poiesic/docent/core"
)

// defaultQueueCapacity bounds undelivered jobs in the in-memory queue.
const defaultQueueCapacity = 64

// Job is one unit of ingestion work: the document record to process plus
// the raw bytes to process under it.
type Job struct {
	DocumentId core.ID
	MimeType   string
	Data       []byte

	// Attempts counts deliveries of this job. The queue increments it on
	// every Receive, so the first delivery observes 1.
	Attempts int
}

// JobQueue decouples document submission from processing. Implementations
// deliver every enqueued job at least once; a job nacked with requeue is
// delivered again.
type JobQueue interface {
	// Enqueue makes the job available for delivery.
	Enqueue(ctx context.Context, job *Job) error

	// Receive blocks until a job is available or the context ends.
	Receive(ctx context.Context) (*Job, error)

	// Ack marks a delivered job as fully handled.
	Ack(ctx context.Context, job *Job) error

	// Nack gives up on a delivered job. With requeue it is delivered
	// again, otherwise it is dropped.
	Nack(ctx context.Context, job *Job, requeue bool) error
}

// MemoryQueue is a process-local JobQueue backed by a buffered channel.
type MemoryQueue struct {
	jobs chan *Job
}

// NewMemoryQueue creates an in-memory queue holding up to capacity
// undelivered jobs. Capacity below 1 selects the default.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity < 1 {
		capacity = defaultQueueCapacity
	}
	return &MemoryQueue{jobs: make(chan *Job, capacity)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job *Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Receive(ctx context.Context) (*Job, error) {
	select {
	case job := <-q.jobs:
		job.Attempts++
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ack is a no-op: channel delivery already removed the job.
func (q *MemoryQueue) Ack(context.Context, *Job) error {
	return nil
}

func (q *MemoryQueue) Nack(ctx context.Context, job *Job, requeue bool) error {
	if !requeue {
		return nil
	}
	return q.Enqueue(ctx, job)
}

var _ JobQueue = (*MemoryQueue)(nil)
