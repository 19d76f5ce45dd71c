// Package events carries pipeline lifecycle notifications to pluggable
// sinks: ingestion completions, executed queries, and usage increments.
//
// Sinks are fire-and-forget by contract. A sink that persists (like
// UsageRecorder) logs its own failures; nothing a sink does can fail the
// ingestion or query that emitted the event. Compose sinks with Multi.
package events
