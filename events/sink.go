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


package events

import (
	"context"

	"github.com/poiesic/docent/core"
)

// IngestionEvent describes a finished ingestion run, successful or not.
type IngestionEvent struct {
	DocumentId core.ID
	Status     core.DocumentStatus
	Error      string // empty unless Status is failed
	PageCount  int
	ChunkCount int
}

// QueryEvent describes one executed query turn.
type QueryEvent struct {
	SessionId          core.ID
	DocumentsSearched  int
	ChunksRetrieved    int
	CitationsGenerated int
	Model              string
}

// UsageEvent carries the token and query deltas of one operation.
type UsageEvent struct {
	OrganizationId core.ID
	InputTokens    int64
	OutputTokens   int64
	Queries        int64
}

// Sink receives lifecycle events from the pipelines. Implementations must
// never fail the emitting operation: problems are handled (or logged)
// inside the sink.
type Sink interface {
	IngestionCompleted(ctx context.Context, event IngestionEvent)
	QueryExecuted(ctx context.Context, event QueryEvent)
	UsageIncremented(ctx context.Context, event UsageEvent)
}

// NopSink discards all events.
type NopSink struct{}

var _ Sink = (*NopSink)(nil)

func (NopSink) IngestionCompleted(_ context.Context, _ IngestionEvent) {}
func (NopSink) QueryExecuted(_ context.Context, _ QueryEvent)          {}
func (NopSink) UsageIncremented(_ context.Context, _ UsageEvent)       {}
