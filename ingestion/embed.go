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
	"fmt"

	"github.com/poiesic/docent/core"
)

// embed generates one unit-length vector per chunk, preserving order. The
// provider handles batching and retries; a failure here is final for this
// delivery.
func (p *Pipeline) embed(ctx context.Context, chunks []*core.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Contents
	}

	vectors, err := p.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(chunks), len(vectors))
	}

	for i := range vectors {
		vectors[i] = core.NormalizeVector(vectors[i])
	}
	return vectors, nil
}
