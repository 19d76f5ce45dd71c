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


package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/docent"
	"github.com/poiesic/docent/core"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// verboseMonitor prints every retrieval stage to stdout.
type verboseMonitor struct{}

func (verboseMonitor) Start(candidates []core.ID, topK int, floor float32) {
	fmt.Printf("searching %d documents (topK=%d floor=%.2f)\n", len(candidates), topK, floor)
}

func (verboseMonitor) AfterSimilaritySearch(matches []*core.SimilarityMatch) {
	fmt.Printf("%d chunks above the floor\n", len(matches))
	for _, match := range matches {
		fmt.Printf("  chunk %d score %.4f\n", uint64(match.ChunkId), match.Score)
	}
}

func (verboseMonitor) AfterChunkRetrieval(chunks []*core.Chunk) {
	fmt.Printf("loaded %d chunks\n", len(chunks))
}

func (verboseMonitor) Finish(results []*core.RetrievedChunk) {
	fmt.Printf("returning %d results\n", len(results))
}

func main() {
	db, err := docent.NewDatabase("./docent_db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	retriever, err := db.NewRetriever()
	if err != nil {
		panic(err)
	}

	question := "payment terms"
	if len(os.Args) > 1 {
		question = strings.Join(os.Args[1:], " ")
	}

	ctx := context.Background()

	documents, err := db.DocumentRepository().ListDocuments(ctx)
	if err != nil {
		panic(err)
	}
	candidates := make([]core.ID, 0, len(documents))
	for _, document := range documents {
		if document.Status == core.DocumentStatusCompleted {
			candidates = append(candidates, document.Id)
		}
	}

	vector, err := db.Provider().Embedder().EmbedText(ctx, question)
	if err != nil {
		panic(err)
	}

	results, err := retriever.RetrieveWithMonitor(ctx, vector, candidates, 5, -1, verboseMonitor{})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' (doc %d #%d)[%0.3f]\n",
			i, hit.Chunk.Contents, uint64(hit.Chunk.DocumentId), hit.Chunk.Index, hit.Similarity)
	}
}
