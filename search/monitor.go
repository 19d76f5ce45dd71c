package search

import "github.com/poiesic/docent/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type RetrievalMonitor interface {
	Start(candidates []core.ID, topK int, floor float32)
	AfterSimilaritySearch(matches []*core.SimilarityMatch)
	AfterChunkRetrieval(chunks []*core.Chunk)
	Finish(results []*core.RetrievedChunk)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ []core.ID, _ int, _ float32)          {}
func (n *noopMonitor) AfterSimilaritySearch(_ []*core.SimilarityMatch) {}
func (n *noopMonitor) AfterChunkRetrieval(_ []*core.Chunk)          {}
func (n *noopMonitor) Finish(_ []*core.RetrievedChunk)              {}
