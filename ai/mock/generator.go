package mock

import (
	"context"
	"strings"

	"github.com/poiesic/docent/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateAnswerFunc is called by GenerateAnswer if set.
	// If nil, uses default deterministic behavior.
	GenerateAnswerFunc func(ctx context.Context, req *ai.GenerationRequest) (*ai.GenerationResult, error)

	// LastRequest holds the most recent request for test assertions.
	LastRequest *ai.GenerationRequest

	callCount int
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateAnswer produces a fixed answer that cites the first source.
// If the request carries a StreamFunc, the answer is delivered through it
// as a single chunk before returning, mirroring a streaming backend.
func (m *MockGenerator) GenerateAnswer(ctx context.Context, req *ai.GenerationRequest) (*ai.GenerationResult, error) {
	m.callCount++
	m.LastRequest = req

	if m.GenerateAnswerFunc != nil {
		return m.GenerateAnswerFunc(ctx, req)
	}

	answer := "Based on the provided sources, the answer follows from the first excerpt [1]."

	if req.StreamFunc != nil {
		if err := req.StreamFunc(ctx, []byte(answer)); err != nil {
			return nil, err
		}
	}

	inputTokens := len(strings.Fields(req.System))
	for _, msg := range req.Messages {
		inputTokens += len(strings.Fields(msg.Content))
	}

	return &ai.GenerationResult{
		Content:      answer,
		ModelUsed:    "mock-generator",
		InputTokens:  inputTokens,
		OutputTokens: len(strings.Fields(answer)),
		LatencyMs:    1,
	}, nil
}

// CallCount returns the number of times GenerateAnswer was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count, custom functions, and captured request.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateAnswerFunc = nil
	m.LastRequest = nil
}
