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


package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docent/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client      llms.Model
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for answer generation
	// The default token "none" satisfies local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		model:       config.GeneratorModel,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new answer generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// GenerateAnswer produces an answer with the configured chat model.
// It makes exactly one attempt; callers decide whether to retry.
func (g *Generator) GenerateAnswer(ctx context.Context, req *ai.GenerationRequest) (*ai.GenerationResult, error) {
	start := time.Now()

	content := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.System != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		})
	}
	for _, msg := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if msg.Role == ai.PromptRoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}

	opts := []llms.CallOption{
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens),
	}
	if req.StreamFunc != nil {
		opts = append(opts, llms.WithStreamingFunc(req.StreamFunc))
	}

	response, err := g.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		g.logger.Error("failed to generate answer", "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrModelProvider, err)
	}

	if len(response.Choices) < 1 {
		return nil, fmt.Errorf("%w: model returned no choices", ai.ErrModelProvider)
	}

	choice := response.Choices[0]
	inputTokens, outputTokens := tokenUsage(choice.GenerationInfo)

	g.logger.Debug("generated answer",
		"model", g.model,
		"input_tokens", inputTokens,
		"output_tokens", outputTokens)

	return &ai.GenerationResult{
		Content:      choice.Content,
		ModelUsed:    g.model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// tokenUsage extracts prompt and completion token counts from a choice's
// GenerationInfo map. Providers disagree on key names and value types, so
// both the OpenAI and Anthropic conventions are checked.
func tokenUsage(info map[string]any) (inputTokens, outputTokens int) {
	inputTokens = readTokenCount(info, "PromptTokens", "InputTokens")
	outputTokens = readTokenCount(info, "CompletionTokens", "OutputTokens")
	return inputTokens, outputTokens
}

func readTokenCount(info map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
