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


package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/docent/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// Generator implements ai.Generator using the Anthropic Messages API.
type Generator struct {
	client      llms.Model
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// GeneratorHost is ignored; the Anthropic client talks to api.anthropic.com
	client, err := anthropic.New(
		anthropic.WithToken(config.APIKey),
		anthropic.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		model:       config.GeneratorModel,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		logger:      slog.Default().With("component", "anthropic-generator"),
	}, nil
}

// NewGenerator creates a new answer generator backed by the Anthropic API.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// GenerateAnswer produces an answer with the configured Claude model.
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
	inputTokens := tokenCount(choice.GenerationInfo, "InputTokens", "PromptTokens")
	outputTokens := tokenCount(choice.GenerationInfo, "OutputTokens", "CompletionTokens")

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

func tokenCount(info map[string]any, keys ...string) int {
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
