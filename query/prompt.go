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


package query

import (
	"fmt"
	"strings"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/chunk"
	"github.com/poiesic/docent/core"
)

const (
	// DefaultHistoryTokenBudget caps how many tokens of conversation history
	// are carried into a generation call.
	DefaultHistoryTokenBudget = 8000

	// maxSourceContentChars caps the length of a single rendered source block.
	maxSourceContentChars = 2000
)

// defaultGroundingPrompt is used when the caller supplies no instruction
// template of its own.
const defaultGroundingPrompt = "You are a helpful AI assistant. Answer questions based on the provided " +
	"source documents. Always cite your sources using [N] markers that correspond " +
	"to the numbered references below."

// citationInstruction is always appended, regardless of template. Source
// numbering in the rendered prompt is what the citation extractor later
// resolves markers against.
const citationInstruction = "IMPORTANT: When referencing information from the sources below, " +
	"cite them using [N] notation where N is the source number. " +
	"If the sources do not contain enough information to answer the question, " +
	"say so clearly rather than making up information."

// PromptBuilder assembles generation requests from a question, retrieved
// sources, and conversation history. Building is a pure function of its
// inputs; the builder only carries the tokenizer and history budget.
type PromptBuilder struct {
	tokenizer     chunk.Tokenizer
	historyBudget int
}

// PromptOption configures a PromptBuilder.
type PromptOption func(*PromptBuilder)

// WithHistoryTokenBudget sets the token budget for conversation history.
// Values below 1 keep the default.
func WithHistoryTokenBudget(budget int) PromptOption {
	return func(b *PromptBuilder) {
		if budget > 0 {
			b.historyBudget = budget
		}
	}
}

// NewPromptBuilder creates a prompt builder using the given tokenizer for
// history trimming.
func NewPromptBuilder(tokenizer chunk.Tokenizer, opts ...PromptOption) (*PromptBuilder, error) {
	if tokenizer == nil {
		return nil, ErrTokenizerRequired
	}

	b := &PromptBuilder{
		tokenizer:     tokenizer,
		historyBudget: DefaultHistoryTokenBudget,
	}

	// Apply options
	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Build assembles a generation request. The system prompt combines the
// instruction template (or the default grounding instruction), the citation
// instruction, and the numbered source blocks in retrieval order. History is
// trimmed newest-first to the token budget and restored to chronological
// order; the question is always the final message.
func (b *PromptBuilder) Build(question string, sources []*core.RetrievedChunk, template string, history []*core.Message) *ai.GenerationRequest {
	messages := b.trimHistory(history)
	messages = append(messages, ai.PromptMessage{
		Role:    ai.PromptRoleUser,
		Content: question,
	})

	return &ai.GenerationRequest{
		System:   systemPrompt(template, sources),
		Messages: messages,
	}
}

// trimHistory walks history newest-first, keeping messages until the token
// budget is spent, then restores chronological order.
func (b *PromptBuilder) trimHistory(history []*core.Message) []ai.PromptMessage {
	kept := make([]ai.PromptMessage, 0, len(history)+1)
	used := 0
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg == nil || msg.Contents == "" {
			continue
		}

		tokens := b.tokenizer.Count(msg.Contents)
		if used+tokens > b.historyBudget {
			break
		}
		used += tokens

		role := ai.PromptRoleUser
		if msg.Role == core.MessageRoleAssistant {
			role = ai.PromptRoleAssistant
		}
		kept = append(kept, ai.PromptMessage{Role: role, Content: msg.Contents})
	}

	// Restore chronological order
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

// systemPrompt renders the grounding instruction and the numbered source
// blocks. Source i is rendered as block [i+1]; the numbering is the contract
// the citation extractor depends on.
func systemPrompt(template string, sources []*core.RetrievedChunk) string {
	parts := make([]string, 0, len(sources)+4)

	instruction := strings.TrimSpace(template)
	if instruction == "" {
		instruction = defaultGroundingPrompt
	}
	parts = append(parts, instruction)
	parts = append(parts, "\n\n"+citationInstruction)

	parts = append(parts, "\n\n--- SOURCES ---\n")
	for i, source := range sources {
		parts = append(parts, sourceBlock(i+1, source))
	}
	parts = append(parts, "--- END SOURCES ---")

	return strings.Join(parts, "\n")
}

// sourceBlock renders one retrieved chunk as a numbered reference.
func sourceBlock(number int, source *core.RetrievedChunk) string {
	title := source.DocumentTitle
	if title == "" {
		title = "Unknown"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d] Document: %s", number, title)
	if source.Chunk.PageNumber > 0 {
		fmt.Fprintf(&sb, ", Page %d", source.Chunk.PageNumber)
	}
	if len(source.Chunk.SectionPath) > 0 {
		fmt.Fprintf(&sb, ", Section: %s", strings.Join(source.Chunk.SectionPath, " > "))
	}
	sb.WriteString("\n")
	sb.WriteString(truncateChars(source.Chunk.Contents, maxSourceContentChars))
	sb.WriteString("\n")
	return sb.String()
}

// truncateChars cuts text to at most limit characters, never splitting a
// multi-byte character.
func truncateChars(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
