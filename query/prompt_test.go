package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/chunk"
	"github.com/poiesic/docent/core"
)

func newTestBuilder(t *testing.T, opts ...PromptOption) *PromptBuilder {
	t.Helper()
	builder, err := NewPromptBuilder(chunk.NewWordTokenizer(), opts...)
	require.NoError(t, err)
	return builder
}

func historyMessage(role core.MessageRole, contents string) *core.Message {
	return &core.Message{SessionId: 1, Role: role, Contents: contents}
}

func TestNewPromptBuilder(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		builder, err := NewPromptBuilder(chunk.NewWordTokenizer())
		require.NoError(t, err)
		assert.NotNil(t, builder)
	})

	t.Run("nil tokenizer", func(t *testing.T) {
		_, err := NewPromptBuilder(nil)
		assert.Equal(t, ErrTokenizerRequired, err)
	})
}

func TestBuild_SystemPromptContainsSources(t *testing.T) {
	builder := newTestBuilder(t)
	sources := []*core.RetrievedChunk{
		testSource(1, 10, "Payment is due within 30 days."),
	}

	req := builder.Build("When is payment due?", sources, "", nil)

	assert.Contains(t, req.System, "Always cite your sources")
	assert.Contains(t, req.System, "IMPORTANT:")
	assert.Contains(t, req.System, "--- SOURCES ---")
	assert.Contains(t, req.System, "--- END SOURCES ---")
	assert.Contains(t, req.System, "[1] Document: Service Agreement, Page 2, Section: Terms > Payment")
	assert.Contains(t, req.System, "Payment is due within 30 days.")
}

func TestBuild_TemplateOverridesDefaultInstruction(t *testing.T) {
	builder := newTestBuilder(t)
	sources := []*core.RetrievedChunk{testSource(1, 10, "a")}

	req := builder.Build("q", sources, "You are a contracts analyst.", nil)

	assert.True(t, strings.HasPrefix(req.System, "You are a contracts analyst."))
	assert.NotContains(t, req.System, "helpful AI assistant")
	// The citation instruction is appended regardless of template
	assert.Contains(t, req.System, "IMPORTANT:")
}

func TestBuild_SourceNumberingFollowsRetrievalOrder(t *testing.T) {
	builder := newTestBuilder(t)
	sources := []*core.RetrievedChunk{
		testSource(1, 10, "first"),
		testSource(1, 11, "second"),
		testSource(2, 12, "third"),
	}

	req := builder.Build("q", sources, "", nil)

	first := strings.Index(req.System, "[1] Document:")
	second := strings.Index(req.System, "[2] Document:")
	third := strings.Index(req.System, "[3] Document:")
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
	assert.Greater(t, third, second)
}

func TestBuild_PageAndSectionOmittedWhenAbsent(t *testing.T) {
	builder := newTestBuilder(t)
	sources := []*core.RetrievedChunk{{
		Chunk: &core.Chunk{
			Id:         10,
			DocumentId: 1,
			Contents:   "Plain notes without structure.",
			Kind:       core.ChunkKindParagraph,
		},
		DocumentTitle: "Notes",
		Similarity:    0.5,
	}}

	req := builder.Build("q", sources, "", nil)

	assert.Contains(t, req.System, "[1] Document: Notes\nPlain notes without structure.")
	assert.NotContains(t, req.System, ", Page")
	assert.NotContains(t, req.System, ", Section:")
}

func TestBuild_TitleFallsBackToUnknown(t *testing.T) {
	builder := newTestBuilder(t)
	sources := []*core.RetrievedChunk{{
		Chunk:      &core.Chunk{Id: 10, DocumentId: 1, Contents: "text", Kind: core.ChunkKindParagraph},
		Similarity: 0.5,
	}}

	req := builder.Build("q", sources, "", nil)
	assert.Contains(t, req.System, "[1] Document: Unknown")
}

func TestBuild_LongSourceContentTruncated(t *testing.T) {
	builder := newTestBuilder(t)
	sources := []*core.RetrievedChunk{testSource(1, 10, strings.Repeat("x", 2500))}

	req := builder.Build("q", sources, "", nil)

	assert.Contains(t, req.System, strings.Repeat("x", 2000))
	assert.NotContains(t, req.System, strings.Repeat("x", 2001))
}

func TestBuild_QuestionIsAlwaysLast(t *testing.T) {
	builder := newTestBuilder(t)
	history := []*core.Message{
		historyMessage(core.MessageRoleUser, "What is the term?"),
		historyMessage(core.MessageRoleAssistant, "The term is two years [1]."),
	}

	req := builder.Build("And the renewal?", nil, "", history)

	require.Len(t, req.Messages, 3)
	assert.Equal(t, ai.PromptRoleUser, req.Messages[0].Role)
	assert.Equal(t, "What is the term?", req.Messages[0].Content)
	assert.Equal(t, ai.PromptRoleAssistant, req.Messages[1].Role)

	last := req.Messages[len(req.Messages)-1]
	assert.Equal(t, ai.PromptRoleUser, last.Role)
	assert.Equal(t, "And the renewal?", last.Content)
}

func TestBuild_HistoryTrimmedNewestFirst(t *testing.T) {
	// The word tokenizer counts whitespace-separated words, so budgets are
	// exact here.
	builder := newTestBuilder(t, WithHistoryTokenBudget(3))
	history := []*core.Message{
		historyMessage(core.MessageRoleUser, "one two three"),
		historyMessage(core.MessageRoleAssistant, "four five"),
		historyMessage(core.MessageRoleUser, "six"),
	}

	req := builder.Build("q", nil, "", history)

	// Newest two fit the budget (2 + 1 tokens); the oldest does not.
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "four five", req.Messages[0].Content)
	assert.Equal(t, ai.PromptRoleAssistant, req.Messages[0].Role)
	assert.Equal(t, "six", req.Messages[1].Content)
	assert.Equal(t, "q", req.Messages[2].Content)
}

func TestBuild_HistoryStopsAtFirstOverBudgetMessage(t *testing.T) {
	builder := newTestBuilder(t, WithHistoryTokenBudget(3))
	history := []*core.Message{
		historyMessage(core.MessageRoleUser, "tiny"),
		historyMessage(core.MessageRoleAssistant, "a very long answer spanning many many words indeed"),
		historyMessage(core.MessageRoleUser, "newest"),
	}

	req := builder.Build("q", nil, "", history)

	// Trimming walks backwards and stops at the first message that blows
	// the budget; older messages are not considered even if they would fit.
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "newest", req.Messages[0].Content)
	assert.Equal(t, "q", req.Messages[1].Content)
}

func TestBuild_EmptyHistory(t *testing.T) {
	builder := newTestBuilder(t)

	req := builder.Build("only question", nil, "", nil)

	require.Len(t, req.Messages, 1)
	assert.Equal(t, "only question", req.Messages[0].Content)
}
