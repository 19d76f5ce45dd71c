package ai

import "context"

// DocumentTypes defines the valid categories for document classification.
// Classifiers map every document onto exactly one of these; anything the
// model invents outside the list collapses to "other".
var DocumentTypes = []string{
	"contract",
	"invoice",
	"report",
	"memo",
	"policy",
	"manual",
	"letter",
	"proposal",
	"resume",
	"spreadsheet",
	"legal_filing",
	"academic_paper",
	"presentation",
	"meeting_notes",
	"other",
}

// MaxEmbeddingBatchSize is the largest number of inputs sent in a single
// embedding request. Larger input sets are split into batches of this size.
const MaxEmbeddingBatchSize = 2048

// PromptRole identifies the author of a prompt message.
type PromptRole string

const (
	PromptRoleUser      PromptRole = "user"
	PromptRoleAssistant PromptRole = "assistant"
)

// PromptMessage is a single conversation turn handed to a generator.
type PromptMessage struct {
	Role    PromptRole
	Content string
}

// GenerationRequest describes one answer generation call.
type GenerationRequest struct {
	// System is the grounding instruction, including the numbered source
	// blocks the answer must cite.
	System string

	// Messages is the conversation in chronological order. The final
	// message is the current question.
	Messages []PromptMessage

	// StreamFunc, when set, receives raw answer fragments as they arrive.
	// The full answer is still returned in the result.
	StreamFunc func(ctx context.Context, chunk []byte) error
}

// GenerationResult is the normalized outcome of a generation call.
type GenerationResult struct {
	// Content is the full generated answer text.
	Content string

	// ModelUsed identifies the model that produced the answer.
	ModelUsed string

	// InputTokens and OutputTokens are the provider-reported token counts,
	// zero when the provider does not report usage.
	InputTokens  int
	OutputTokens int

	// LatencyMs is the wall-clock duration of the model call.
	LatencyMs int64
}
