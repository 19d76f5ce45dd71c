package chunk

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer converts between text and model token units. Chunk budgets and
// context trimming are measured through this interface.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Encode converts text into token ids.
	Encode(text string) []int

	// Decode converts token ids back into text.
	Decode(tokens []int) string
}

// NewTokenizer returns the cl100k_base tokenizer, falling back to whitespace
// word counting when the BPE data cannot be loaded.
func NewTokenizer() Tokenizer {
	tokenizer, err := NewTiktokenTokenizer()
	if err != nil {
		slog.Warn("cl100k_base encoding unavailable, using word tokenizer", "err", err)
		return NewWordTokenizer()
	}
	return tokenizer
}

// TiktokenTokenizer counts with the cl100k_base BPE encoding, the encoding
// used by the text-embedding-3 and GPT-4 model families.
type TiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

var _ Tokenizer = (*TiktokenTokenizer)(nil)

// NewTiktokenTokenizer loads the cl100k_base encoding.
func NewTiktokenTokenizer() (*TiktokenTokenizer, error) {
	encoding, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	if err != nil {
		return nil, err
	}
	return &TiktokenTokenizer{encoding: encoding}, nil
}

func (t *TiktokenTokenizer) Count(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}

// WordTokenizer treats whitespace-separated words as tokens. It assigns ids
// from an internal vocabulary built on demand, so Decode only round-trips ids
// produced by the same instance. Decoded text joins words with single spaces;
// original whitespace is not preserved.
type WordTokenizer struct {
	mu    sync.Mutex
	words []string
	index map[string]int
}

var _ Tokenizer = (*WordTokenizer)(nil)

// NewWordTokenizer creates an empty-vocabulary word tokenizer.
func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{index: make(map[string]int)}
}

func (t *WordTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (t *WordTokenizer) Encode(text string) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	fields := strings.Fields(text)
	tokens := make([]int, len(fields))
	for i, word := range fields {
		id, ok := t.index[word]
		if !ok {
			id = len(t.words)
			t.words = append(t.words, word)
			t.index[word] = id
		}
		tokens[i] = id
	}
	return tokens
}

func (t *WordTokenizer) Decode(tokens []int) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	words := make([]string, 0, len(tokens))
	for _, id := range tokens {
		if id >= 0 && id < len(t.words) {
			words = append(words, t.words[id])
		}
	}
	return strings.Join(words, " ")
}
