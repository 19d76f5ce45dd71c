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


package chunk

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/poiesic/docent/core"
)

const (
	// DefaultMaxTokens is the chunk token budget.
	DefaultMaxTokens = 512

	// DefaultOverlapTokens is the overlap carried between adjacent chunks.
	DefaultOverlapTokens = 50
)

// Chunker splits parsed documents into token-bounded chunks that keep enough
// structure to cite: page numbers, section paths, kinds, and clause ids.
type Chunker struct {
	tokenizer Tokenizer
	maxTokens int
	overlap   int
	logger    *slog.Logger
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithMaxTokens sets the chunk token budget.
func WithMaxTokens(n int) ChunkerOption {
	return func(c *Chunker) {
		c.maxTokens = n
	}
}

// WithOverlapTokens sets the overlap carried between adjacent chunks.
func WithOverlapTokens(n int) ChunkerOption {
	return func(c *Chunker) {
		c.overlap = n
	}
}

// NewChunker creates a chunker with the given tokenizer.
func NewChunker(tokenizer Tokenizer, opts ...ChunkerOption) (*Chunker, error) {
	if tokenizer == nil {
		return nil, errors.New("tokenizer is required")
	}

	c := &Chunker{
		tokenizer: tokenizer,
		maxTokens: DefaultMaxTokens,
		overlap:   DefaultOverlapTokens,
		logger:    slog.Default().With("component", "chunker"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxTokens <= 0 {
		return nil, errors.New("max tokens must be positive")
	}
	if c.overlap < 0 || c.overlap >= c.maxTokens {
		return nil, errors.New("overlap must be non-negative and below max tokens")
	}

	return c, nil
}

// chunkRun holds the mutable state of a single chunking pass.
type chunkRun struct {
	chunks  []core.Chunk
	stack   []stackEntry
	overlap string
}

type stackEntry struct {
	title string
	level int
}

// Chunk splits doc into ordered chunks. Indexes are contiguous from 0 in
// reading order, and every chunk stays within the token budget unless it is
// a single atomic unit flagged Oversized. The same input always produces the
// same chunks.
func (c *Chunker) Chunk(doc *core.ParsedDocument) []core.Chunk {
	run := &chunkRun{}

	for _, page := range doc.Pages {
		for _, section := range page.Sections {
			c.chunkSection(run, page.Number, section)
		}
	}

	c.logger.Debug("chunking complete", "chunks", len(run.chunks))
	return run.chunks
}

func (c *Chunker) chunkSection(run *chunkRun, page int, section core.Section) {
	text := strings.TrimSpace(section.Contents)
	if text == "" {
		return
	}

	switch section.Kind {
	case core.ChunkKindHeading:
		// Update the section path first so the heading chunk carries itself.
		run.pushHeading(text, section.HeadingLevel)
		c.emit(run, text, text, core.ChunkKindHeading, page, false)
		run.overlap = ""

	case core.ChunkKindTableRow:
		// Table runs are atomic: kept whole even over budget, never split.
		oversized := c.tokenizer.Count(text) > c.maxTokens
		c.emit(run, text, text, core.ChunkKindTableRow, page, oversized)
		run.overlap = ""

	default:
		for _, unit := range splitUnits(text) {
			c.chunkUnit(run, page, unit)
		}
	}
}

// chunkUnit turns one paragraph-like unit into one or more chunks.
func (c *Chunker) chunkUnit(run *chunkRun, page int, unit string) {
	kind := classifyUnit(unit)

	if c.tokenizer.Count(unit) <= c.maxTokens {
		content := c.prependOverlap(run.overlap, unit)
		c.emit(run, unit, content, kind, page, false)
		run.overlap = c.tailTokens(unit)
		return
	}

	// Oversized prose: accumulate sentences up to the budget.
	var parts []string
	partTokens := 0

	flush := func() {
		if len(parts) == 0 {
			return
		}
		joined := strings.Join(parts, " ")
		content := c.prependOverlap(run.overlap, joined)
		c.emit(run, joined, content, kind, page, false)
		run.overlap = c.tailTokens(joined)
		parts = parts[:0]
		partTokens = 0
	}

	for _, sentence := range splitSentences(unit) {
		tokens := c.tokenizer.Count(sentence)

		if tokens > c.maxTokens {
			// A single sentence beyond the budget: force-split on tokens.
			flush()
			for _, piece := range c.forceSplit(sentence) {
				content := c.prependOverlap(run.overlap, piece)
				c.emit(run, piece, content, kind, page, false)
				run.overlap = c.tailTokens(piece)
			}
			continue
		}

		if partTokens+tokens > c.maxTokens && len(parts) > 0 {
			flush()
		}

		parts = append(parts, sentence)
		partTokens += tokens
	}

	flush()
}

// emit appends a chunk. unit is the text before any overlap prefix; clause
// detection runs on it so leading patterns are not hidden by the prefix.
func (c *Chunker) emit(run *chunkRun, unit, content string, kind core.ChunkKind, page int, oversized bool) {
	run.chunks = append(run.chunks, core.Chunk{
		Index:       len(run.chunks),
		Contents:    content,
		Kind:        kind,
		PageNumber:  page,
		SectionPath: run.sectionPath(),
		ClauseId:    DetectClause(unit),
		TokenCount:  c.tokenizer.Count(content),
		Oversized:   oversized,
	})
}

// prependOverlap joins the previous chunk's tail onto text when the result
// stays within the budget, otherwise returns text unchanged.
func (c *Chunker) prependOverlap(overlap, text string) string {
	if overlap == "" {
		return text
	}
	combined := overlap + " " + text
	if c.tokenizer.Count(combined) <= c.maxTokens {
		return combined
	}
	return text
}

// tailTokens returns the last overlap-budget worth of text.
func (c *Chunker) tailTokens(text string) string {
	if c.overlap == 0 {
		return ""
	}
	tokens := c.tokenizer.Encode(text)
	if len(tokens) <= c.overlap {
		return text
	}
	return c.tokenizer.Decode(tokens[len(tokens)-c.overlap:])
}

// forceSplit slices text into pieces of at most maxTokens tokens, each piece
// starting overlap tokens before the previous one's end.
func (c *Chunker) forceSplit(text string) []string {
	tokens := c.tokenizer.Encode(text)

	var parts []string
	start := 0
	for start < len(tokens) {
		end := min(start+c.maxTokens, len(tokens))
		parts = append(parts, c.tokenizer.Decode(tokens[start:end]))
		if end == len(tokens) {
			break
		}
		start = end - c.overlap
	}
	return parts
}

func (r *chunkRun) pushHeading(title string, level int) {
	// A level-L heading closes every open section at level L or deeper.
	for len(r.stack) > 0 && r.stack[len(r.stack)-1].level >= level {
		r.stack = r.stack[:len(r.stack)-1]
	}
	r.stack = append(r.stack, stackEntry{title: title, level: level})
}

func (r *chunkRun) sectionPath() []string {
	if len(r.stack) == 0 {
		return nil
	}
	path := make([]string, len(r.stack))
	for i, entry := range r.stack {
		path[i] = entry.title
	}
	return path
}

var blankLineRE = regexp.MustCompile(`\n[ \t]*\n`)

// splitUnits breaks section text into paragraph-like units on blank lines.
func splitUnits(text string) []string {
	var units []string
	for _, block := range blankLineRE.Split(text, -1) {
		if block = strings.TrimSpace(block); block != "" {
			units = append(units, block)
		}
	}
	return units
}

// splitSentences breaks text after sentence terminators followed by
// whitespace, and after newlines.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		switch r {
		case '\n':
			flush()
		case '.', '!', '?':
			if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()

	return sentences
}
