// Package chunk splits parsed documents into token-bounded retrieval units.
//
// The Chunker walks a core.ParsedDocument in reading order, maintaining a
// running section-path stack from headings, and emits chunks that carry the
// structure needed for citations:
//   - page number and section path
//   - a structural kind (heading, paragraph, clause, list item, table row,
//     figure caption, footnote, quote)
//   - a best-effort clause id ("4.2.1", "Section 12", "Article IV")
//
// Prose that exceeds the token budget is split at sentence boundaries, with
// a token-level overlap carried between adjacent chunks. Atomic units such
// as table rows are never split; one that exceeds the budget is kept whole
// and flagged oversized.
//
// Token counting goes through the Tokenizer interface: cl100k_base via
// tiktoken in production, a whitespace word tokenizer in tests and when the
// BPE data is unavailable.
package chunk
