package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// HashContent returns a hex-encoded BLAKE2b-256 digest of raw document bytes.
// Identical uploads produce identical hashes regardless of filename.
func HashContent(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentStatus tracks a document through its processing lifecycle.
type DocumentStatus int

const (
	// DocumentStatusPending indicates the document is recorded but not yet processed.
	DocumentStatusPending DocumentStatus = iota + 1
	// DocumentStatusProcessing indicates ingestion is in flight.
	DocumentStatusProcessing
	// DocumentStatusCompleted indicates chunks and vectors are persisted.
	DocumentStatusCompleted
	// DocumentStatusFailed indicates processing stopped with an error.
	DocumentStatusFailed
)

func (s DocumentStatus) String() string {
	switch s {
	case DocumentStatusPending:
		return "pending"
	case DocumentStatusProcessing:
		return "processing"
	case DocumentStatusCompleted:
		return "completed"
	case DocumentStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Classification holds the document-type assessment produced during ingestion.
type Classification struct {
	DocumentType string
	Confidence   float64
	Summary      string
	Language     string
	Entities     []string
	Dates        []string
}

// DefaultClassification returns the fallback classification applied when the
// classifier is unavailable or returns unusable output.
func DefaultClassification() Classification {
	return Classification{
		DocumentType: "other",
		Language:     "unknown",
	}
}

const (
	classificationSampleChunks = 5
	classificationSampleChars  = 4000
)

// ClassificationSample joins a document's leading chunk texts into the
// bounded excerpt fed to the classifier. The opening of a document carries
// the strongest type signal, so later chunks are not sampled.
func ClassificationSample(chunks []*Chunk) string {
	take := min(len(chunks), classificationSampleChunks)
	texts := make([]string, 0, take)
	for _, c := range chunks[:take] {
		texts = append(texts, c.Contents)
	}

	sample := strings.Join(texts, " ")
	runes := []rune(sample)
	if len(runes) > classificationSampleChars {
		sample = string(runes[:classificationSampleChars])
	}
	return sample
}

// Document represents an ingested source file and its processing state.
// Raw binaries stay with the caller; only metadata and derived chunks are stored.
type Document struct {
	Id             ID
	OrganizationId ID
	Filename       string
	Title          string
	MimeType       string
	ContentHash    string // BLAKE2b-256 hex of the uploaded bytes
	Status         DocumentStatus
	Error          string // set when Status is DocumentStatusFailed
	Classification Classification
	PageCount      int
	ChunkCount     int
	InsertedAt     time.Time
	UpdatedAt      time.Time
}

// ChunkKind classifies the structural role of a chunk within its document.
type ChunkKind int

const (
	ChunkKindHeading ChunkKind = iota + 1
	ChunkKindParagraph
	ChunkKindClause
	ChunkKindListItem
	ChunkKindTableRow
	ChunkKindFigureCaption
	ChunkKindFootnote
	ChunkKindQuote
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkKindHeading:
		return "heading"
	case ChunkKindParagraph:
		return "paragraph"
	case ChunkKindClause:
		return "clause"
	case ChunkKindListItem:
		return "list_item"
	case ChunkKindTableRow:
		return "table_row"
	case ChunkKindFigureCaption:
		return "figure_caption"
	case ChunkKindFootnote:
		return "footnote"
	case ChunkKindQuote:
		return "quote"
	default:
		return "unknown"
	}
}

// Chunk is one retrievable unit of document text.
// Index values are contiguous from 0 in reading order within a document.
type Chunk struct {
	Id          ID
	DocumentId  ID
	Index       int
	Contents    string
	Kind        ChunkKind
	PageNumber  int      // 0 when the source format has no pagination
	SectionPath []string // heading titles, outermost first
	ClauseId    string   // e.g. "4.2.1", empty when no clause numbering applies
	TokenCount  int
	Oversized   bool      // atomic unit exceeding the token budget, kept whole
	Vector      []float32 // empty until embedded, or when embedding failed
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// ParsedDocument is the structured output of a format parser, consumed by the
// chunker. Pages appear in reading order.
type ParsedDocument struct {
	Pages []ParsedPage
}

// ParsedPage holds the ordered sections of one page. Number is 0 for formats
// without pagination (DOCX, spreadsheets, plain text).
type ParsedPage struct {
	Number   int
	Sections []Section
}

// Section is a structural run of text within a page. Parsers mark headings
// (with a level) and table rows; finer kinds are assigned during chunking.
type Section struct {
	Contents     string
	Kind         ChunkKind
	HeadingLevel int // >0 only when Kind is ChunkKindHeading
}

// PageCount returns the highest page number, or 0 for unpaginated documents.
func (d *ParsedDocument) PageCount() int {
	max := 0
	for _, p := range d.Pages {
		if p.Number > max {
			max = p.Number
		}
	}
	return max
}

// Empty reports whether the parser found no text at all.
func (d *ParsedDocument) Empty() bool {
	for _, p := range d.Pages {
		if len(p.Sections) > 0 {
			return false
		}
	}
	return true
}

// SimilarityMatch represents a chunk match from vector similarity search.
type SimilarityMatch struct {
	ChunkId ID
	Score   float32
}

// RetrievedChunk pairs a chunk with its similarity to a query and the title
// of the document it came from. Retrieval order defines source numbering.
type RetrievedChunk struct {
	Chunk         *Chunk
	DocumentTitle string
	Similarity    float32
}

// Citation links a marker in generated text back to the retrieved chunk it
// cites. Marker is the 1-based source number as it appeared in the answer.
type Citation struct {
	Id            string // uuid
	Marker        int
	DocumentId    ID
	DocumentTitle string
	ChunkId       ID
	PageNumber    int
	SectionPath   []string
	Excerpt       string
	Relevance     float32
}

// MessageRole identifies the author of a session message.
type MessageRole int

const (
	// MessageRoleUser represents the querying user.
	MessageRoleUser MessageRole = iota + 1
	// MessageRoleAssistant represents a generated answer.
	MessageRoleAssistant
)

func (r MessageRole) String() string {
	switch r {
	case MessageRoleUser:
		return "user"
	case MessageRoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Message is one turn of a query session. Assistant messages carry the
// citations and generation accounting for the answer they hold.
type Message struct {
	Id           ID
	SessionId    ID
	Role         MessageRole
	Contents     string
	Citations    []Citation
	ChunkRefs    []ID // ids of the chunks retrieved for this turn
	ModelUsed    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	InsertedAt   time.Time
}

// Usage accumulates per-organization token and query counters.
type Usage struct {
	OrganizationId ID
	InputTokens    int64
	OutputTokens   int64
	QueryCount     int64
	UpdatedAt      time.Time
}
