package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestHashContent(t *testing.T) {
	data := []byte("%PDF-1.4 sample bytes")

	h1 := HashContent(data)
	h2 := HashContent(data)

	if h1 != h2 {
		t.Errorf("HashContent() produced different hashes for same bytes: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("HashContent() hex length = %d, want 64", len(h1))
	}
	if h1 == HashContent([]byte("other bytes")) {
		t.Error("HashContent() produced same hash for different bytes")
	}
}

func TestDocumentStatus_String(t *testing.T) {
	tests := []struct {
		status DocumentStatus
		want   string
	}{
		{DocumentStatusPending, "pending"},
		{DocumentStatusProcessing, "processing"},
		{DocumentStatusCompleted, "completed"},
		{DocumentStatusFailed, "failed"},
		{DocumentStatus(0), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("DocumentStatus.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunkKind_String(t *testing.T) {
	tests := []struct {
		kind ChunkKind
		want string
	}{
		{ChunkKindHeading, "heading"},
		{ChunkKindParagraph, "paragraph"},
		{ChunkKindClause, "clause"},
		{ChunkKindListItem, "list_item"},
		{ChunkKindTableRow, "table_row"},
		{ChunkKindFigureCaption, "figure_caption"},
		{ChunkKindFootnote, "footnote"},
		{ChunkKindQuote, "quote"},
		{ChunkKind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("ChunkKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsedDocument_PageCount(t *testing.T) {
	tests := []struct {
		name string
		doc  ParsedDocument
		want int
	}{
		{
			name: "empty document",
			doc:  ParsedDocument{},
			want: 0,
		},
		{
			name: "unpaginated document",
			doc: ParsedDocument{Pages: []ParsedPage{
				{Number: 0, Sections: []Section{{Contents: "text", Kind: ChunkKindParagraph}}},
			}},
			want: 0,
		},
		{
			name: "paginated document",
			doc: ParsedDocument{Pages: []ParsedPage{
				{Number: 1},
				{Number: 2},
				{Number: 3},
			}},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.PageCount(); got != tt.want {
				t.Errorf("ParsedDocument.PageCount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsedDocument_Empty(t *testing.T) {
	empty := ParsedDocument{Pages: []ParsedPage{{Number: 1}, {Number: 2}}}
	if !empty.Empty() {
		t.Error("ParsedDocument.Empty() = false for document with no sections")
	}

	full := ParsedDocument{Pages: []ParsedPage{
		{Number: 1, Sections: []Section{{Contents: "body", Kind: ChunkKindParagraph}}},
	}}
	if full.Empty() {
		t.Error("ParsedDocument.Empty() = true for document with sections")
	}
}

func TestDefaultClassification(t *testing.T) {
	c := DefaultClassification()

	if c.DocumentType != "other" {
		t.Errorf("DefaultClassification() DocumentType = %v, want other", c.DocumentType)
	}
	if c.Confidence != 0 {
		t.Errorf("DefaultClassification() Confidence = %v, want 0", c.Confidence)
	}
	if c.Language != "unknown" {
		t.Errorf("DefaultClassification() Language = %v, want unknown", c.Language)
	}
}
