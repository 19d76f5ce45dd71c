package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/poiesic/docent/core"
)

// citationMarkerRE matches bracketed integer markers like [1] or [12].
var citationMarkerRE = regexp.MustCompile(`\[(\d+)\]`)

// excerptChars caps the excerpt carried by a citation.
const excerptChars = 200

// ExtractCitations scans generated text for [N] markers and maps each to the
// retrieved source it references. Marker N cites sources[N-1]. Markers
// outside [1, len(sources)] are hallucinations and are dropped silently.
// Repeated markers coalesce into one citation; the result preserves
// first-seen order. The text itself is never modified, so markers stay
// inline for display.
func ExtractCitations(text string, sources []*core.RetrievedChunk) []core.Citation {
	if len(sources) == 0 {
		return nil
	}

	matches := citationMarkerRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	citations := make([]core.Citation, 0, len(matches))
	for _, match := range matches {
		marker, err := strconv.Atoi(match[1])
		if err != nil || marker < 1 || marker > len(sources) {
			continue
		}
		if seen[marker] {
			continue
		}
		seen[marker] = true

		source := sources[marker-1]
		citations = append(citations, core.Citation{
			Id:            uuid.NewString(),
			Marker:        marker,
			DocumentId:    source.Chunk.DocumentId,
			DocumentTitle: source.DocumentTitle,
			ChunkId:       source.Chunk.Id,
			PageNumber:    source.Chunk.PageNumber,
			SectionPath:   source.Chunk.SectionPath,
			Excerpt:       excerpt(source.Chunk.Contents),
			Relevance:     source.Similarity,
		})
	}

	if len(citations) == 0 {
		return nil
	}
	return citations
}

// excerpt returns the first excerptChars characters of content, trimmed,
// with an ellipsis when content was longer.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptChars {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(string(runes[:excerptChars])) + "..."
}
