package chunk

import (
	"regexp"
	"strings"

	"github.com/poiesic/docent/core"
)

// Clause patterns in priority order; the first match wins. Detection is a
// best-effort citation aid, so a bare leading numeral counts even when it is
// not part of a numbering scheme.
var clausePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+(?:\.\d+)*)(?:[.):]|\s|$)`),
	regexp.MustCompile(`(?i)^(Section\s+\d+[A-Za-z]?)\b`),
	regexp.MustCompile(`(?i)^(Article\s+[IVXLCDM]+)\b`),
	regexp.MustCompile(`(?i)^(Clause\s+\d+(?:\.\d+)*)\b`),
}

// DetectClause extracts a clause or article number from the start of text.
// Returns the empty string when no pattern matches.
func DetectClause(text string) string {
	text = strings.TrimSpace(text)
	for _, pattern := range clausePatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

var (
	listItemRE = regexp.MustCompile(`^(?:[-*•]\s|\(?(?:\d{1,3}|[a-z]|[ivxlcdm]{1,4})[.)]\s)`)
	captionRE  = regexp.MustCompile(`(?i)^(?:Figure|Table)\s+\d+`)
	footnoteRE = regexp.MustCompile(`^\[\d+\]`)
)

// classifyUnit assigns a chunk kind from the unit's leading pattern.
// Rules are ordered; the first match wins.
func classifyUnit(unit string) core.ChunkKind {
	switch {
	case DetectClause(unit) != "":
		return core.ChunkKindClause
	case listItemRE.MatchString(unit):
		return core.ChunkKindListItem
	case captionRE.MatchString(unit):
		return core.ChunkKindFigureCaption
	case strings.HasPrefix(unit, "> "):
		return core.ChunkKindQuote
	case footnoteRE.MatchString(unit):
		return core.ChunkKindFootnote
	default:
		return core.ChunkKindParagraph
	}
}
