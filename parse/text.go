package parse

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/poiesic/docent/core"
)

var (
	// Blocks are separated by blank lines, possibly with stray whitespace.
	textBlockRE = regexp.MustCompile(`\n\s*\n`)

	// Heuristic heading shapes in plain text.
	textAllCapsRE   = regexp.MustCompile(`^[A-Z][A-Z\s\-:]{2,80}$`)
	textNumberedRE  = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s+[A-Z]`)
	textUnderlineRE = regexp.MustCompile(`^[=\-]{3,}$`)

	// Markdown ATX headings.
	textMdHeadingRE = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
)

// textParser handles plain text, markdown, and CSV. Text is split into
// blank-line blocks, with heading-shaped blocks promoted to headings. CSV
// input, whether declared by mime type or sniffed from a comma-heavy first
// line, is rendered as header-repeated table batches.
type textParser struct {
	csv    bool
	logger *slog.Logger
}

func newTextParser(forceCSV bool) *textParser {
	format := "text"
	if forceCSV {
		format = "csv"
	}
	return &textParser{
		csv:    forceCSV,
		logger: slog.Default().With("component", "parser", "format", format),
	}
}

func (p *textParser) Parse(data []byte) (*core.ParsedDocument, error) {
	text := strings.ToValidUTF8(string(data), "�")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if strings.TrimSpace(text) == "" {
		return &core.ParsedDocument{}, nil
	}

	if p.csv || sniffCSV(text) {
		sections, err := parseCSVSections(text)
		if err != nil {
			if p.csv {
				return nil, fmt.Errorf("%w: reading csv: %w", ErrParseFailure, err)
			}
			// The sniff misfired on comma-heavy prose. Fall through to
			// the plain text path.
		} else {
			p.logger.Debug("parsed csv", "sections", len(sections))
			return textDocument(sections), nil
		}
	}

	sections := parseTextSections(text)
	p.logger.Debug("parsed text", "sections", len(sections))
	return textDocument(sections), nil
}

func textDocument(sections []core.Section) *core.ParsedDocument {
	doc := &core.ParsedDocument{}
	if len(sections) > 0 {
		doc.Pages = append(doc.Pages, core.ParsedPage{Number: 0, Sections: sections})
	}
	return doc
}

// sniffCSV treats a comma-heavy first line as a table signal.
func sniffCSV(text string) bool {
	first, _, _ := strings.Cut(text, "\n")
	return strings.Count(first, ",") >= 2
}

func parseTextSections(text string) []core.Section {
	var sections []core.Section
	for _, block := range textBlockRE.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		// Markdown headings bind to a line, not a block, so peel any
		// leading heading lines off before classifying the remainder.
		for len(lines) > 0 {
			m := textMdHeadingRE.FindStringSubmatch(strings.TrimSpace(lines[0]))
			if m == nil {
				break
			}
			sections = append(sections, core.Section{
				Contents:     strings.TrimSpace(m[2]),
				Kind:         core.ChunkKindHeading,
				HeadingLevel: len(m[1]),
			})
			lines = lines[1:]
		}
		rest := strings.TrimSpace(strings.Join(lines, "\n"))
		if rest == "" {
			continue
		}

		if heading, level, ok := textHeading(strings.Split(rest, "\n")); ok {
			sections = append(sections, core.Section{
				Contents:     heading,
				Kind:         core.ChunkKindHeading,
				HeadingLevel: level,
			})
			continue
		}
		sections = append(sections, core.Section{
			Contents: rest,
			Kind:     core.ChunkKindParagraph,
		})
	}
	return sections
}

// textHeading classifies heading-shaped blocks: a single ALL-CAPS or
// numbered line, or a two-line block whose second line is an = or -
// underline. Numbered headings take their level from the dotted depth,
// underlines map = to level 1 and - to level 2.
func textHeading(lines []string) (string, int, bool) {
	switch len(lines) {
	case 1:
		line := strings.TrimSpace(lines[0])
		if textAllCapsRE.MatchString(line) {
			return line, 1, true
		}
		if m := textNumberedRE.FindStringSubmatch(line); m != nil {
			level := min(strings.Count(m[1], ".")+1, 6)
			return line, level, true
		}
	case 2:
		under := strings.TrimSpace(lines[1])
		if textUnderlineRE.MatchString(under) {
			level := 1
			if strings.HasPrefix(under, "-") {
				level = 2
			}
			return strings.TrimSpace(lines[0]), level, true
		}
	}
	return "", 0, false
}

// parseCSVSections renders CSV records the same way spreadsheet sheets are
// rendered: cells joined " | ", the header row repeated per batch.
func parseCSVSections(text string) ([]core.Section, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, record := range records {
		cells := make([]string, len(record))
		empty := true
		for i, cell := range record {
			cells[i] = strings.TrimSpace(cell)
			if cells[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	sections := []core.Section{{
		Contents:     "CSV Data",
		Kind:         core.ChunkKindHeading,
		HeadingLevel: 1,
	}}
	header := strings.Join(rows[0], " | ")
	dataRows := rows[1:]
	if len(dataRows) == 0 {
		return append(sections, core.Section{
			Contents: header,
			Kind:     core.ChunkKindTableRow,
		}), nil
	}
	for start := 0; start < len(dataRows); start += tableRowBatchSize {
		end := min(start+tableRowBatchSize, len(dataRows))
		lines := make([]string, 0, end-start+1)
		lines = append(lines, header)
		for _, row := range dataRows[start:end] {
			lines = append(lines, strings.Join(row, " | "))
		}
		sections = append(sections, core.Section{
			Contents: strings.Join(lines, "\n"),
			Kind:     core.ChunkKindTableRow,
		})
	}
	return sections, nil
}
