package parse

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/poiesic/docent/core"
)

const (
	// pdfHeadingRatio scales the document median font size into the heading
	// threshold. A row is a heading when any of its fragments exceeds it.
	pdfHeadingRatio = 1.15

	// pdfHeadingMinLen and pdfHeadingMaxLen bound heading candidates in runes.
	// Rows shorter than the minimum carry no retrievable text and are dropped.
	pdfHeadingMinLen = 3
	pdfHeadingMaxLen = 200

	// pdfMedianSamplePages caps how many leading pages feed the font median.
	pdfMedianSamplePages = 10

	// pdfDefaultThreshold applies when a document reports no usable font sizes.
	pdfDefaultThreshold = 14.0
)

// pdfParser extracts per-page text rows with their font data. Heading
// detection is typographic: oversized or bold rows open a new section.
type pdfParser struct {
	logger *slog.Logger
}

func newPDFParser() *pdfParser {
	return &pdfParser{
		logger: slog.Default().With("component", "parser", "format", "pdf"),
	}
}

func (p *pdfParser) Parse(data []byte) (*core.ParsedDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &core.ParsedDocument{}, nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening pdf: %w", ErrParseFailure, err)
	}

	pageRows := make([]pdf.Rows, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pageRows = append(pageRows, nil)
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("%w: extracting page %d: %w", ErrParseFailure, i, err)
		}
		pageRows = append(pageRows, rows)
	}

	threshold := pdfHeadingThreshold(pageRows)

	doc := &core.ParsedDocument{}
	total := 0
	for idx, rows := range pageRows {
		sections := pdfPageSections(rows, threshold)
		if len(sections) == 0 {
			continue
		}
		doc.Pages = append(doc.Pages, core.ParsedPage{Number: idx + 1, Sections: sections})
		total += len(sections)
	}

	p.logger.Debug("parsed pdf", "pages", len(pageRows), "sections", total)
	return doc, nil
}

// pdfPageSections turns one page's rows into sections. Heading rows close
// the running body accumulation and emit their own section. PDF headings
// carry no nesting information, so every heading opens level 1.
func pdfPageSections(rows pdf.Rows, threshold float64) []core.Section {
	var sections []core.Section
	var body []string
	flush := func() {
		if len(body) == 0 {
			return
		}
		sections = append(sections, core.Section{
			Contents: strings.Join(body, "\n"),
			Kind:     core.ChunkKindParagraph,
		})
		body = nil
	}

	for _, row := range rows {
		text := strings.TrimSpace(pdfRowText(row))
		length := utf8.RuneCountInString(text)
		if length < pdfHeadingMinLen {
			continue
		}
		if length <= pdfHeadingMaxLen && pdfRowIsHeading(row, threshold) {
			flush()
			sections = append(sections, core.Section{
				Contents:     text,
				Kind:         core.ChunkKindHeading,
				HeadingLevel: 1,
			})
			continue
		}
		body = append(body, text)
	}
	flush()

	return sections
}

// pdfHeadingThreshold derives the heading font size from the median over the
// sampled leading pages.
func pdfHeadingThreshold(pageRows []pdf.Rows) float64 {
	sample := pageRows
	if len(sample) > pdfMedianSamplePages {
		sample = sample[:pdfMedianSamplePages]
	}

	var sizes []float64
	for _, rows := range sample {
		for _, row := range rows {
			for _, frag := range row.Content {
				if strings.TrimSpace(frag.S) == "" {
					continue
				}
				sizes = append(sizes, frag.FontSize)
			}
		}
	}
	if len(sizes) == 0 {
		return pdfDefaultThreshold
	}

	sort.Float64s(sizes)
	mid := len(sizes) / 2
	median := sizes[mid]
	if len(sizes)%2 == 0 {
		median = (sizes[mid-1] + sizes[mid]) / 2
	}
	if median <= 0 {
		return pdfDefaultThreshold
	}
	return median * pdfHeadingRatio
}

// pdfRowText joins a row's fragments in reading order.
func pdfRowText(row *pdf.Row) string {
	var sb strings.Builder
	for _, frag := range row.Content {
		sb.WriteString(frag.S)
	}
	return sb.String()
}

// pdfRowIsHeading reports whether any non-blank fragment in the row is set
// above the threshold size or in a bold face.
func pdfRowIsHeading(row *pdf.Row, threshold float64) bool {
	for _, frag := range row.Content {
		if strings.TrimSpace(frag.S) == "" {
			continue
		}
		if frag.FontSize > threshold || strings.Contains(frag.Font, "Bold") {
			return true
		}
	}
	return false
}
