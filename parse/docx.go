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


package parse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/docent/core"
)

// docxParser reads the main document part of a Word archive. Paragraph
// styles drive heading levels; tables become atomic table sections. DOCX
// carries no pagination, so every section lands on page 0.
type docxParser struct {
	logger *slog.Logger
}

func newDOCXParser() *docxParser {
	return &docxParser{
		logger: slog.Default().With("component", "parser", "format", "docx"),
	}
}

// The wordprocessingml elements we read. Field tags omit the namespace so
// they match the w: prefix regardless of how the producer declared it.
type docxDocument struct {
	Body docxBody `xml:"body"`
}

// docxBody keeps paragraphs and tables in document order. The section
// stream depends on that ordering, so the two element kinds cannot be
// decoded into separate slices.
type docxBody struct {
	Blocks []docxBlock `xml:",any"`
}

type docxBlockKind int

const (
	docxBlockSkipped docxBlockKind = iota
	docxBlockParagraph
	docxBlockTable
)

type docxBlock struct {
	Kind      docxBlockKind
	Paragraph docxParagraph
	Table     docxTable
}

func (b *docxBlock) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	switch start.Name.Local {
	case "p":
		b.Kind = docxBlockParagraph
		return d.DecodeElement(&b.Paragraph, &start)
	case "tbl":
		b.Kind = docxBlockTable
		return d.DecodeElement(&b.Table, &start)
	default:
		return d.Skip()
	}
}

type docxParagraph struct {
	Props docxParaProps `xml:"pPr"`
	Runs  []docxRun     `xml:"r"`
}

type docxParaProps struct {
	Style docxParaStyle `xml:"pStyle"`
}

type docxParaStyle struct {
	Val string `xml:"val,attr"`
}

type docxRun struct {
	Texts []string `xml:"t"`
}

type docxTable struct {
	Rows []docxTableRow `xml:"tr"`
}

type docxTableRow struct {
	Cells []docxTableCell `xml:"tc"`
}

type docxTableCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

func (p *docxParser) Parse(data []byte) (*core.ParsedDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &core.ParsedDocument{}, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening docx archive: %w", ErrParseFailure, err)
	}

	raw, err := zipFileBytes(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}

	var document docxDocument
	if err := xml.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("%w: decoding word/document.xml: %w", ErrParseFailure, err)
	}

	page := core.ParsedPage{Number: 0}
	var body []string
	flush := func() {
		if len(body) == 0 {
			return
		}
		page.Sections = append(page.Sections, core.Section{
			Contents: strings.Join(body, "\n"),
			Kind:     core.ChunkKindParagraph,
		})
		body = nil
	}

	for _, block := range document.Body.Blocks {
		switch block.Kind {
		case docxBlockParagraph:
			text := docxParagraphText(block.Paragraph)
			if text == "" {
				continue
			}
			if level := docxHeadingLevel(block.Paragraph.Props.Style.Val); level > 0 {
				flush()
				page.Sections = append(page.Sections, core.Section{
					Contents:     text,
					Kind:         core.ChunkKindHeading,
					HeadingLevel: level,
				})
				continue
			}
			body = append(body, text)
		case docxBlockTable:
			flush()
			if text := docxTableText(block.Table); text != "" {
				page.Sections = append(page.Sections, core.Section{
					Contents: text,
					Kind:     core.ChunkKindTableRow,
				})
			}
		}
	}
	flush()

	doc := &core.ParsedDocument{}
	if len(page.Sections) > 0 {
		doc.Pages = append(doc.Pages, page)
	}

	p.logger.Debug("parsed docx", "sections", len(page.Sections))
	return doc, nil
}

// docxHeadingLevel maps a paragraph style id to a heading level. Heading1
// through Heading9 keep their depth. Title and Subtitle open the outermost
// level. Every other style is body text.
func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.TrimSpace(style))
	if s == "title" || s == "subtitle" {
		return 1
	}
	rest, ok := strings.CutPrefix(s, "heading")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 1 || n > 9 {
		return 0
	}
	return n
}

func docxParagraphText(p docxParagraph) string {
	var sb strings.Builder
	for _, run := range p.Runs {
		for _, t := range run.Texts {
			sb.WriteString(t)
		}
	}
	return strings.TrimSpace(sb.String())
}

// docxTableText renders a table with cells joined " | " and rows joined by
// newlines. Rows whose cells are all empty are dropped.
func docxTableText(t docxTable) string {
	var rows []string
	for _, row := range t.Rows {
		cells := make([]string, 0, len(row.Cells))
		empty := true
		for _, cell := range row.Cells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if text := docxParagraphText(para); text != "" {
					parts = append(parts, text)
				}
			}
			text := strings.Join(parts, " ")
			if text != "" {
				empty = false
			}
			cells = append(cells, text)
		}
		if empty {
			continue
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	return strings.Join(rows, "\n")
}
