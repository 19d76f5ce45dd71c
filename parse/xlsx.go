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

// tableRowBatchSize caps how many data rows a single table section carries.
// The header row is repeated at the top of every batch so each section is
// readable on its own.
const tableRowBatchSize = 50

// xlsxParser walks a workbook sheet by sheet. Each sheet contributes a
// heading section named after it, followed by its rows in header-repeated
// batches. Spreadsheets carry no pagination, so everything lands on page 0.
type xlsxParser struct {
	logger *slog.Logger
}

func newXLSXParser() *xlsxParser {
	return &xlsxParser{
		logger: slog.Default().With("component", "parser", "format", "xlsx"),
	}
}

// The spreadsheetml parts we read.
type xlsxWorkbook struct {
	Sheets []xlsxSheetRef `xml:"sheets>sheet"`
}

type xlsxSheetRef struct {
	Name string `xml:"name,attr"`
	Id   string `xml:"id,attr"`
}

type xlsxRelationships struct {
	Rels []xlsxRelationship `xml:"Relationship"`
}

type xlsxRelationship struct {
	Id     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
}

type xlsxSharedStrings struct {
	Items []xlsxSharedItem `xml:"si"`
}

// xlsxSharedItem is one shared string, either a plain t element or a rich
// text run sequence.
type xlsxSharedItem struct {
	Text string   `xml:"t"`
	Runs []string `xml:"r>t"`
}

func (s xlsxSharedItem) value() string {
	if len(s.Runs) > 0 {
		return strings.Join(s.Runs, "")
	}
	return s.Text
}

type xlsxWorksheet struct {
	Rows []xlsxRow `xml:"sheetData>row"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline string `xml:"is>t"`
}

func (p *xlsxParser) Parse(data []byte) (*core.ParsedDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &core.ParsedDocument{}, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening xlsx archive: %w", ErrParseFailure, err)
	}

	raw, err := zipFileBytes(zr, "xl/workbook.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	var workbook xlsxWorkbook
	if err := xml.Unmarshal(raw, &workbook); err != nil {
		return nil, fmt.Errorf("%w: decoding xl/workbook.xml: %w", ErrParseFailure, err)
	}

	shared, err := xlsxLoadSharedStrings(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	rels, err := xlsxLoadRelationships(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}

	page := core.ParsedPage{Number: 0}
	for i, sheet := range workbook.Sheets {
		target := xlsxSheetTarget(rels, sheet.Id, i)
		if !zipHasFile(zr, target) {
			// Chartsheets and other non-worksheet parts resolve to
			// targets that hold no cell data.
			continue
		}
		raw, err := zipFileBytes(zr, target)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
		}
		var ws xlsxWorksheet
		if err := xml.Unmarshal(raw, &ws); err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %w", ErrParseFailure, target, err)
		}

		rows := xlsxSheetRows(ws, shared)
		if len(rows) == 0 {
			continue
		}

		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		page.Sections = append(page.Sections, core.Section{
			Contents:     name,
			Kind:         core.ChunkKindHeading,
			HeadingLevel: 1,
		})

		header := strings.Join(rows[0], " | ")
		dataRows := rows[1:]
		if len(dataRows) == 0 {
			page.Sections = append(page.Sections, core.Section{
				Contents: header,
				Kind:     core.ChunkKindTableRow,
			})
			continue
		}
		for start := 0; start < len(dataRows); start += tableRowBatchSize {
			end := min(start+tableRowBatchSize, len(dataRows))
			lines := make([]string, 0, end-start+1)
			lines = append(lines, header)
			for _, row := range dataRows[start:end] {
				lines = append(lines, strings.Join(row, " | "))
			}
			page.Sections = append(page.Sections, core.Section{
				Contents: strings.Join(lines, "\n"),
				Kind:     core.ChunkKindTableRow,
			})
		}
	}

	doc := &core.ParsedDocument{}
	if len(page.Sections) > 0 {
		doc.Pages = append(doc.Pages, page)
	}

	p.logger.Debug("parsed xlsx", "sheets", len(workbook.Sheets), "sections", len(page.Sections))
	return doc, nil
}

func xlsxLoadSharedStrings(zr *zip.Reader) ([]string, error) {
	if !zipHasFile(zr, "xl/sharedStrings.xml") {
		return nil, nil
	}
	raw, err := zipFileBytes(zr, "xl/sharedStrings.xml")
	if err != nil {
		return nil, err
	}
	var sst xlsxSharedStrings
	if err := xml.Unmarshal(raw, &sst); err != nil {
		return nil, fmt.Errorf("decoding xl/sharedStrings.xml: %w", err)
	}
	values := make([]string, len(sst.Items))
	for i, item := range sst.Items {
		values[i] = item.value()
	}
	return values, nil
}

func xlsxLoadRelationships(zr *zip.Reader) (map[string]string, error) {
	rels := make(map[string]string)
	if !zipHasFile(zr, "xl/_rels/workbook.xml.rels") {
		return rels, nil
	}
	raw, err := zipFileBytes(zr, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return nil, err
	}
	var decoded xlsxRelationships
	if err := xml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decoding workbook relationships: %w", err)
	}
	for _, rel := range decoded.Rels {
		rels[rel.Id] = rel.Target
	}
	return rels, nil
}

// xlsxSheetTarget resolves a sheet's worksheet part, falling back to the
// conventional sheetN.xml path when the workbook carries no relationship.
func xlsxSheetTarget(rels map[string]string, relId string, position int) string {
	target := rels[relId]
	if target == "" {
		return fmt.Sprintf("xl/worksheets/sheet%d.xml", position+1)
	}
	target = strings.TrimPrefix(target, "/")
	if !strings.HasPrefix(target, "xl/") {
		target = "xl/" + target
	}
	return target
}

// xlsxSheetRows resolves every cell and drops rows that are entirely empty.
func xlsxSheetRows(ws xlsxWorksheet, shared []string) [][]string {
	var rows [][]string
	for _, row := range ws.Rows {
		cells := xlsxRowCells(row, shared)
		empty := true
		for _, cell := range cells {
			if cell != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}

func xlsxRowCells(row xlsxRow, shared []string) []string {
	var cells []string
	for _, c := range row.Cells {
		idx := xlsxColumnIndex(c.Ref)
		if idx < 0 {
			idx = len(cells)
		}
		for len(cells) <= idx {
			cells = append(cells, "")
		}
		cells[idx] = strings.TrimSpace(xlsxCellValue(c, shared))
	}
	return cells
}

func xlsxCellValue(c xlsxCell, shared []string) string {
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return c.Inline
	default:
		return c.Value
	}
}

// xlsxColumnIndex converts the column letters of a cell reference like "C7"
// to a zero-based index. It returns -1 when the reference has no letters.
func xlsxColumnIndex(ref string) int {
	col := 0
	for _, r := range ref {
		switch {
		case r >= 'A' && r <= 'Z':
			col = col*26 + int(r-'A') + 1
		case r >= 'a' && r <= 'z':
			col = col*26 + int(r-'a') + 1
		default:
			return col - 1
		}
	}
	return col - 1
}
