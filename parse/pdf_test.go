package parse

import (
	"math"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/poiesic/docent/core"
)

func pdfTestRow(frags ...pdf.Text) *pdf.Row {
	return &pdf.Row{Content: frags}
}

func bodyFrag(text string) pdf.Text {
	return pdf.Text{Font: "Helvetica", FontSize: 10, S: text}
}

func boldFrag(text string) pdf.Text {
	return pdf.Text{Font: "Helvetica-Bold", FontSize: 10, S: text}
}

func bigFrag(text string) pdf.Text {
	return pdf.Text{Font: "Helvetica", FontSize: 18, S: text}
}

func TestPdfHeadingThreshold(t *testing.T) {
	closeTo := func(got, expected float64) bool {
		return math.Abs(got-expected) < 1e-9
	}

	// Odd sample count: median is the middle size.
	odd := []pdf.Rows{{
		pdfTestRow(pdf.Text{Font: "F", FontSize: 10, S: "a"}),
		pdfTestRow(pdf.Text{Font: "F", FontSize: 12, S: "b"}, pdf.Text{Font: "F", FontSize: 20, S: "c"}),
	}}
	if got := pdfHeadingThreshold(odd); !closeTo(got, 12*pdfHeadingRatio) {
		t.Errorf("Expected threshold %v, got %v", 12*pdfHeadingRatio, got)
	}

	// Even sample count: median averages the middle pair.
	even := []pdf.Rows{{
		pdfTestRow(pdf.Text{Font: "F", FontSize: 10, S: "a"}, pdf.Text{Font: "F", FontSize: 14, S: "b"}),
	}}
	if got := pdfHeadingThreshold(even); !closeTo(got, 12*pdfHeadingRatio) {
		t.Errorf("Expected threshold %v, got %v", 12*pdfHeadingRatio, got)
	}

	// Whitespace fragments carry no signal.
	blank := []pdf.Rows{{
		pdfTestRow(pdf.Text{Font: "F", FontSize: 99, S: "   "}, pdf.Text{Font: "F", FontSize: 10, S: "a"}),
	}}
	if got := pdfHeadingThreshold(blank); !closeTo(got, 10*pdfHeadingRatio) {
		t.Errorf("Blank fragments should be ignored, got %v", got)
	}

	// No usable sizes falls back to the default threshold.
	if got := pdfHeadingThreshold(nil); got != pdfDefaultThreshold {
		t.Errorf("Expected default threshold %v, got %v", pdfDefaultThreshold, got)
	}
}

func TestPdfHeadingThresholdSamplesLeadingPages(t *testing.T) {
	pages := make([]pdf.Rows, 0, pdfMedianSamplePages+1)
	for i := 0; i < pdfMedianSamplePages; i++ {
		pages = append(pages, pdf.Rows{pdfTestRow(bodyFrag("body text"))})
	}
	// An eleventh page with enough huge text to swing an uncapped median
	// must not move it.
	var poster pdf.Rows
	for i := 0; i < 15; i++ {
		poster = append(poster, pdfTestRow(bigFrag("poster")))
	}
	pages = append(pages, poster)

	if got := pdfHeadingThreshold(pages); math.Abs(got-10*pdfHeadingRatio) > 1e-9 {
		t.Errorf("Pages past the sample cap should be ignored, got %v", got)
	}
}

func TestPdfRowIsHeading(t *testing.T) {
	threshold := 13.8

	if !pdfRowIsHeading(pdfTestRow(boldFrag("Definitions")), threshold) {
		t.Error("Bold row should be a heading")
	}
	if !pdfRowIsHeading(pdfTestRow(bigFrag("Scope of Work")), threshold) {
		t.Error("Oversized row should be a heading")
	}
	if pdfRowIsHeading(pdfTestRow(bodyFrag("ordinary body text")), threshold) {
		t.Error("Body-sized row should not be a heading")
	}
	if pdfRowIsHeading(pdfTestRow(pdf.Text{Font: "Helvetica", FontSize: 99, S: "  "}, bodyFrag("text")), threshold) {
		t.Error("Whitespace fragment size should not promote the row")
	}
}

func TestPdfRowText(t *testing.T) {
	row := pdfTestRow(bodyFrag("Hello "), bodyFrag("world"))
	if got := pdfRowText(row); got != "Hello world" {
		t.Errorf("Expected fragment concatenation, got %q", got)
	}
}

func TestPdfPageSections(t *testing.T) {
	rows := pdf.Rows{
		pdfTestRow(bigFrag("1. Introduction")),
		pdfTestRow(bodyFrag("This agreement begins here.")),
		pdfTestRow(bodyFrag("It continues on the next row.")),
		pdfTestRow(boldFrag("2. Definitions")),
		pdfTestRow(bodyFrag("Terms are defined below.")),
	}

	sections := pdfPageSections(rows, 13.8)
	if len(sections) != 4 {
		t.Fatalf("Expected 4 sections, got %d", len(sections))
	}

	if sections[0].Kind != core.ChunkKindHeading || sections[0].HeadingLevel != 1 {
		t.Errorf("Unexpected first section: %+v", sections[0])
	}
	if sections[0].Contents != "1. Introduction" {
		t.Errorf("Unexpected heading: %q", sections[0].Contents)
	}

	// Consecutive body rows accumulate into one section.
	expected := "This agreement begins here.\nIt continues on the next row."
	if sections[1].Contents != expected {
		t.Errorf("Unexpected body section: %q", sections[1].Contents)
	}
	if sections[2].Contents != "2. Definitions" {
		t.Errorf("Unexpected second heading: %q", sections[2].Contents)
	}
	if sections[3].Contents != "Terms are defined below." {
		t.Errorf("Unexpected trailing body: %q", sections[3].Contents)
	}
}

func TestPdfPageSectionsShortRowsDropped(t *testing.T) {
	rows := pdf.Rows{
		pdfTestRow(bodyFrag("a")),
		pdfTestRow(bodyFrag("Real content here.")),
	}

	sections := pdfPageSections(rows, 13.8)
	if len(sections) != 1 || sections[0].Contents != "Real content here." {
		t.Errorf("Rows under the minimum length should be dropped, got %+v", sections)
	}
}

func TestPdfPageSectionsLongBoldRowStaysBody(t *testing.T) {
	long := strings.Repeat("clause text ", 30)
	rows := pdf.Rows{pdfTestRow(boldFrag(long))}

	sections := pdfPageSections(rows, 13.8)
	if len(sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(sections))
	}
	if sections[0].Kind != core.ChunkKindParagraph {
		t.Errorf("Rows over the heading length cap should stay body text, got %v", sections[0].Kind)
	}
}
