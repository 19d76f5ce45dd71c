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
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/poiesic/docent/core"
)

// Parser extracts the structured text of one document format.
// Implementations are deterministic: identical input bytes produce an
// identical ParsedDocument.
type Parser interface {
	Parse(data []byte) (*core.ParsedDocument, error)
}

// Mime types accepted by ForMime.
const (
	MimePDF      = "application/pdf"
	MimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeText     = "text/plain"
	MimeCSV      = "text/csv"
	MimeMarkdown = "text/markdown"
)

// ForMime returns the parser for a mime type. The registry is closed:
// unknown types return ErrUnsupportedFormat.
func ForMime(mime string) (Parser, error) {
	var p Parser
	switch mime {
	case MimePDF:
		p = newPDFParser()
	case MimeDOCX:
		p = newDOCXParser()
	case MimeXLSX:
		p = newXLSXParser()
	case MimeText, MimeMarkdown:
		p = newTextParser(false)
	case MimeCSV:
		p = newTextParser(true)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}
	return &recoveringParser{inner: p}, nil
}

// DetectMime maps a filename extension to a registry mime type. It returns
// the empty string for extensions the registry does not cover.
func DetectMime(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".xlsx":
		return MimeXLSX
	case ".txt", ".text":
		return MimeText
	case ".md":
		return MimeMarkdown
	case ".csv":
		return MimeCSV
	default:
		return ""
	}
}

// recoveringParser converts panics in format readers into ErrParseFailure.
// Malformed archives can drive third-party decoders into out-of-range reads.
type recoveringParser struct {
	inner Parser
}

func (p *recoveringParser) Parse(data []byte) (doc *core.ParsedDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: parser panic: %v", ErrParseFailure, r)
		}
	}()
	return p.inner.Parse(data)
}

// zipFileBytes reads one named file out of an open archive.
func zipFileBytes(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// zipHasFile reports whether the archive contains the named file.
func zipHasFile(zr *zip.Reader, name string) bool {
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}
