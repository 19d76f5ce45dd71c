package parse

import "errors"

var (
	// ErrUnsupportedFormat indicates no parser is registered for a mime type.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrParseFailure indicates a document could not be structurally parsed.
	ErrParseFailure = errors.New("document parse failure")
)
