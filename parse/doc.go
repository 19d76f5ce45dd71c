// Package parse converts source document formats into the structured
// ParsedDocument consumed by the chunker.
//
// The registry is closed: ForMime returns a parser for the supported mime
// types and ErrUnsupportedFormat for everything else. DetectMime maps file
// extensions onto those types.
//
// All parsers are deterministic, and empty input is not an error: parsers
// return an empty ParsedDocument when there is no extractable text.
// Structural failures, including panics inside third-party readers, surface
// as ErrParseFailure with the cause wrapped.
package parse
