// Package ingestion provides pipeline orchestration for turning uploaded
// files into searchable documents.
//
// The Pipeline type manages the ingestion workflow for a document, including:
//   - Parsing the raw bytes into structured text
//   - Splitting the text into retrieval-sized chunks
//   - Classifying the document and embedding the chunks
//   - Committing the chunk set and the final document status
//
// Submission returns as soon as the document record exists; the stages run
// on a worker pool with at-least-once job delivery. Every run ends with the
// document either completed or failed and a completion event, so callers
// observe progress without polling internals.
package ingestion
