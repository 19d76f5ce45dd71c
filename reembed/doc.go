// Package reembed provides offline maintenance over the stored corpus:
// regenerating chunk embeddings after an embedding-model change and
// re-running document classification after a taxonomy or model upgrade.
//
// Both operations walk storage in batches with progress reporting and
// retry with exponential backoff, and update records in place. A
// reembedding run also repairs documents whose chunks were stored without
// vectors after an ingest-time embedding failure.
package reembed
