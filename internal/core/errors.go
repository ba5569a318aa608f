package core

import (
	"errors"
	"fmt"
)

// Pipeline failure taxonomy. Stage-local failures (one chunk, one page) are
// absorbed by the orchestrator; the sentinels below mark the systemic cases
// that abort a run or must be branched on by callers.
var (
	// ErrDownloadFailed: object storage unreachable or key missing.
	ErrDownloadFailed = errors.New("document download failed")

	// ErrExtractionFailed: every extraction strategy was exhausted.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrChunkingProducedNothing: no page yielded a single chunk.
	ErrChunkingProducedNothing = errors.New("chunking produced no chunks")

	// ErrNoVectorsProduced: zero chunks embedded successfully; the run must
	// never report success after silently dropping all content.
	ErrNoVectorsProduced = errors.New("no vectors produced")

	// ErrEmptyInput: empty/whitespace text reached the embedder. A caller
	// bug, failed fast and never retried.
	ErrEmptyInput = errors.New("empty input text")

	// ErrMalformedResponse: the embedding service answered 2xx but without
	// the expected vector payload.
	ErrMalformedResponse = errors.New("malformed embedding response")
)

// ServiceError carries a non-2xx status from the embedding service.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("embedding service error (status %d): %s", e.Status, e.Message)
}

// UpsertError reports a failed batch write. Offset is the index of the first
// record in the failing batch; earlier batches were already written and are
// not rolled back.
type UpsertError struct {
	Offset int
	Count  int
	Err    error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("upsert batch failed at offset %d (%d records): %v", e.Offset, e.Count, e.Err)
}

func (e *UpsertError) Unwrap() error { return e.Err }

// QueryError reports an upstream failure during a similarity query.
type QueryError struct {
	Namespace string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("vector query failed in namespace %q: %v", e.Namespace, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
