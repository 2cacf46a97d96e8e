// Package errs holds the typed failures the pipeline surfaces so callers can
// tell "retry later" apart from "misconfigured" without string matching.
package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ExtractionError means the document produced no usable text. Fatal for the
// ingestion run; re-triggering will not help unless the file changes.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "extraction failed: " + e.Reason
}

// EmbeddingServiceError carries the HTTP status from the hosted embedding
// model. StatusCode 0 means the request never completed (timeout, transport).
// The embedder never retries; backoff policy belongs to the caller.
type EmbeddingServiceError struct {
	StatusCode int
	Message    string
}

func (e *EmbeddingServiceError) Error() string {
	if e.StatusCode == 0 {
		return "embedding service: " + e.Message
	}
	return fmt.Sprintf("embedding service: status %d: %s", e.StatusCode, e.Message)
}

func (e *EmbeddingServiceError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *EmbeddingServiceError) QuotaExhausted() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// GenerationError is the chat-completion counterpart of
// EmbeddingServiceError, with the same status semantics.
type GenerationError struct {
	StatusCode int
	Message    string
}

func (e *GenerationError) Error() string {
	if e.StatusCode == 0 {
		return "generation service: " + e.Message
	}
	return fmt.Sprintf("generation service: status %d: %s", e.StatusCode, e.Message)
}

func (e *GenerationError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *GenerationError) QuotaExhausted() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// VectorSearchError wraps a failure of the vector backend. Consumers degrade
// to the fallback path instead of propagating it.
type VectorSearchError struct {
	Err error
}

func (e *VectorSearchError) Error() string {
	return "vector search: " + e.Err.Error()
}

func (e *VectorSearchError) Unwrap() error { return e.Err }

// StructuredOutputValidationError means the model's quiz response did not
// match the required shape. The whole request is rejected, never degraded.
type StructuredOutputValidationError struct {
	Reason string
}

func (e *StructuredOutputValidationError) Error() string {
	return "structured output invalid: " + e.Reason
}

// PartialIngestionFailure records an ingestion run that persisted some chunks
// before failing. The document stays in the failed state; re-ingestion clears
// the partial rows before inserting again.
type PartialIngestionFailure struct {
	DocumentID      string
	ChunksPersisted int
	Err             error
}

func (e *PartialIngestionFailure) Error() string {
	return fmt.Sprintf("ingestion of document %s failed after %d chunks: %v",
		e.DocumentID, e.ChunksPersisted, e.Err)
}

func (e *PartialIngestionFailure) Unwrap() error { return e.Err }

// statusOf pulls the HTTP status out of an upstream Gemini error, if any.
// Context expiry maps to 0 so callers treat it as retryable rather than a
// 4xx rejection.
func statusOf(err error) (int, string) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code, gerr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return 0, "request timed out"
	}
	return 0, err.Error()
}

// Embedding converts an upstream error into an *EmbeddingServiceError.
func Embedding(err error) error {
	code, msg := statusOf(err)
	return &EmbeddingServiceError{StatusCode: code, Message: msg}
}

// Generation converts an upstream error into a *GenerationError.
func Generation(err error) error {
	code, msg := statusOf(err)
	return &GenerationError{StatusCode: code, Message: msg}
}
