// Package service provides application-level services for podcast
// generation and artifact persistence.
package service

import (
	"errors"
	"fmt"

	"github.com/halcyonlab/genstudio-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrDocumentNotFound indicates the source document does not exist in
	// the requested search space. API layer should map this to HTTP 404.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrChatNotFound indicates the source chat does not exist in the
	// requested search space. API layer should map this to HTTP 404.
	ErrChatNotFound = errors.New("chat not found")
)

// Error type tags recorded in the terminal task log entry of a failed
// run, so the audit trail classifies failures without parsing messages.
const (
	errTypeDocumentNotFound = "DocumentNotFound"
	errTypeChatNotFound     = "ChatNotFound"
	errTypePersistence      = "PersistenceError"
	errTypeUpstream         = "UpstreamGenerationError"
	errTypeUnexpected       = "UnexpectedError"
)

// PodcastServiceError wraps errors from the podcast service with context.
type PodcastServiceError struct {
	// Operation is the operation that failed (e.g., "generate_document_podcast")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for PodcastServiceError.
func (e *PodcastServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("podcast service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("podcast service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PodcastServiceError) Unwrap() error {
	return e.Err
}

// NewPodcastServiceError creates a new PodcastServiceError.
// It returns known sentinel errors directly without wrapping.
func NewPodcastServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	// Check for service-defined sentinel errors
	if errors.Is(err, ErrDocumentNotFound) {
		return ErrDocumentNotFound
	}
	if errors.Is(err, ErrChatNotFound) {
		return ErrChatNotFound
	}

	// Check for store-level sentinel errors that should be mapped to service-level ones
	if errors.Is(err, store.ErrDocumentNotFound) {
		return ErrDocumentNotFound
	}
	if errors.Is(err, store.ErrChatNotFound) {
		return ErrChatNotFound
	}

	// If not a sentinel to be returned directly, wrap it
	return &PodcastServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
