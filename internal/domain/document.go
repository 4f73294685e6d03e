package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Document
var (
	ErrEmptyDocumentID      = errors.New("document ID cannot be empty")
	ErrEmptyDocumentScope   = errors.New("document search space ID cannot be empty")
	ErrEmptyDocumentTitle   = errors.New("document title cannot be empty")
	ErrEmptyDocumentContent = errors.New("document content cannot be empty")
)

// Document represents a piece of source material grouped under a search
// space. Its content is stored both as a whole and as ordered chunks
// produced by the ingestion pipeline; podcast generation prefers the
// chunks and falls back to Content when no chunks exist.
type Document struct {
	ID            uuid.UUID `json:"id"`
	SearchSpaceID uuid.UUID `json:"search_space_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DocumentChunk is one ordered slice of a document's content.
type DocumentChunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDocument creates a new Document in the given search space.
// Returns an error if validation fails.
func NewDocument(searchSpaceID uuid.UUID, title, content string) (*Document, error) {
	doc := &Document{
		ID:            uuid.New(),
		SearchSpaceID: searchSpaceID,
		Title:         title,
		Content:       content,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// Validate checks if the Document has valid data.
func (d *Document) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDocumentID
	}

	if d.SearchSpaceID == uuid.Nil {
		return ErrEmptyDocumentScope
	}

	if d.Title == "" {
		return ErrEmptyDocumentTitle
	}

	if d.Content == "" {
		return ErrEmptyDocumentContent
	}

	return nil
}
