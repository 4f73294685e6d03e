package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Podcast
var (
	ErrEmptyPodcastID       = errors.New("podcast ID cannot be empty")
	ErrEmptyPodcastScope    = errors.New("podcast search space ID cannot be empty")
	ErrEmptyPodcastTitle    = errors.New("podcast title cannot be empty")
	ErrEmptyPodcastLocation = errors.New("podcast file location cannot be empty")
)

// TranscriptEntry is a single line of podcast dialog attributed to a speaker.
type TranscriptEntry struct {
	SpeakerID string `json:"speaker_id"`
	Dialog    string `json:"dialog"`
}

// Podcast is the durable artifact produced by a successful podcast
// generation run. A podcast derived from a chat carries the chat's ID and
// the state version it was generated from; a podcast derived from a
// document has a nil ChatID and is identified by (SearchSpaceID, Title).
// Regeneration overwrites Transcript, FileLocation and ChatStateVersion
// in place rather than creating a second record.
type Podcast struct {
	ID               uuid.UUID         `json:"id"`
	SearchSpaceID    uuid.UUID         `json:"search_space_id"`
	Title            string            `json:"title"`
	Transcript       []TranscriptEntry `json:"transcript"`
	FileLocation     string            `json:"file_location"`
	ChatID           *uuid.UUID        `json:"chat_id,omitempty"`
	ChatStateVersion *int64            `json:"chat_state_version,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewPodcast creates a new Podcast artifact. chatID and chatStateVersion
// are nil for document-derived podcasts.
func NewPodcast(
	searchSpaceID uuid.UUID,
	title string,
	transcript []TranscriptEntry,
	fileLocation string,
	chatID *uuid.UUID,
	chatStateVersion *int64,
) (*Podcast, error) {
	podcast := &Podcast{
		ID:               uuid.New(),
		SearchSpaceID:    searchSpaceID,
		Title:            title,
		Transcript:       transcript,
		FileLocation:     fileLocation,
		ChatID:           chatID,
		ChatStateVersion: chatStateVersion,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	if err := podcast.Validate(); err != nil {
		return nil, err
	}

	return podcast, nil
}

// Validate checks if the Podcast has valid data.
func (p *Podcast) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPodcastID
	}

	if p.SearchSpaceID == uuid.Nil {
		return ErrEmptyPodcastScope
	}

	if p.Title == "" {
		return ErrEmptyPodcastTitle
	}

	if p.FileLocation == "" {
		return ErrEmptyPodcastLocation
	}

	return nil
}

// IsFromChat reports whether the podcast was generated from a chat.
func (p *Podcast) IsFromChat() bool {
	return p.ChatID != nil
}
