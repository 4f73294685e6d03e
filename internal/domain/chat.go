package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Chat message roles recognized when building podcast source content.
// Messages with any other role (system, tool, etc.) are skipped.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// Common validation errors for Chat
var (
	ErrEmptyChatID    = errors.New("chat ID cannot be empty")
	ErrEmptyChatScope = errors.New("chat search space ID cannot be empty")
)

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat represents a stored conversation within a search space.
// StateVersion increases whenever the conversation changes, letting a
// podcast generated from the chat record which version it reflects.
type Chat struct {
	ID            uuid.UUID     `json:"id"`
	SearchSpaceID uuid.UUID     `json:"search_space_id"`
	Title         string        `json:"title"`
	Messages      []ChatMessage `json:"messages"`
	StateVersion  int64         `json:"state_version"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewChat creates a new Chat in the given search space.
func NewChat(searchSpaceID uuid.UUID, title string, messages []ChatMessage) (*Chat, error) {
	chat := &Chat{
		ID:            uuid.New(),
		SearchSpaceID: searchSpaceID,
		Title:         title,
		Messages:      messages,
		StateVersion:  1,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := chat.Validate(); err != nil {
		return nil, err
	}

	return chat, nil
}

// Validate checks if the Chat has valid data.
func (c *Chat) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyChatID
	}

	if c.SearchSpaceID == uuid.Nil {
		return ErrEmptyChatScope
	}

	return nil
}
