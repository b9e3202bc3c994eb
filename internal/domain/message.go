package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a post on the board. A message with a parent is a reply to it.
type Message struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Content         string
	ParentMessageID *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewMessage builds an unpersisted message. ID and timestamps are assigned on insert.
func NewMessage(userID uuid.UUID, content string, parentMessageID *uuid.UUID) *Message {
	return &Message{
		UserID:          userID,
		Content:         content,
		ParentMessageID: parentMessageID,
	}
}

// Persisted reports whether the message has been assigned an identifier by the store.
func (m *Message) Persisted() bool {
	return m != nil && m.ID != uuid.Nil
}

// IsReply reports whether the message references a parent.
func (m *Message) IsReply() bool {
	return m.ParentMessageID != nil
}
