// Package domain contains core concepts of the marketplace.
// This file defines Message and its local visibility state.
package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"marketsync/contract"
	"marketsync/errors"
)

const (
	MessagesTable = "messages"

	// MaxContentLength bounds a chat message, in runes.
	MaxContentLength = 2000
)

type MessageState int

const (
	MessageAbsent MessageState = iota
	MessageUnread
	MessageRead
)

func (s MessageState) String() string {
	switch s {
	case MessageUnread:
		return "visible-unread"
	case MessageRead:
		return "visible-read"
	default:
		return "absent"
	}
}

// Message belongs to exactly one conversation. ReadAt is nil while unread.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	CreatedAt      time.Time
	ReadAt         *time.Time
}

func (m Message) GetID() string { return m.ID }

func (m Message) IsRead() bool { return m.ReadAt != nil }

func (m Message) State() MessageState {
	if m.ID == "" {
		return MessageAbsent
	}
	if m.IsRead() {
		return MessageRead
	}
	return MessageUnread
}

// UnreadFor reports whether the message counts as unread for viewer.
// A sender never has unread messages of their own.
func (m Message) UnreadFor(viewerID string) bool {
	return !m.IsRead() && m.SenderID != viewerID
}

// ValidateContent trims the content and rejects empty or oversized messages.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", errors.ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return "", fmt.Errorf("%w: %d runes max", errors.ErrContentTooLong, MaxContentLength)
	}
	return trimmed, nil
}

func MessageFromRecord(r contract.Record) (Message, error) {
	if r.String("id") == "" {
		return Message{}, fmt.Errorf("%w: message without id", errors.ErrInvalidRecord)
	}
	return Message{
		ID:             r.String("id"),
		ConversationID: r.String("conversation_id"),
		SenderID:       r.String("sender_id"),
		Content:        r.String("content"),
		CreatedAt:      r.Time("created_at"),
		ReadAt:         r.OptionalTime("read_at"),
	}, nil
}

func (m Message) ToRecord() contract.Record {
	record := contract.Record{
		"id":              m.ID,
		"conversation_id": m.ConversationID,
		"sender_id":       m.SenderID,
		"content":         m.Content,
		"created_at":      contract.FormatTime(m.CreatedAt),
		"read_at":         nil,
	}
	if m.ReadAt != nil {
		record["read_at"] = contract.FormatTime(*m.ReadAt)
	}
	return record
}
