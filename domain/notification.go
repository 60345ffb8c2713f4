package domain

import (
	"fmt"
	"time"
	"unicode/utf8"

	"marketsync/contract"
	"marketsync/errors"
)

const (
	NotificationsTable = "notifications"

	// PreviewLength is the number of characters of a message kept in a notification.
	PreviewLength = 50
)

type NotificationType string

const (
	NotificationMessage       NotificationType = "message"
	NotificationApplication   NotificationType = "application"
	NotificationProjectUpdate NotificationType = "project_update"
	NotificationPartnership   NotificationType = "partnership"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationMessage, NotificationApplication, NotificationProjectUpdate, NotificationPartnership:
		return true
	default:
		return false
	}
}

// Notification belongs to exactly one recipient. Data is an opaque payload.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]any
	Read      bool
	CreatedAt time.Time
}

func (n Notification) GetID() string { return n.ID }

// Preview cuts content after limit characters and appends an ellipsis.
func Preview(content string, limit int) string {
	if utf8.RuneCountInString(content) <= limit {
		return content
	}
	return string([]rune(content)[:limit]) + "..."
}

func NotificationFromRecord(r contract.Record) (Notification, error) {
	if r.String("id") == "" {
		return Notification{}, fmt.Errorf("%w: notification without id", errors.ErrInvalidRecord)
	}
	return Notification{
		ID:        r.String("id"),
		UserID:    r.String("user_id"),
		Type:      NotificationType(r.String("type")),
		Title:     r.String("title"),
		Message:   r.String("message"),
		Data:      r.Map("data"),
		Read:      r.Bool("read"),
		CreatedAt: r.Time("created_at"),
	}, nil
}

func (n Notification) ToRecord() contract.Record {
	record := contract.Record{
		"user_id": n.UserID,
		"type":    string(n.Type),
		"title":   n.Title,
		"message": n.Message,
		"data":    n.Data,
		"read":    n.Read,
	}
	if n.ID != "" {
		record["id"] = n.ID
	}
	if !n.CreatedAt.IsZero() {
		record["created_at"] = contract.FormatTime(n.CreatedAt)
	}
	return record
}
