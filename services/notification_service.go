package services

import (
	"context"
	"log/slog"

	"marketsync/auth"
	"marketsync/contract"
	"marketsync/domain"
)

type INotificationService interface {
	CreateNotification(ctx context.Context, recipientID string, kind domain.NotificationType, title, message string, data map[string]any)
	NotifyCounterpart(ctx context.Context, conversation domain.Conversation, actorID string, kind domain.NotificationType, title, message string, data map[string]any)
}

// NotificationService creates notifications on behalf of another user's action.
// Delivery is at most once: one insert, no retry, no confirmation to the actor.
type NotificationService struct {
	log   *slog.Logger
	query contract.Query
}

func NewNotificationService(log *slog.Logger, query contract.Query) *NotificationService {
	return &NotificationService{log: log, query: query}
}

func (s *NotificationService) CreateNotification(ctx context.Context, recipientID string, kind domain.NotificationType,
	title, message string, data map[string]any) {
	request := auth.NotificationRequest{RecipientID: recipientID, Type: string(kind), Title: title, Message: message}
	if err := auth.ValidateNotification(request); err != nil {
		s.log.Warn("Notification rejected", "recipient", recipientID, "type", kind, "error", err)
		return
	}
	notification := domain.Notification{
		UserID:  recipientID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if _, err := s.query.Insert(ctx, domain.NotificationsTable, notification.ToRecord()); err != nil {
		s.log.Warn("Notification insert failed", "recipient", recipientID, "type", kind, "error", err)
		return
	}
	s.log.Debug("Notification created", "recipient", recipientID, "type", kind)
}

// NotifyCounterpart targets the other participant of the conversation.
func (s *NotificationService) NotifyCounterpart(ctx context.Context, conversation domain.Conversation, actorID string,
	kind domain.NotificationType, title, message string, data map[string]any) {
	recipient, err := conversation.Counterpart(actorID)
	if err != nil {
		s.log.Warn("No counterpart to notify", "conversation_id", conversation.ID, "error", err)
		return
	}
	s.CreateNotification(ctx, recipient, kind, title, message, data)
}
