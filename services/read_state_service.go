package services

import (
	"context"
	"log/slog"
	"time"

	"marketsync/contract"
	"marketsync/domain"
)

type IReadStateService interface {
	MarkAsRead(ctx context.Context, messageID string)
	MarkConversationAsRead(ctx context.Context, conversationID string)
	MarkNotificationAsRead(ctx context.Context, notificationID string)
	MarkAllNotificationsAsRead(ctx context.Context)
}

// ReadStateService issues conditional read-marking updates. It never touches
// local projections: the resulting realtime update is the only path by which a
// view sees the read transition. Failures are logged and not retried.
type ReadStateService struct {
	log    *slog.Logger
	query  contract.Query
	viewer domain.Viewer
	now    func() time.Time
}

func NewReadStateService(log *slog.Logger, query contract.Query, viewer domain.Viewer) *ReadStateService {
	return &ReadStateService{log: log, query: query, viewer: viewer, now: time.Now}
}

// MarkAsRead sets read_at on one message, only if it is still unset.
// Calling it again on a read message matches no row.
func (s *ReadStateService) MarkAsRead(ctx context.Context, messageID string) {
	filter := contract.Where(
		contract.Eq("id", messageID),
		contract.IsNull("read_at"),
	)
	s.update(ctx, domain.MessagesTable, filter, s.readAt(), "message_id", messageID)
}

// MarkConversationAsRead sets read_at on every unread message of the
// conversation that the viewer did not send.
func (s *ReadStateService) MarkConversationAsRead(ctx context.Context, conversationID string) {
	filter := contract.Where(
		contract.Eq("conversation_id", conversationID),
		contract.Neq("sender_id", s.viewer.UserID),
		contract.IsNull("read_at"),
	)
	s.update(ctx, domain.MessagesTable, filter, s.readAt(), "conversation_id", conversationID)
}

func (s *ReadStateService) MarkNotificationAsRead(ctx context.Context, notificationID string) {
	filter := contract.Where(
		contract.Eq("id", notificationID),
		contract.Eq("read", false),
	)
	s.update(ctx, domain.NotificationsTable, filter, contract.Record{"read": true}, "notification_id", notificationID)
}

func (s *ReadStateService) MarkAllNotificationsAsRead(ctx context.Context) {
	filter := contract.Where(
		contract.Eq("user_id", s.viewer.UserID),
		contract.Eq("read", false),
	)
	s.update(ctx, domain.NotificationsTable, filter, contract.Record{"read": true}, "user_id", s.viewer.UserID)
}

func (s *ReadStateService) readAt() contract.Record {
	return contract.Record{"read_at": contract.FormatTime(s.now())}
}

func (s *ReadStateService) update(ctx context.Context, table string, filter contract.Filter, patch contract.Record, args ...any) {
	if err := s.query.Update(ctx, table, filter, patch); err != nil {
		s.log.Warn("Read marking failed", append(args, "table", table, "error", err)...)
	}
}
