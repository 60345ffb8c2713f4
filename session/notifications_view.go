package session

import (
	"context"
	"log/slog"
	"sync"

	"marketsync/contract"
	"marketsync/domain"
	"marketsync/projection"
	"marketsync/realtime"
	"marketsync/services"

	"github.com/samber/lo"
)

// NotificationsView is the viewer's notification inbox.
type NotificationsView struct {
	log       *slog.Logger
	viewer    domain.Viewer
	query     contract.Query
	manager   *realtime.Manager
	readState services.IReadStateService
	inbox     *projection.Inbox

	mu             sync.Mutex
	onNotification func(domain.Notification)
}

func NewNotificationsView(log *slog.Logger, viewer domain.Viewer, query contract.Query, channels contract.IChannelRegistry,
	readState services.IReadStateService) *NotificationsView {
	return &NotificationsView{
		log:       log,
		viewer:    viewer,
		query:     query,
		manager:   realtime.NewManager(log, channels),
		readState: readState,
		inbox:     projection.NewInbox(log),
	}
}

// OnNotification registers a callback for every notification arriving live.
func (v *NotificationsView) OnNotification(fn func(domain.Notification)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onNotification = fn
}

func (v *NotificationsView) Open(ctx context.Context) {
	scope := realtime.Scope{
		Name:       "notifications",
		Table:      domain.NotificationsTable,
		Column:     "user_id",
		Value:      v.viewer.UserID,
		ReadColumn: "read",
	}
	v.manager.Mount(ctx, scope, realtime.Handlers{
		Refresh: v.refresh,
		OnInsert: func(record contract.Record) {
			if !v.inbox.ApplyInsert(record) {
				return
			}
			if n, err := domain.NotificationFromRecord(record); err == nil {
				v.notify(n)
			}
		},
		OnUpdate: func(record contract.Record) {
			v.inbox.ApplyUpdate(record)
		},
	})
}

func (v *NotificationsView) refresh(ctx context.Context) error {
	rows, err := v.query.Select(ctx, domain.NotificationsTable,
		contract.Where(contract.Eq("user_id", v.viewer.UserID)), contract.Asc("created_at"))
	if err != nil {
		return err
	}
	v.inbox.Merge(lo.FilterMap(rows, func(r contract.Record, _ int) (domain.Notification, bool) {
		n, err := domain.NotificationFromRecord(r)
		return n, err == nil
	}))
	return nil
}

// MarkAsRead does not touch the inbox; the realtime update does.
func (v *NotificationsView) MarkAsRead(ctx context.Context, notificationID string) {
	v.readState.MarkNotificationAsRead(ctx, notificationID)
}

func (v *NotificationsView) MarkAllAsRead(ctx context.Context) {
	v.readState.MarkAllNotificationsAsRead(ctx)
}

func (v *NotificationsView) Close(ctx context.Context) {
	v.manager.Unmount(ctx)
}

// Notifications returns the inbox, newest first.
func (v *NotificationsView) Notifications() []domain.Notification {
	return lo.Reverse(v.inbox.Items())
}

func (v *NotificationsView) Unread() int {
	return v.inbox.Unread()
}

func (v *NotificationsView) notify(n domain.Notification) {
	v.mu.Lock()
	fn := v.onNotification
	v.mu.Unlock()
	if fn != nil {
		fn(n)
	}
}
