package projection

import (
	"log/slog"

	"marketsync/domain"
)

var MessageCodec = Codec[domain.Message]{
	Decode: domain.MessageFromRecord,
	Encode: domain.Message.ToRecord,
}

var NotificationCodec = Codec[domain.Notification]{
	Decode: domain.NotificationFromRecord,
	Encode: domain.Notification.ToRecord,
}

// Timeline holds the messages of the conversation a viewer has open.
type Timeline struct {
	*Projection[domain.Message]
	Owner string
}

func NewTimeline(log *slog.Logger, owner string) *Timeline {
	return &Timeline{Projection: New(log, MessageCodec), Owner: owner}
}

// Unread counts messages from the other participant that are not read yet.
func (t *Timeline) Unread() int {
	return t.Count(func(m domain.Message) bool { return m.UnreadFor(t.Owner) })
}

// Inbox holds the notifications of one user.
type Inbox struct {
	*Projection[domain.Notification]
}

func NewInbox(log *slog.Logger) *Inbox {
	return &Inbox{Projection: New(log, NotificationCodec)}
}

func (i *Inbox) Unread() int {
	return i.Count(func(n domain.Notification) bool { return !n.Read })
}
