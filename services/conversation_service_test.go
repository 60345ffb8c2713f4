package services

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"marketsync/contract"
	"marketsync/domain"
	"marketsync/errors"
	"marketsync/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
)

type fakeMasker struct{}

func (fakeMasker) Mask(content string) (string, []string) {
	return strings.ReplaceAll(content, "whatsapp", "********"), []string{"whatsapp"}
}

type conversationFixture struct {
	query   *mocks.MockQuery
	toaster *mocks.MockToaster
	plans   *PlanService
	svc     *ConversationService
}

func newConversationFixture(t *testing.T, viewer domain.Viewer) conversationFixture {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	query := mocks.NewMockQuery(ctrl)
	toaster := mocks.NewMockToaster(ctrl)
	plans := NewPlanService(log, query, mocks.NewMockFunctionInvoker(ctrl))
	notifier := NewNotificationService(log, query)
	svc := NewConversationService(log, viewer, query, notifier, plans, fakeMasker{}, toaster)
	return conversationFixture{query: query, toaster: toaster, plans: plans, svc: svc}
}

var conversation = domain.Conversation{ID: "c1", ClientID: "alice", ProfessionalID: "pro"}

func TestConversationService_CreateConversation_IsIdempotent(t *testing.T) {
	req := require.New(t)
	alice := domain.Viewer{UserID: "alice", Role: domain.RoleClient}
	f := newConversationFixture(t, alice)
	row := contract.Record{"id": "c1", "client_id": "alice", "professional_id": "pro",
		"created_at": contract.FormatTime(time.Now())}
	pair := contract.Where(contract.Eq("client_id", "alice"), contract.Eq("professional_id", "pro"))

	// Given no conversation on the first lookup and the created one on the second
	gomock.InOrder(
		f.query.EXPECT().Select(gomock.Any(), domain.ConversationsTable, pair, gomock.Any()).Return(nil, nil),
		f.query.EXPECT().Insert(gomock.Any(), domain.ConversationsTable, gomock.Any()).Return(row, nil),
		f.query.EXPECT().Select(gomock.Any(), domain.ConversationsTable, pair, gomock.Any()).Return([]contract.Record{row}, nil),
	)

	// When the conversation is created twice for the same pair
	first, err := f.svc.CreateConversation(context.Background(), "alice", "pro", nil)
	req.NoError(err)
	second, err := f.svc.CreateConversation(context.Background(), "alice", "pro", nil)
	req.NoError(err)

	// Then both calls return the same identifier and only one insert happened
	req.Equal("c1", first.ID)
	req.Equal(first.ID, second.ID)
}

func TestConversationService_CreateConversation_FromPartnershipNotifies(t *testing.T) {
	req := require.New(t)
	alice := domain.Viewer{UserID: "alice", Role: domain.RoleClient}
	f := newConversationFixture(t, alice)
	partnership := "p9"
	var notification contract.Record

	f.query.EXPECT().Select(gomock.Any(), domain.ConversationsTable, gomock.Any(), gomock.Any()).Return(nil, nil)
	f.query.EXPECT().Insert(gomock.Any(), domain.ConversationsTable, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, r contract.Record) (contract.Record, error) {
			return r.Merge(contract.Record{"id": "c2"}), nil
		})
	f.query.EXPECT().Insert(gomock.Any(), domain.NotificationsTable, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, r contract.Record) (contract.Record, error) {
			notification = r
			return r, nil
		})

	created, err := f.svc.CreateConversation(context.Background(), "alice", "pro", &partnership)

	req.NoError(err)
	req.Equal("p9", *created.PartnershipID)
	req.Equal("pro", notification.String("user_id"))
	req.Equal("partnership", notification.String("type"))
}

func TestConversationService_CreateConversation_InsertFailureToasts(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t, domain.Viewer{UserID: "alice", Role: domain.RoleClient})

	f.query.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	f.query.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.Backend(codes.PermissionDenied, "rls"))
	f.toaster.EXPECT().Error("Erro ao iniciar conversa").Times(1)

	_, err := f.svc.CreateConversation(context.Background(), "alice", "pro", nil)

	req.Equal(codes.PermissionDenied, errors.Code(err))
}

func TestConversationService_SendMessage_EmptyContentNeverLeaves(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t, domain.Viewer{UserID: "alice", Role: domain.RoleClient})

	// Given no query expectation: a remote call would fail the test
	f.toaster.EXPECT().Error(gomock.Any()).Times(1)

	err := f.svc.SendMessage(context.Background(), conversation, "   \n ")

	req.ErrorIs(err, errors.ErrEmptyContent)
}

func TestConversationService_SendMessage_NotifiesCounterpartWithPreview(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t, domain.Viewer{UserID: "alice", Role: domain.RoleClient})
	content := strings.Repeat("a", 60)
	var message, notification contract.Record

	gomock.InOrder(
		f.query.EXPECT().Insert(gomock.Any(), domain.MessagesTable, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, r contract.Record) (contract.Record, error) {
				message = r
				return r.Merge(contract.Record{"id": "m1"}), nil
			}),
		f.query.EXPECT().Insert(gomock.Any(), domain.NotificationsTable, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, r contract.Record) (contract.Record, error) {
				notification = r
				return r, nil
			}),
	)

	// When alice sends a long message with surrounding spaces
	err := f.svc.SendMessage(context.Background(), conversation, "  "+content+"  ")

	// Then the trimmed message is inserted and the professional is notified with a preview
	req.NoError(err)
	req.Equal(content, message.String("content"))
	req.Equal("alice", message.String("sender_id"))
	req.Nil(message["read_at"])
	req.Equal("pro", notification.String("user_id"))
	req.Equal(strings.Repeat("a", 50)+"...", notification.String("message"))
	req.Equal("m1", notification.Map("data")["message_id"])
}

func TestConversationService_SendMessage_InsertFailureToastsWithoutNotification(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t, domain.Viewer{UserID: "alice", Role: domain.RoleClient})

	f.query.EXPECT().Insert(gomock.Any(), domain.MessagesTable, gomock.Any()).
		Return(nil, errors.Backend(codes.Unavailable, "offline")).Times(1)
	f.toaster.EXPECT().Error("Erro ao enviar mensagem").Times(1)

	err := f.svc.SendMessage(context.Background(), conversation, "Hello")

	req.Equal(codes.Unavailable, errors.Code(err))
}

func TestConversationService_SendMessage_FanOutFailureIsSilent(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t, domain.Viewer{UserID: "alice", Role: domain.RoleClient})

	f.query.EXPECT().Insert(gomock.Any(), domain.MessagesTable, gomock.Any()).Return(contract.Record{"id": "m1"}, nil)
	f.query.EXPECT().Insert(gomock.Any(), domain.NotificationsTable, gomock.Any()).
		Return(nil, errors.Backend(codes.Internal, "boom"))

	// The toaster has no expectation: showing anything fails the test
	req.NoError(f.svc.SendMessage(context.Background(), conversation, "Hello"))
}

func TestConversationService_SendMessage_FreeProfessionalIsDenied(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t, domain.Viewer{UserID: "pro", Role: domain.RoleProfessional})

	f.toaster.EXPECT().Error("Seu plano não inclui mensagens").Times(1)

	err := f.svc.SendMessage(context.Background(), conversation, "Hello")

	req.ErrorIs(err, errors.ErrActionNotAllowed)
}

func TestConversationService_SendMessage_MasksContactWithoutWhatsAppPlan(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t, domain.Viewer{UserID: "pro", Role: domain.RoleProfessional})
	f.plans.store("pro", Entitlement{Plan: domain.PlanFor(domain.PlanBasic)})
	var message contract.Record

	f.query.EXPECT().Insert(gomock.Any(), domain.MessagesTable, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, r contract.Record) (contract.Record, error) {
			message = r
			return r.Merge(contract.Record{"id": "m1"}), nil
		})
	f.query.EXPECT().Insert(gomock.Any(), domain.NotificationsTable, gomock.Any()).Return(contract.Record{}, nil)

	req.NoError(f.svc.SendMessage(context.Background(), conversation, "me chama no whatsapp"))
	req.Equal("me chama no ********", message.String("content"))
}

func TestConversationService_SendMessage_NotParticipant(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t, domain.Viewer{UserID: "mallory", Role: domain.RoleClient})
	f.toaster.EXPECT().Error(gomock.Any())

	req.ErrorIs(f.svc.SendMessage(context.Background(), conversation, "Hello"), errors.ErrNotParticipant)
}

func TestConversationService_ListConversations_NewestFirst(t *testing.T) {
	req := require.New(t)
	f := newConversationFixture(t, domain.Viewer{UserID: "alice", Role: domain.RoleClient})
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	f.query.EXPECT().Select(gomock.Any(), domain.ConversationsTable, contract.Where(contract.Eq("client_id", "alice")), nil).
		Return([]contract.Record{
			{"id": "c1", "client_id": "alice", "professional_id": "p1", "created_at": contract.FormatTime(at)},
			{"id": "c2", "client_id": "alice", "professional_id": "p2", "created_at": contract.FormatTime(at.Add(time.Hour))},
		}, nil)
	f.query.EXPECT().Select(gomock.Any(), domain.ConversationsTable, contract.Where(contract.Eq("professional_id", "alice")), nil).
		Return(nil, nil)

	conversations, err := f.svc.ListConversations(context.Background())

	req.NoError(err)
	req.Len(conversations, 2)
	req.Equal("c2", conversations[0].ID)
}
