package services

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"marketsync/auth"
	"marketsync/contract"
	"marketsync/domain"
	"marketsync/errors"

	"github.com/samber/lo"
)

// ContentMasker hides contact details in a message body.
type ContentMasker interface {
	Mask(content string) (string, []string)
}

type IConversationService interface {
	CreateConversation(ctx context.Context, clientID, professionalID string, partnershipID *string) (domain.Conversation, error)
	SendMessage(ctx context.Context, conversation domain.Conversation, content string) error
	ListConversations(ctx context.Context) ([]domain.Conversation, error)
}

// ConversationService runs the viewer's messaging actions. Failures of actions
// the viewer initiated are shown through the toaster.
type ConversationService struct {
	log      *slog.Logger
	viewer   domain.Viewer
	query    contract.Query
	notifier INotificationService
	plans    *PlanService
	masker   ContentMasker
	toaster  contract.Toaster
}

func NewConversationService(log *slog.Logger, viewer domain.Viewer, query contract.Query, notifier INotificationService,
	plans *PlanService, masker ContentMasker, toaster contract.Toaster) *ConversationService {
	return &ConversationService{
		log:      log,
		viewer:   viewer,
		query:    query,
		notifier: notifier,
		plans:    plans,
		masker:   masker,
		toaster:  toaster,
	}
}

// CreateConversation returns the conversation of the (client, professional) pair,
// creating it only when none exists yet.
func (s *ConversationService) CreateConversation(ctx context.Context, clientID, professionalID string,
	partnershipID *string) (domain.Conversation, error) {
	if err := auth.ValidateConversation(auth.ConversationRequest{ClientID: clientID, ProfessionalID: professionalID}); err != nil {
		s.toaster.Error("Não foi possível iniciar a conversa")
		return domain.Conversation{}, err
	}

	existing, err := s.query.Select(ctx, domain.ConversationsTable, contract.Where(
		contract.Eq("client_id", clientID),
		contract.Eq("professional_id", professionalID),
	), contract.Asc("created_at"))
	if err != nil {
		s.log.Error("Conversation lookup failed", "client_id", clientID, "professional_id", professionalID, "error", err)
		s.toaster.Error("Erro ao iniciar conversa")
		return domain.Conversation{}, err
	}
	if len(existing) > 0 {
		return domain.ConversationFromRecord(existing[0])
	}

	created, err := s.query.Insert(ctx, domain.ConversationsTable, domain.Conversation{
		ClientID:       clientID,
		ProfessionalID: professionalID,
		PartnershipID:  partnershipID,
	}.ToRecord())
	if err != nil {
		s.log.Error("Conversation insert failed", "client_id", clientID, "professional_id", professionalID, "error", err)
		s.toaster.Error("Erro ao iniciar conversa")
		return domain.Conversation{}, err
	}
	conversation, err := domain.ConversationFromRecord(created)
	if err != nil {
		return domain.Conversation{}, err
	}
	s.log.Info("Conversation created", "conversation_id", conversation.ID)

	if partnershipID != nil && conversation.HasParticipant(s.viewer.UserID) {
		s.notifier.NotifyCounterpart(ctx, conversation, s.viewer.UserID, domain.NotificationPartnership,
			"Nova parceria", "Uma conversa foi iniciada a partir de uma parceria",
			map[string]any{"conversation_id": conversation.ID, "partnership_id": *partnershipID})
	}
	return conversation, nil
}

// SendMessage inserts the message and notifies the other participant.
// The message is not appended locally: the sender sees it through the
// realtime echo of the insert, like every other subscriber.
func (s *ConversationService) SendMessage(ctx context.Context, conversation domain.Conversation, content string) error {
	content, err := domain.ValidateContent(content)
	if err != nil {
		s.toaster.Error("Mensagem inválida")
		return err
	}
	if !conversation.HasParticipant(s.viewer.UserID) {
		s.toaster.Error("Você não participa desta conversa")
		return errors.ErrNotParticipant
	}
	if s.viewer.IsProfessional() {
		if err := s.plans.Require(s.viewer.UserID, domain.ActionMessage); err != nil {
			s.toaster.Error("Seu plano não inclui mensagens")
			return err
		}
		if s.masker != nil && !s.plans.CanPerformAction(s.viewer.UserID, domain.ActionShowWhatsApp) {
			masked, found := s.masker.Mask(content)
			if len(found) > 0 {
				s.log.Info("Contact details masked", "conversation_id", conversation.ID, "terms", len(found))
			}
			content = masked
		}
	}

	inserted, err := s.query.Insert(ctx, domain.MessagesTable, contract.Record{
		"conversation_id": conversation.ID,
		"sender_id":       s.viewer.UserID,
		"content":         content,
		"read_at":         nil,
	})
	if err != nil {
		s.log.Error("Message insert failed", "conversation_id", conversation.ID, "error", err)
		s.toaster.Error("Erro ao enviar mensagem")
		return err
	}

	s.notifier.NotifyCounterpart(ctx, conversation, s.viewer.UserID, domain.NotificationMessage,
		"Nova mensagem", domain.Preview(content, domain.PreviewLength),
		map[string]any{"conversation_id": conversation.ID, "message_id": inserted.String("id")})
	return nil
}

// ListConversations returns the viewer's conversations, newest first.
func (s *ConversationService) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	var records []contract.Record
	for _, column := range []string{"client_id", "professional_id"} {
		rows, err := s.query.Select(ctx, domain.ConversationsTable, contract.Where(contract.Eq(column, s.viewer.UserID)), nil)
		if err != nil {
			s.log.Error("Conversation list failed", "user_id", s.viewer.UserID, "error", err)
			return nil, err
		}
		records = append(records, rows...)
	}

	conversations := make([]domain.Conversation, 0, len(records))
	for _, r := range lo.UniqBy(records, func(r contract.Record) string { return r.String("id") }) {
		c, err := domain.ConversationFromRecord(r)
		if err != nil {
			s.log.Warn("Skipping invalid conversation", "error", err)
			continue
		}
		conversations = append(conversations, c)
	}
	slices.SortFunc(conversations, func(a, b domain.Conversation) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return conversations, nil
}
