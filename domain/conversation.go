package domain

import (
	"fmt"
	"time"

	"marketsync/contract"
	"marketsync/errors"
)

const ConversationsTable = "conversations"

// Conversation links one client with one professional.
// The backend keeps at most one conversation per (client, professional) pair.
type Conversation struct {
	ID             string
	ClientID       string
	ProfessionalID string
	PartnershipID  *string
	CreatedAt      time.Time
}

func (c Conversation) GetID() string { return c.ID }

func (c Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.ClientID == userID || c.ProfessionalID == userID)
}

// Counterpart returns the other participant: the client for the professional and vice versa.
func (c Conversation) Counterpart(userID string) (string, error) {
	switch userID {
	case c.ClientID:
		return c.ProfessionalID, nil
	case c.ProfessionalID:
		return c.ClientID, nil
	default:
		return "", fmt.Errorf("%w: %s in %s", errors.ErrNotParticipant, userID, c.ID)
	}
}

func ConversationFromRecord(r contract.Record) (Conversation, error) {
	if r.String("id") == "" {
		return Conversation{}, fmt.Errorf("%w: conversation without id", errors.ErrInvalidRecord)
	}
	return Conversation{
		ID:             r.String("id"),
		ClientID:       r.String("client_id"),
		ProfessionalID: r.String("professional_id"),
		PartnershipID:  r.OptionalString("partnership_id"),
		CreatedAt:      r.Time("created_at"),
	}, nil
}

// ToRecord omits id and created_at when unset so the backend assigns them.
func (c Conversation) ToRecord() contract.Record {
	record := contract.Record{
		"client_id":       c.ClientID,
		"professional_id": c.ProfessionalID,
		"partnership_id":  nil,
	}
	if c.PartnershipID != nil {
		record["partnership_id"] = *c.PartnershipID
	}
	if c.ID != "" {
		record["id"] = c.ID
	}
	if !c.CreatedAt.IsZero() {
		record["created_at"] = contract.FormatTime(c.CreatedAt)
	}
	return record
}
