package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// NotificationRequest is what the fan-out needs before issuing a remote insert.
type NotificationRequest struct {
	RecipientID string `validate:"required"`
	Type        string `validate:"required,oneof=message application project_update partnership"`
	Title       string `validate:"required,max=200"`
	Message     string `validate:"max=500"`
}

type ConversationRequest struct {
	ClientID       string `validate:"required"`
	ProfessionalID string `validate:"required,nefield=ClientID"`
}

type ApplicationRequest struct {
	ProjectID string `validate:"required"`
	Proposal  string `validate:"required,min=10,max=5000"`
}

type ServiceRequest struct {
	Title       string  `validate:"required,max=200"`
	CategoryID  string  `validate:"required"`
	Description string  `validate:"max=5000"`
	Price       float64 `validate:"gte=0"`
}

func ValidateNotification(req NotificationRequest) error {
	return validate.Struct(req)
}

func ValidateConversation(req ConversationRequest) error {
	return validate.Struct(req)
}

func ValidateApplication(req ApplicationRequest) error {
	return validate.Struct(req)
}

func ValidateService(req ServiceRequest) error {
	return validate.Struct(req)
}
