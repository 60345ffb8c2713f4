package domain

import (
	"fmt"
	"time"

	"marketsync/contract"
	"marketsync/errors"
)

const (
	ApplicationsTable = "applications"
	ProjectsTable     = "projects"
	ServicesTable     = "services"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Project is a client's request for environmental consulting.
type Project struct {
	ID       string
	ClientID string
	Title    string
	Status   string
}

// Application is a professional's proposal for a project.
type Application struct {
	ID             string
	ProjectID      string
	ProfessionalID string
	Proposal       string
	Status         ApplicationStatus
	CreatedAt      time.Time
}

func ProjectFromRecord(r contract.Record) (Project, error) {
	if r.String("id") == "" {
		return Project{}, fmt.Errorf("%w: project without id", errors.ErrInvalidRecord)
	}
	return Project{
		ID:       r.String("id"),
		ClientID: r.String("client_id"),
		Title:    r.String("title"),
		Status:   r.String("status"),
	}, nil
}

func ApplicationFromRecord(r contract.Record) (Application, error) {
	if r.String("id") == "" {
		return Application{}, fmt.Errorf("%w: application without id", errors.ErrInvalidRecord)
	}
	return Application{
		ID:             r.String("id"),
		ProjectID:      r.String("project_id"),
		ProfessionalID: r.String("professional_id"),
		Proposal:       r.String("proposal"),
		Status:         ApplicationStatus(r.String("status")),
		CreatedAt:      r.Time("created_at"),
	}, nil
}
