package services

import (
	"context"
	"log/slog"

	"marketsync/auth"
	"marketsync/contract"
	"marketsync/domain"
	"marketsync/errors"

	"google.golang.org/grpc/codes"
)

type IApplicationService interface {
	Apply(ctx context.Context, projectID, proposal string) (domain.Application, error)
	UpdateStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus) error
}

type ApplicationService struct {
	log      *slog.Logger
	viewer   domain.Viewer
	query    contract.Query
	notifier INotificationService
	plans    *PlanService
	toaster  contract.Toaster
}

func NewApplicationService(log *slog.Logger, viewer domain.Viewer, query contract.Query, notifier INotificationService,
	plans *PlanService, toaster contract.Toaster) *ApplicationService {
	return &ApplicationService{log: log, viewer: viewer, query: query, notifier: notifier, plans: plans, toaster: toaster}
}

// Apply sends the viewer's proposal for a project. The plan is checked
// against cached entitlements before any remote call.
func (s *ApplicationService) Apply(ctx context.Context, projectID, proposal string) (domain.Application, error) {
	if err := auth.ValidateApplication(auth.ApplicationRequest{ProjectID: projectID, Proposal: proposal}); err != nil {
		s.toaster.Error("Proposta inválida")
		return domain.Application{}, err
	}
	if err := s.plans.Require(s.viewer.UserID, domain.ActionApply); err != nil {
		s.toaster.Error("Seu plano não permite enviar candidaturas")
		return domain.Application{}, err
	}

	project, err := s.project(ctx, projectID)
	if err != nil {
		s.toaster.Error("Projeto não encontrado")
		return domain.Application{}, err
	}

	inserted, err := s.query.Insert(ctx, domain.ApplicationsTable, contract.Record{
		"project_id":      projectID,
		"professional_id": s.viewer.UserID,
		"proposal":        proposal,
		"status":          string(domain.ApplicationPending),
	})
	if err != nil {
		s.log.Error("Application insert failed", "project_id", projectID, "error", err)
		s.toaster.Error("Erro ao enviar candidatura")
		return domain.Application{}, err
	}
	application, err := domain.ApplicationFromRecord(inserted)
	if err != nil {
		return domain.Application{}, err
	}
	s.plans.RecordUsage(s.viewer.UserID, domain.ActionApply)
	s.toaster.Success("Candidatura enviada")

	s.notifier.CreateNotification(ctx, project.ClientID, domain.NotificationApplication,
		"Nova candidatura", "Seu projeto \""+domain.Preview(project.Title, domain.PreviewLength)+"\" recebeu uma candidatura",
		map[string]any{"project_id": project.ID, "application_id": application.ID})
	return application, nil
}

// UpdateStatus accepts or rejects an application and tells the professional.
func (s *ApplicationService) UpdateStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus) error {
	rows, err := s.query.Select(ctx, domain.ApplicationsTable, contract.Where(contract.Eq("id", applicationID)), nil)
	if err == nil && len(rows) == 0 {
		err = errors.Backend(codes.NotFound, "application %s not found", applicationID)
	}
	if err != nil {
		s.toaster.Error("Candidatura não encontrada")
		return err
	}
	application, err := domain.ApplicationFromRecord(rows[0])
	if err != nil {
		return err
	}

	if err := s.query.Update(ctx, domain.ApplicationsTable, contract.Where(contract.Eq("id", applicationID)),
		contract.Record{"status": string(status)}); err != nil {
		s.log.Error("Application update failed", "application_id", applicationID, "error", err)
		s.toaster.Error("Erro ao atualizar candidatura")
		return err
	}

	s.notifier.CreateNotification(ctx, application.ProfessionalID, domain.NotificationProjectUpdate,
		"Candidatura atualizada", "Sua candidatura foi "+statusLabel(status),
		map[string]any{"project_id": application.ProjectID, "application_id": application.ID, "status": string(status)})
	return nil
}

func (s *ApplicationService) project(ctx context.Context, projectID string) (domain.Project, error) {
	rows, err := s.query.Select(ctx, domain.ProjectsTable, contract.Where(contract.Eq("id", projectID)), nil)
	if err != nil {
		return domain.Project{}, err
	}
	if len(rows) == 0 {
		return domain.Project{}, errors.Backend(codes.NotFound, "project %s not found", projectID)
	}
	return domain.ProjectFromRecord(rows[0])
}

func statusLabel(status domain.ApplicationStatus) string {
	switch status {
	case domain.ApplicationAccepted:
		return "aceita"
	case domain.ApplicationRejected:
		return "recusada"
	default:
		return "atualizada"
	}
}
