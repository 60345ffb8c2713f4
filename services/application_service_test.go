package services

import (
	"context"
	"log/slog"
	"testing"

	"marketsync/contract"
	"marketsync/domain"
	"marketsync/errors"
	"marketsync/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const proposal = "Licenciamento ambiental completo em 30 dias"

func TestApplicationService_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	viewer := domain.Viewer{UserID: "pro", Role: domain.RoleProfessional}

	t.Run("should deny a free professional without any remote call", func(t *testing.T) {
		req := require.New(t)
		query := mocks.NewMockQuery(ctrl)
		toaster := mocks.NewMockToaster(ctrl)
		plans := NewPlanService(log, query, mocks.NewMockFunctionInvoker(ctrl))
		svc := NewApplicationService(log, viewer, query, NewNotificationService(log, query), plans, toaster)

		// Query and functions have no expectation: any call fails the test
		toaster.EXPECT().Error("Seu plano não permite enviar candidaturas").Times(1)

		_, err := svc.Apply(context.Background(), "proj-1", proposal)

		req.ErrorIs(err, errors.ErrActionNotAllowed)
	})

	t.Run("should insert and notify the project owner on a paid plan", func(t *testing.T) {
		req := require.New(t)
		query := mocks.NewMockQuery(ctrl)
		toaster := mocks.NewMockToaster(ctrl)
		plans := NewPlanService(log, query, mocks.NewMockFunctionInvoker(ctrl))
		plans.store("pro", Entitlement{Plan: domain.PlanFor(domain.PlanBasic), Usage: domain.Usage{Applications: 9}})
		svc := NewApplicationService(log, viewer, query, NewNotificationService(log, query), plans, toaster)
		var notification contract.Record

		gomock.InOrder(
			query.EXPECT().Select(gomock.Any(), domain.ProjectsTable, contract.Where(contract.Eq("id", "proj-1")), nil).
				Return([]contract.Record{{"id": "proj-1", "client_id": "alice", "title": "Inventário de resíduos"}}, nil),
			query.EXPECT().Insert(gomock.Any(), domain.ApplicationsTable, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, r contract.Record) (contract.Record, error) {
					return r.Merge(contract.Record{"id": "app-1"}), nil
				}),
			query.EXPECT().Insert(gomock.Any(), domain.NotificationsTable, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, r contract.Record) (contract.Record, error) {
					notification = r
					return r, nil
				}),
		)
		toaster.EXPECT().Success(gomock.Any())

		application, err := svc.Apply(context.Background(), "proj-1", proposal)

		req.NoError(err)
		req.Equal("app-1", application.ID)
		req.Equal(domain.ApplicationPending, application.Status)
		req.Equal("alice", notification.String("user_id"))
		req.Equal("application", notification.String("type"))
		// The tenth application used the last slot of the basic plan
		req.False(plans.CanPerformAction("pro", domain.ActionApply))
	})

	t.Run("should reject a short proposal before gating", func(t *testing.T) {
		req := require.New(t)
		toaster := mocks.NewMockToaster(ctrl)
		query := mocks.NewMockQuery(ctrl)
		svc := NewApplicationService(log, viewer, query, NewNotificationService(log, query),
			NewPlanService(log, query, nil), toaster)
		toaster.EXPECT().Error("Proposta inválida")

		_, err := svc.Apply(context.Background(), "proj-1", "oi")

		req.Error(err)
	})
}

func TestApplicationService_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	query := mocks.NewMockQuery(ctrl)
	toaster := mocks.NewMockToaster(ctrl)
	alice := domain.Viewer{UserID: "alice", Role: domain.RoleClient}
	svc := NewApplicationService(log, alice, query, NewNotificationService(log, query), NewPlanService(log, query, nil), toaster)
	byID := contract.Where(contract.Eq("id", "app-1"))
	var notification contract.Record

	gomock.InOrder(
		query.EXPECT().Select(gomock.Any(), domain.ApplicationsTable, byID, nil).
			Return([]contract.Record{{"id": "app-1", "project_id": "proj-1", "professional_id": "pro", "status": "pending"}}, nil),
		query.EXPECT().Update(gomock.Any(), domain.ApplicationsTable, byID, contract.Record{"status": "accepted"}).Return(nil),
		query.EXPECT().Insert(gomock.Any(), domain.NotificationsTable, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, r contract.Record) (contract.Record, error) {
				notification = r
				return r, nil
			}),
	)

	req.NoError(svc.UpdateStatus(context.Background(), "app-1", domain.ApplicationAccepted))
	req.Equal("pro", notification.String("user_id"))
	req.Equal("project_update", notification.String("type"))
	req.Equal("Sua candidatura foi aceita", notification.String("message"))

	query.EXPECT().Select(gomock.Any(), domain.ApplicationsTable, gomock.Any(), nil).Return(nil, nil)
	toaster.EXPECT().Error("Candidatura não encontrada")
	err := svc.UpdateStatus(context.Background(), "ghost", domain.ApplicationRejected)
	req.True(errors.IsNotFound(err))
}
