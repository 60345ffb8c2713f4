package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"marketsync/contract"
	"marketsync/domain"
	"marketsync/services"
)

// Report summarizes one import.
type Report struct {
	Imported     int
	Invalid      []RowError
	OverLimit    int
	InsertFailed int
}

type Importer struct {
	log     *slog.Logger
	viewer  domain.Viewer
	query   contract.Query
	plans   *services.PlanService
	toaster contract.Toaster
}

func NewImporter(log *slog.Logger, viewer domain.Viewer, query contract.Query, plans *services.PlanService,
	toaster contract.Toaster) *Importer {
	return &Importer{log: log, viewer: viewer, query: query, plans: plans, toaster: toaster}
}

// Import inserts the services of the CSV for the viewer, stopping at the
// plan's service limit. Rows past the limit are counted, not inserted.
func (i *Importer) Import(ctx context.Context, r io.Reader) (Report, error) {
	r, detected, err := sniff(r)
	if err != nil {
		i.log.Warn("Catalog file refused", "mime", detected, "error", err)
		i.toaster.Error("O arquivo precisa ser um CSV")
		return Report{}, err
	}
	records, invalid, err := ParseServices(r)
	if err != nil {
		i.toaster.Error("Arquivo CSV inválido")
		return Report{}, err
	}
	report := Report{Invalid: invalid}

	for n, record := range records {
		if !i.plans.CanPerformAction(i.viewer.UserID, domain.ActionCreateService) {
			report.OverLimit = len(records) - n
			i.log.Info("Service limit reached", "professional_id", i.viewer.UserID, "remaining", report.OverLimit)
			break
		}
		_, err := i.query.Insert(ctx, domain.ServicesTable, contract.Record{
			"professional_id": i.viewer.UserID,
			"title":           record.Title,
			"category_id":     record.CategoryID,
			"category":        record.Category,
			"description":     record.Description,
			"price":           record.Price,
		})
		if err != nil {
			i.log.Warn("Service insert failed", "line", record.Line, "error", err)
			report.InsertFailed++
			continue
		}
		i.plans.RecordUsage(i.viewer.UserID, domain.ActionCreateService)
		report.Imported++
	}

	i.toaster.Success(fmt.Sprintf("%d serviço(s) importado(s)", report.Imported))
	if report.OverLimit > 0 {
		i.toaster.Error(fmt.Sprintf("Limite do plano atingido: %d serviço(s) não importado(s)", report.OverLimit))
	}
	return report, nil
}
