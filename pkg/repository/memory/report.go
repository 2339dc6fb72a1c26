package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
)

type reportRepository struct {
	mu      sync.RWMutex
	reports map[model.ReportNumber]*model.Report
}

func newReportRepository() *reportRepository {
	return &reportRepository{
		reports: make(map[model.ReportNumber]*model.Report),
	}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) (*model.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reports[report.Number]; exists {
		return nil, goerr.Wrap(interfaces.ErrDuplicateReportNumber, "report number already exists",
			goerr.V(model.ReportNumberKey, report.Number))
	}

	created := report.Clone()
	if created.ID == "" {
		created.ID = model.NewReportID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.UpdatedAt = created.CreatedAt
	created.Status = created.Status.Normalize()

	r.reports[created.Number] = created
	return created.Clone(), nil
}

func (r *reportRepository) Get(ctx context.Context, number model.ReportNumber) (*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, exists := r.reports[number]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrReportNotFound, "report not found",
			goerr.V(model.ReportNumberKey, number))
	}

	// Return a copy to prevent external modification
	return report.Clone(), nil
}

func (r *reportRepository) List(ctx context.Context, filter model.ReportFilter) ([]*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reports := make([]*model.Report, 0, len(r.reports))
	for _, report := range r.reports {
		if filter.Match(report) {
			reports = append(reports, report.Clone())
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].Number > reports[j].Number
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	if filter.Limit > 0 && len(reports) > filter.Limit {
		reports = reports[:filter.Limit]
	}
	return reports, nil
}

func (r *reportRepository) Update(ctx context.Context, report *model.Report) (*model.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.reports[report.Number]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrReportNotFound, "report not found",
			goerr.V(model.ReportNumberKey, report.Number))
	}

	updated := report.Clone()
	updated.ID = existing.ID
	updated.Type = existing.Type
	updated.CreatedAt = existing.CreatedAt
	updated.Likelihood = existing.Likelihood
	updated.Severity = existing.Severity
	updated.RiskLevel = existing.RiskLevel
	updated.UpdatedAt = time.Now().UTC()

	r.reports[updated.Number] = updated
	return updated.Clone(), nil
}
