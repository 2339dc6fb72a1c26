package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

type DashboardUseCase struct {
	uc *UseCases
}

// loadReportSet fetches every report type concurrently into one snapshot
func (uc *UseCases) loadReportSet(ctx context.Context) (model.ReportSet, error) {
	reportTypes := types.AllReportTypes()
	results := make([][]*model.Report, len(reportTypes))

	eg, ctx := errgroup.WithContext(ctx)
	for i, rt := range reportTypes {
		eg.Go(func() error {
			reports, err := uc.repo.Report().List(ctx, model.ReportFilter{Type: rt})
			if err != nil {
				return goerr.Wrap(err, "failed to load reports", goerr.V(model.ReportTypeKey, rt))
			}
			results[i] = reports
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	set := make(model.ReportSet, len(reportTypes))
	for i, rt := range reportTypes {
		set[rt] = results[i]
	}
	return set, nil
}

// Summary computes the full dashboard as of ref
func (d *DashboardUseCase) Summary(ctx context.Context, ref time.Time) (*model.DashboardSummary, error) {
	set, err := d.uc.loadReportSet(ctx)
	if err != nil {
		return nil, err
	}

	summary := model.Summarize(set, d.uc.policy, ref)
	if inv := summary.Investigations; inv.Unclassified > 0 {
		logging.From(ctx).Warn("reports with statuses outside the open and closed sets",
			"count", inv.Unclassified,
			"statuses", inv.UnclassifiedStatuses)
	}
	return summary, nil
}

// Recent returns the newest reports across all types
func (d *DashboardUseCase) Recent(ctx context.Context, limit int) ([]*model.Report, error) {
	set, err := d.uc.loadReportSet(ctx)
	if err != nil {
		return nil, err
	}
	return model.RecentReports(set, limit), nil
}

// SLAAlerts evaluates the open hazard reports as of ref
func (d *DashboardUseCase) SLAAlerts(ctx context.Context, ref time.Time) (*model.SLASummary, error) {
	hazards, err := d.uc.repo.Report().List(ctx, model.ReportFilter{Type: types.ReportTypeHazard})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load hazard reports")
	}
	summary := model.SLAAlerts(model.ReportSet{types.ReportTypeHazard: hazards}, d.uc.policy, ref)
	return &summary, nil
}
