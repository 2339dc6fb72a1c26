package interfaces

import (
	"context"

	"github.com/secmon-lab/avsafe/pkg/domain/model"
)

type ReportRepository interface {
	// Create stores a new report. A zero CreatedAt is set to the current
	// time. Returns ErrDuplicateReportNumber if the number is taken.
	Create(ctx context.Context, report *model.Report) (*model.Report, error)

	// Get retrieves a report by its report number
	Get(ctx context.Context, number model.ReportNumber) (*model.Report, error)

	// List retrieves reports matching the filter, newest first
	List(ctx context.Context, filter model.ReportFilter) ([]*model.Report, error)

	// Update overwrites the mutable fields of an existing report. ID, Number,
	// Type, CreatedAt, Likelihood, Severity and RiskLevel are kept from the
	// stored record.
	Update(ctx context.Context, report *model.Report) (*model.Report, error)
}
