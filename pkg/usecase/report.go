package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/secmon-lab/avsafe/pkg/utils/async"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
)

// maxNumberAttempts bounds retries when a generated number is already taken
const maxNumberAttempts = 5

type ReportUseCase struct {
	uc *UseCases
}

// Submit validates a form, classifies its risk and stores it under a new
// report number. High and Extreme reports are announced on Slack in the
// background.
func (r *ReportUseCase) Submit(ctx context.Context, input *model.Submission) (*model.Report, error) {
	v, err := r.uc.validator.Validate(input)
	if err != nil {
		return nil, err
	}

	now := r.uc.now().UTC()
	report := &model.Report{
		ID:            model.NewReportID(),
		Type:          v.ReportType,
		CreatedAt:     now,
		Likelihood:    v.Likelihood,
		Severity:      v.Severity,
		RiskLevel:     types.Classify(v.Likelihood, v.Severity),
		Status:        types.InvestigationStatusSubmitted,
		Department:    v.Input.Department,
		Title:         v.Input.Title,
		Narrative:     v.Input.Narrative,
		ReporterName:  v.Input.ReporterName,
		ReporterEmail: v.Input.ReporterEmail,
		FlightNumber:  v.Input.FlightNumber,
		AircraftReg:   v.Input.AircraftReg,
		EventDate:     v.EventDate,
		Location:      v.Location,
		Details:       v.Input.Details.Clone(),
	}

	created, err := r.create(ctx, report)
	if err != nil {
		return nil, err
	}

	r.uc.metrics.ReportSubmitted(created.Type, created.RiskLevel)
	logging.From(ctx).Info("report submitted",
		"report_number", created.Number,
		"report_type", created.Type,
		"risk_level", created.RiskLevel)

	if created.RiskLevel.IsHigh() && r.uc.slackEnabled() {
		notified := created.Clone()
		async.Dispatch(ctx, func(ctx context.Context) error {
			err := r.uc.notifyHighRisk(ctx, notified)
			r.uc.metrics.Notified(notificationHighRisk, err)
			return err
		})
	}

	return created, nil
}

func (r *ReportUseCase) create(ctx context.Context, report *model.Report) (*model.Report, error) {
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		report.Number = r.uc.newNumber(report.Type, report.Department, report.CreatedAt)

		created, err := r.uc.repo.Report().Create(ctx, report)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, interfaces.ErrDuplicateReportNumber) {
			return nil, goerr.Wrap(err, "failed to store report", goerr.V(model.ReportTypeKey, report.Type))
		}

		r.uc.metrics.NumberCollision()
		logging.From(ctx).Warn("report number collision, retrying",
			"report_number", report.Number, "attempt", attempt)
	}

	return nil, goerr.Wrap(ErrNumberExhausted, "report number collisions exceeded retry limit",
		goerr.V(model.ReportTypeKey, report.Type),
		goerr.V("attempts", maxNumberAttempts))
}

func (r *ReportUseCase) Get(ctx context.Context, number string) (*model.Report, error) {
	n, err := model.ParseReportNumber(number)
	if err != nil {
		return nil, err
	}
	return r.uc.repo.Report().Get(ctx, n)
}

func (r *ReportUseCase) List(ctx context.Context, filter model.ReportFilter) ([]*model.Report, error) {
	return r.uc.repo.Report().List(ctx, filter)
}

// UpdateStatus moves a report along the investigation progression
func (r *ReportUseCase) UpdateStatus(ctx context.Context, number, status string) (*model.Report, error) {
	next, err := types.ParseInvestigationStatus(status)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidStatus, err.Error(), goerr.V(StatusKey, status))
	}

	report, err := r.Get(ctx, number)
	if err != nil {
		return nil, err
	}

	current := report.Status.Normalize()
	if current == next {
		return report, nil
	}
	if !current.CanTransitionTo(next) {
		return nil, goerr.Wrap(ErrInvalidTransition, "status cannot move backwards",
			goerr.V(model.ReportNumberKey, report.Number),
			goerr.V(FromStatusKey, current),
			goerr.V(StatusKey, next))
	}

	report.Status = next
	updated, err := r.uc.repo.Report().Update(ctx, report)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update status", goerr.V(model.ReportNumberKey, report.Number))
	}

	r.uc.metrics.StatusChanged(current, next)
	logging.From(ctx).Info("investigation status changed",
		"report_number", updated.Number, "from", current, "to", next)
	return updated, nil
}

// SLA evaluates a report against the window of its type
func (r *ReportUseCase) SLA(ctx context.Context, number string, ref time.Time) (*model.SLAStatus, error) {
	report, err := r.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	st := r.uc.policy.EvaluateReport(report, ref)
	return &st, nil
}
