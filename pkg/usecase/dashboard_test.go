package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/secmon-lab/avsafe/pkg/repository/memory"
	"github.com/secmon-lab/avsafe/pkg/usecase"
)

// seedReports stores reports directly so creation dates can be backdated
func seedReports(t *testing.T, repo interfaces.Repository) {
	t.Helper()
	ctx := context.Background()

	reports := []*model.Report{
		{Type: types.ReportTypeHazard, RiskLevel: types.RiskLevelHigh, Status: types.InvestigationStatusOpen,
			Department: "Engineering", CreatedAt: today.AddDate(0, 0, -20)},
		{Type: types.ReportTypeHazard, RiskLevel: types.RiskLevelLow, Status: types.InvestigationStatusSubmitted,
			CreatedAt: today.AddDate(0, 0, -13)},
		{Type: types.ReportTypeHazard, RiskLevel: types.RiskLevelMedium, Status: types.InvestigationStatusClosed,
			Department: "Engineering", CreatedAt: today.AddDate(0, 0, -40)},
		{Type: types.ReportTypeAircraftIncident, RiskLevel: types.RiskLevelExtreme, Status: types.InvestigationStatusPendingReview,
			CreatedAt: today.AddDate(0, 0, -1)},
		{Type: types.ReportTypeBirdStrike, RiskLevel: types.RiskLevelHigh, Status: types.InvestigationStatusSubmitted,
			CreatedAt: today.AddDate(0, 0, -6)},
		{Type: types.ReportTypeCaptainDebrief, RiskLevel: types.RiskLevelLow, Status: types.InvestigationStatusDraft,
			CreatedAt: today},
	}
	for _, r := range reports {
		r.Number = model.NewReportNumber(r.Type, r.Department, r.CreatedAt)
		_, err := repo.Report().Create(ctx, r)
		gt.NoError(t, err).Required()
	}
}

func TestDashboardUseCase_Summary(t *testing.T) {
	repo := memory.New()
	seedReports(t, repo)
	uc := usecase.New(repo)

	summary, err := uc.Dashboard.Summary(context.Background(), today)
	gt.NoError(t, err).Required()

	gt.Value(t, summary.Total).Equal(6)
	gt.Value(t, summary.CountsByType[types.ReportTypeHazard]).Equal(3)
	gt.Value(t, summary.CountsByType[types.ReportTypeTCAS]).Equal(0)
	gt.Value(t, summary.HighRiskCount).Equal(2)
	gt.Value(t, summary.RiskDistribution[types.RiskLevelExtreme]).Equal(1)
	gt.Value(t, summary.Investigations.Open).Equal(4)
	gt.Value(t, summary.Investigations.Closed).Equal(1)
	gt.Value(t, summary.Investigations.Unclassified).Equal(1)
	gt.Value(t, summary.DepartmentBreakdown["Engineering"]).Equal(2)
	gt.Value(t, summary.DepartmentBreakdown[model.UnknownDepartment]).Equal(1)
	gt.Value(t, summary.SLA.Counts[types.SLABucketOverdue]).Equal(1)
	gt.Value(t, summary.SLA.Counts[types.SLABucketCritical]).Equal(1)
	gt.Array(t, summary.Recent).Length(6)
	gt.Value(t, summary.Recent[0].Type).Equal(types.ReportTypeCaptainDebrief)
}

func TestDashboardUseCase_Recent(t *testing.T) {
	repo := memory.New()
	seedReports(t, repo)
	uc := usecase.New(repo)

	recent, err := uc.Dashboard.Recent(context.Background(), 2)
	gt.NoError(t, err).Required()
	gt.Array(t, recent).Length(2)
	gt.Value(t, recent[0].Type).Equal(types.ReportTypeCaptainDebrief)
	gt.Value(t, recent[1].Type).Equal(types.ReportTypeAircraftIncident)
}

func TestDashboardUseCase_SLAAlerts(t *testing.T) {
	repo := memory.New()
	seedReports(t, repo)
	uc := usecase.New(repo)

	alerts, err := uc.Dashboard.SLAAlerts(context.Background(), today)
	gt.NoError(t, err).Required()
	gt.Array(t, alerts.Alerts).Length(2)
	gt.Value(t, alerts.Alerts[0].SLA.DaysRemaining).Equal(-5)
	gt.Value(t, alerts.Alerts[0].Department).Equal("Engineering")
}

func TestDashboardUseCase_Empty(t *testing.T) {
	uc := usecase.New(memory.New())
	summary, err := uc.Dashboard.Summary(context.Background(), today)
	gt.NoError(t, err).Required()
	gt.Value(t, summary.Total).Equal(0)
	gt.Array(t, summary.SLA.Alerts).Length(0)
}
