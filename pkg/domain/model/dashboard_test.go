package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

func newReport(rt types.ReportType, level types.RiskLevel, status types.InvestigationStatus, dept string, createdAt time.Time) *model.Report {
	return &model.Report{
		ID:         model.NewReportID(),
		Number:     model.NewReportNumber(rt, dept, createdAt),
		Type:       rt,
		CreatedAt:  createdAt,
		RiskLevel:  level,
		Status:     status,
		Department: dept,
	}
}

func fixtureSet() model.ReportSet {
	return model.NewReportSet([]*model.Report{
		newReport(types.ReportTypeHazard, types.RiskLevelHigh, types.InvestigationStatusOpen, "Engineering", today.AddDate(0, 0, -20)),
		newReport(types.ReportTypeHazard, "", types.InvestigationStatusUnderInvestigation, "", today.AddDate(0, 0, -13)),
		newReport(types.ReportTypeHazard, types.RiskLevelMedium, types.InvestigationStatusClosed, "Engineering", today.AddDate(0, 0, -40)),
		newReport(types.ReportTypeAircraftIncident, "", types.InvestigationStatusSubmitted, "Flight Operations", today.AddDate(0, 0, -2)),
		newReport(types.ReportTypeAircraftIncident, types.RiskLevelExtreme, types.InvestigationStatusPendingReview, "Flight Operations", today.AddDate(0, 0, -1)),
		newReport(types.ReportTypeBirdStrike, types.RiskLevelExtreme, types.InvestigationStatusOpen, "Flight Operations", today),
		newReport(types.ReportTypeFlightServices, "", "Archived", "Cabin Services", today.AddDate(0, 0, -3)),
		newReport(types.ReportTypeCaptainDebrief, "", types.InvestigationStatusDraft, "", today.AddDate(0, 0, -4)),
	})
}

func TestCountsByType(t *testing.T) {
	counts := model.CountsByType(fixtureSet())
	gt.V(t, counts[types.ReportTypeHazard]).Equal(3)
	gt.V(t, counts[types.ReportTypeAircraftIncident]).Equal(2)
	gt.V(t, counts[types.ReportTypeBirdStrike]).Equal(1)
	gt.V(t, counts[types.ReportTypeLaserStrike]).Equal(0)
	gt.Map(t, counts).HasKey(types.ReportTypeTCAS)
}

func TestRiskDistribution(t *testing.T) {
	dist := model.RiskDistribution(fixtureSet())

	// the bird strike rated Extreme is excluded; the hazard without a level
	// counts as Low and the incident without one as Medium
	gt.V(t, dist).Equal(map[types.RiskLevel]int{
		types.RiskLevelLow:     1,
		types.RiskLevelMedium:  2,
		types.RiskLevelHigh:    1,
		types.RiskLevelExtreme: 1,
	})
	gt.V(t, model.HighRiskCount(fixtureSet())).Equal(2)
}

func TestRiskDistributionMonotonic(t *testing.T) {
	set := fixtureSet()
	before := model.RiskDistribution(set)
	beforeHigh := model.HighRiskCount(set)

	set[types.ReportTypeHazard] = append(set[types.ReportTypeHazard],
		newReport(types.ReportTypeHazard, types.RiskLevelExtreme, types.InvestigationStatusOpen, "Safety", today))

	after := model.RiskDistribution(set)
	gt.V(t, model.HighRiskCount(set)).Equal(beforeHigh + 1)
	for _, level := range types.AllRiskLevels() {
		want := before[level]
		if level == types.RiskLevelExtreme {
			want++
		}
		gt.V(t, after[level]).Equal(want)
	}
}

func TestCountInvestigations(t *testing.T) {
	totals := model.CountInvestigations(fixtureSet())
	gt.V(t, totals.Open).Equal(5)
	gt.V(t, totals.Closed).Equal(1)
	gt.V(t, totals.Unclassified).Equal(2)
	gt.V(t, totals.UnclassifiedStatuses).Equal([]types.InvestigationStatus{"Archived", types.InvestigationStatusDraft})
}

func TestSLAAlerts(t *testing.T) {
	summary := model.SLAAlerts(fixtureSet(), model.DefaultSLAPolicy(), today)

	// closed hazard is skipped; -20 days is overdue by 5 and -13 days leaves 2
	gt.A(t, summary.Alerts).Length(2)
	gt.V(t, summary.Counts[types.SLABucketOverdue]).Equal(1)
	gt.V(t, summary.Counts[types.SLABucketCritical]).Equal(1)
	gt.V(t, summary.Counts[types.SLABucketOK]).Equal(0)
	gt.V(t, summary.Alerts[0].SLA.DaysRemaining).Equal(-5)
	gt.V(t, summary.Alerts[1].SLA.DaysRemaining).Equal(2)
}

func TestEvaluateSLAUsesWindowPerType(t *testing.T) {
	set := fixtureSet()
	summary := model.EvaluateSLA(set.All(), model.DefaultSLAPolicy(), today)

	// the bird strike filed today has a 7 day window
	var found bool
	for _, a := range summary.Alerts {
		if a.Type == types.ReportTypeBirdStrike {
			found = true
			gt.V(t, a.SLA.DaysRemaining).Equal(7)
			gt.V(t, a.SLA.Status).Equal(types.SLABucketWarning)
		}
	}
	gt.B(t, found).True()
}

func TestDepartmentBreakdown(t *testing.T) {
	gt.V(t, model.DepartmentBreakdown(fixtureSet())).Equal(map[string]int{
		"Engineering": 2,
		"Unknown":     1,
	})
}

func TestRecentReports(t *testing.T) {
	t1 := today.Add(1 * time.Hour)
	t2 := today.Add(2 * time.Hour)
	t3 := today.Add(3 * time.Hour)
	set := model.NewReportSet([]*model.Report{
		newReport(types.ReportTypeHazard, types.RiskLevelLow, types.InvestigationStatusOpen, "", t2),
		newReport(types.ReportTypeTCAS, types.RiskLevelLow, types.InvestigationStatusOpen, "", t3),
		newReport(types.ReportTypeLaserStrike, types.RiskLevelLow, types.InvestigationStatusOpen, "", t1),
	})

	recent := model.RecentReports(set, 2)
	gt.A(t, recent).Length(2)
	gt.V(t, recent[0].CreatedAt).Equal(t3)
	gt.V(t, recent[1].CreatedAt).Equal(t2)

	gt.A(t, model.RecentReports(set, 0)).Length(0)
	gt.A(t, model.RecentReports(set, -1)).Length(0)
	gt.V(t, model.RecentReports(set, 0)).NotNil()
	gt.A(t, model.RecentReports(set, 10)).Length(3)
}

func TestReducersAreIdempotent(t *testing.T) {
	set := fixtureSet()
	hazardsBefore := append([]*model.Report(nil), set[types.ReportTypeHazard]...)

	first := model.Summarize(set, model.DefaultSLAPolicy(), today)
	second := model.Summarize(set, model.DefaultSLAPolicy(), today)
	gt.V(t, second).Equal(first)

	gt.V(t, set[types.ReportTypeHazard]).Equal(hazardsBefore)
	gt.V(t, first.Total).Equal(8)
	gt.A(t, first.Recent).Length(8)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := model.Summarize(model.ReportSet{}, model.DefaultSLAPolicy(), today)
	gt.V(t, summary.Total).Equal(0)
	gt.V(t, summary.HighRiskCount).Equal(0)
	gt.A(t, summary.SLA.Alerts).Length(0)
	gt.A(t, summary.Recent).Length(0)
}
