package model

import (
	"cmp"
	"slices"
	"time"

	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

// UnknownDepartment is used for hazards filed without a department
const UnknownDepartment = "Unknown"

// ReportSet is a snapshot of reports grouped by type. Reducers below never
// modify it.
type ReportSet map[types.ReportType][]*Report

// NewReportSet groups reports by their type
func NewReportSet(reports []*Report) ReportSet {
	set := make(ReportSet)
	for _, r := range reports {
		set[r.Type] = append(set[r.Type], r)
	}
	return set
}

// All returns every report in the set in type order
func (s ReportSet) All() []*Report {
	var all []*Report
	for _, t := range types.AllReportTypes() {
		all = append(all, s[t]...)
	}
	for t, reports := range s {
		if !t.IsValid() {
			all = append(all, reports...)
		}
	}
	return all
}

// CountsByType returns the number of reports per type. Every known type is
// present, with zero when no report exists.
func CountsByType(set ReportSet) map[types.ReportType]int {
	counts := make(map[types.ReportType]int, len(types.AllReportTypes()))
	for _, t := range types.AllReportTypes() {
		counts[t] = 0
	}
	for t, reports := range set {
		counts[t] += len(reports)
	}
	return counts
}

// effectiveRiskLevel applies the per type default for reports lacking a
// risk level: hazards count as Low and incidents as Medium.
func effectiveRiskLevel(r *Report) types.RiskLevel {
	if r.RiskLevel.IsValid() {
		return r.RiskLevel
	}
	if r.Type == types.ReportTypeAircraftIncident {
		return types.RiskLevelMedium
	}
	return types.RiskLevelLow
}

// RiskDistribution tallies risk levels over hazards and aircraft incidents
func RiskDistribution(set ReportSet) map[types.RiskLevel]int {
	dist := make(map[types.RiskLevel]int, 4)
	for _, level := range types.AllRiskLevels() {
		dist[level] = 0
	}
	for _, t := range []types.ReportType{types.ReportTypeHazard, types.ReportTypeAircraftIncident} {
		for _, r := range set[t] {
			dist[effectiveRiskLevel(r)]++
		}
	}
	return dist
}

// HighRiskCount counts hazards and incidents rated High or Extreme
func HighRiskCount(set ReportSet) int {
	dist := RiskDistribution(set)
	return dist[types.RiskLevelHigh] + dist[types.RiskLevelExtreme]
}

// InvestigationTotals partitions reports into open and closed
// investigations. Statuses in neither set are counted as unclassified and
// listed so callers can flag them.
type InvestigationTotals struct {
	Open                 int                         `json:"open"`
	Closed               int                         `json:"closed"`
	Unclassified         int                         `json:"unclassified"`
	UnclassifiedStatuses []types.InvestigationStatus `json:"unclassified_statuses,omitempty"`
}

func CountInvestigations(set ReportSet) InvestigationTotals {
	var totals InvestigationTotals
	seen := map[types.InvestigationStatus]bool{}
	for _, r := range set.All() {
		switch {
		case r.Status.IsOpen():
			totals.Open++
		case r.Status.IsClosed():
			totals.Closed++
		default:
			totals.Unclassified++
			if !seen[r.Status] {
				seen[r.Status] = true
				totals.UnclassifiedStatuses = append(totals.UnclassifiedStatuses, r.Status)
			}
		}
	}
	slices.Sort(totals.UnclassifiedStatuses)
	return totals
}

// SLAAlert is one report evaluated against its SLA window
type SLAAlert struct {
	Number     ReportNumber              `json:"report_number"`
	Type       types.ReportType          `json:"report_type"`
	Title      string                    `json:"title,omitempty"`
	Department string                    `json:"department,omitempty"`
	RiskLevel  types.RiskLevel           `json:"risk_level,omitempty"`
	Status     types.InvestigationStatus `json:"investigation_status"`
	SLA        SLAStatus                 `json:"sla"`
}

// SLASummary tallies SLA buckets and keeps the evaluated reports sorted
// from the least to the most days remaining.
type SLASummary struct {
	Counts map[types.SLABucket]int `json:"counts"`
	Alerts []SLAAlert              `json:"alerts"`
}

// EvaluateSLA runs the SLA tracker over every report that is not closed,
// each against the window of its own type.
func EvaluateSLA(reports []*Report, policy SLAPolicy, ref time.Time) SLASummary {
	summary := SLASummary{
		Counts: make(map[types.SLABucket]int, 4),
		Alerts: []SLAAlert{},
	}
	for _, b := range types.AllSLABuckets() {
		summary.Counts[b] = 0
	}

	for _, r := range reports {
		if r.Status.IsClosed() {
			continue
		}
		st := policy.EvaluateReport(r, ref)
		summary.Counts[st.Status]++
		summary.Alerts = append(summary.Alerts, SLAAlert{
			Number:     r.Number,
			Type:       r.Type,
			Title:      r.Title,
			Department: r.Department,
			RiskLevel:  r.RiskLevel,
			Status:     r.Status,
			SLA:        st,
		})
	}

	slices.SortStableFunc(summary.Alerts, func(a, b SLAAlert) int {
		return cmp.Compare(a.SLA.DaysRemaining, b.SLA.DaysRemaining)
	})
	return summary
}

// SLAAlerts evaluates the non-closed hazards against the hazard window
func SLAAlerts(set ReportSet, policy SLAPolicy, ref time.Time) SLASummary {
	return EvaluateSLA(set[types.ReportTypeHazard], policy, ref)
}

// DepartmentBreakdown counts hazards per department
func DepartmentBreakdown(set ReportSet) map[string]int {
	breakdown := make(map[string]int)
	for _, r := range set[types.ReportTypeHazard] {
		dept := r.Department
		if dept == "" {
			dept = UnknownDepartment
		}
		breakdown[dept]++
	}
	return breakdown
}

// RecentReports merges all types and returns up to limit reports, newest
// first. A non-positive limit yields an empty feed.
func RecentReports(set ReportSet, limit int) []*Report {
	if limit <= 0 {
		return []*Report{}
	}
	all := set.All()
	slices.SortStableFunc(all, func(a, b *Report) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// DashboardSummary is the full dashboard computed from one snapshot
type DashboardSummary struct {
	GeneratedAt         time.Time                `json:"generated_at"`
	Total               int                      `json:"total"`
	CountsByType        map[types.ReportType]int `json:"counts_by_type"`
	RiskDistribution    map[types.RiskLevel]int  `json:"risk_distribution"`
	HighRiskCount       int                      `json:"high_risk_count"`
	Investigations      InvestigationTotals      `json:"investigations"`
	SLA                 SLASummary               `json:"sla"`
	DepartmentBreakdown map[string]int           `json:"department_breakdown"`
	Recent              []*Report                `json:"recent"`
}

// DefaultRecentLimit is the feed length used by Summarize
const DefaultRecentLimit = 10

// Summarize runs every reducer over the set
func Summarize(set ReportSet, policy SLAPolicy, ref time.Time) *DashboardSummary {
	counts := CountsByType(set)
	total := 0
	for _, n := range counts {
		total += n
	}

	return &DashboardSummary{
		GeneratedAt:         ref,
		Total:               total,
		CountsByType:        counts,
		RiskDistribution:    RiskDistribution(set),
		HighRiskCount:       HighRiskCount(set),
		Investigations:      CountInvestigations(set),
		SLA:                 SLAAlerts(set, policy, ref),
		DepartmentBreakdown: DepartmentBreakdown(set),
		Recent:              RecentReports(set, DefaultRecentLimit),
	}
}
