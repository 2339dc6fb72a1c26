package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

const (
	DefaultCriticalDays = 3
	DefaultWarningDays  = 7
)

// DefaultSLADays are the investigation windows per report type
var DefaultSLADays = map[types.ReportType]int{
	types.ReportTypeHazard:           15,
	types.ReportTypeAircraftIncident: 30,
	types.ReportTypeBirdStrike:       7,
	types.ReportTypeLaserStrike:      7,
	types.ReportTypeTCAS:             14,
	types.ReportTypeFlightServices:   30,
	types.ReportTypeCaptainDebrief:   30,
}

// SLAPolicy holds the SLA window per report type and the day thresholds
// for the critical and warning buckets.
type SLAPolicy struct {
	CriticalDays int
	WarningDays  int
	Days         map[types.ReportType]int
}

func DefaultSLAPolicy() SLAPolicy {
	days := make(map[types.ReportType]int, len(DefaultSLADays))
	for k, v := range DefaultSLADays {
		days[k] = v
	}
	return SLAPolicy{
		CriticalDays: DefaultCriticalDays,
		WarningDays:  DefaultWarningDays,
		Days:         days,
	}
}

// WindowFor returns the SLA days for a report type. Types missing from the
// policy use the default table, and unknown types get 30 days.
func (p SLAPolicy) WindowFor(t types.ReportType) int {
	if d, ok := p.Days[t]; ok {
		return d
	}
	if d, ok := DefaultSLADays[t]; ok {
		return d
	}
	return 30
}

// SLAStatus is computed on demand and never stored
type SLAStatus struct {
	DaysRemaining int             `json:"days_remaining"`
	Status        types.SLABucket `json:"status"`
	DisplayText   string          `json:"display_text"`
	Percentage    float64         `json:"percentage"`
	Deadline      time.Time       `json:"deadline"`
}

// Evaluate computes the SLA status of something created at createdAt with
// a window of slaDays, as seen on ref. Both instants are reduced to their
// calendar date in ref's location. A zero createdAt is treated as created
// on ref.
func (p SLAPolicy) Evaluate(createdAt time.Time, slaDays int, ref time.Time) SLAStatus {
	refDate := toDate(ref)
	created := refDate
	if !createdAt.IsZero() {
		created = toDate(createdAt.In(ref.Location()))
	}

	deadline := created.AddDate(0, 0, slaDays)
	remaining := int(math.Round(deadline.Sub(refDate).Hours() / 24))

	st := SLAStatus{
		DaysRemaining: remaining,
		Deadline:      deadline,
	}

	switch {
	case remaining < 0:
		st.Status = types.SLABucketOverdue
		st.DisplayText = fmt.Sprintf("OVERDUE by %d days", -remaining)
		st.Percentage = clampPercentage(elapsedPercentage(slaDays, remaining))
	case remaining <= p.CriticalDays:
		st.Status = types.SLABucketCritical
		st.DisplayText = fmt.Sprintf("%d days left (critical)", remaining)
		st.Percentage = clampPercentage(elapsedPercentage(slaDays, remaining))
	case remaining <= p.WarningDays:
		st.Status = types.SLABucketWarning
		st.DisplayText = fmt.Sprintf("%d days left", remaining)
		st.Percentage = elapsedPercentage(slaDays, remaining)
	default:
		st.Status = types.SLABucketOK
		st.DisplayText = fmt.Sprintf("%d days left", remaining)
		st.Percentage = elapsedPercentage(slaDays, remaining)
	}

	return st
}

// EvaluateString is Evaluate for textual timestamps. Unparseable input is
// treated as created on ref.
func (p SLAPolicy) EvaluateString(createdAt string, slaDays int, ref time.Time) SLAStatus {
	t, ok := ParseReportDate(createdAt)
	if !ok {
		t = ref
	}
	return p.Evaluate(t, slaDays, ref)
}

// EvaluateReport evaluates a report against the window of its type
func (p SLAPolicy) EvaluateReport(r *Report, ref time.Time) SLAStatus {
	return p.Evaluate(r.CreatedAt, p.WindowFor(r.Type), ref)
}

var reportDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.DateOnly,
}

// ParseReportDate parses the timestamp shapes stored by report backends
func ParseReportDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range reportDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toDate drops the time of day, keeping the date as seen in t's location
func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func elapsedPercentage(slaDays, remaining int) float64 {
	if slaDays <= 0 {
		return 100
	}
	return float64(slaDays-remaining) / float64(slaDays) * 100
}

func clampPercentage(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
