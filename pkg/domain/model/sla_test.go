package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

var today = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestSLAPolicy_Evaluate(t *testing.T) {
	policy := model.DefaultSLAPolicy()

	tests := []struct {
		name      string
		createdAt time.Time
		slaDays   int
		remaining int
		bucket    types.SLABucket
		text      string
	}{
		{"created today", today, 15, 15, types.SLABucketOK, "15 days left"},
		{"boundary of window", today.AddDate(0, 0, -15), 15, 0, types.SLABucketCritical, "0 days left (critical)"},
		{"overdue", today.AddDate(0, 0, -20), 15, -5, types.SLABucketOverdue, "OVERDUE by 5 days"},
		{"critical threshold", today.AddDate(0, 0, -12), 15, 3, types.SLABucketCritical, "3 days left (critical)"},
		{"warning lower edge", today.AddDate(0, 0, -11), 15, 4, types.SLABucketWarning, "4 days left"},
		{"warning upper edge", today.AddDate(0, 0, -8), 15, 7, types.SLABucketWarning, "7 days left"},
		{"just ok", today.AddDate(0, 0, -7), 15, 8, types.SLABucketOK, "8 days left"},
		{"time of day ignored", today.AddDate(0, 0, -1).Add(23 * time.Hour), 7, 6, types.SLABucketWarning, "6 days left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := policy.Evaluate(tt.createdAt, tt.slaDays, today.Add(18*time.Hour))
			gt.V(t, st.DaysRemaining).Equal(tt.remaining)
			gt.V(t, st.Status).Equal(tt.bucket)
			gt.V(t, st.DisplayText).Equal(tt.text)
		})
	}
}

func TestSLAPolicy_EvaluateAcrossZones(t *testing.T) {
	policy := model.DefaultSLAPolicy()
	pkt := time.FixedZone("PKT", 5*60*60)

	t.Run("created now in UTC, reference ahead of UTC", func(t *testing.T) {
		ref := time.Date(2024, 3, 15, 2, 0, 0, 0, pkt)
		st := policy.Evaluate(ref.UTC(), 15, ref)
		gt.V(t, st.DaysRemaining).Equal(15)
		gt.V(t, st.Status).Equal(types.SLABucketOK)
	})

	t.Run("created now in UTC, reference behind UTC", func(t *testing.T) {
		ref := time.Date(2024, 3, 15, 22, 0, 0, 0, time.FixedZone("EST", -5*60*60))
		st := policy.Evaluate(ref.UTC(), 15, ref)
		gt.V(t, st.DaysRemaining).Equal(15)
	})

	t.Run("day boundary follows the reference zone", func(t *testing.T) {
		// 2024-03-14 20:00 UTC is already 2024-03-15 in PKT
		created := time.Date(2024, 3, 14, 20, 0, 0, 0, time.UTC)
		ref := time.Date(2024, 3, 16, 9, 0, 0, 0, pkt)
		st := policy.Evaluate(created, 15, ref)
		gt.V(t, st.DaysRemaining).Equal(14)
	})
}

func TestSLAPolicy_EvaluatePercentage(t *testing.T) {
	policy := model.DefaultSLAPolicy()

	t.Run("overdue is clamped", func(t *testing.T) {
		st := policy.Evaluate(today.AddDate(0, 0, -30), 15, today)
		gt.V(t, st.Percentage).Equal(100.0)
	})

	t.Run("ok is not clamped", func(t *testing.T) {
		st := policy.Evaluate(today.AddDate(0, 0, 2), 15, today)
		gt.V(t, st.Status).Equal(types.SLABucketOK)
		gt.B(t, st.Percentage < 0).True()
	})

	t.Run("ok is elapsed fraction", func(t *testing.T) {
		st := policy.Evaluate(today.AddDate(0, 0, -3), 30, today)
		gt.V(t, st.Percentage).Equal(10.0)
	})

	t.Run("critical at deadline", func(t *testing.T) {
		st := policy.Evaluate(today.AddDate(0, 0, -10), 10, today)
		gt.V(t, st.Percentage).Equal(100.0)
	})

	t.Run("zero window", func(t *testing.T) {
		st := policy.Evaluate(today, 0, today)
		gt.V(t, st.Status).Equal(types.SLABucketCritical)
		gt.V(t, st.Percentage).Equal(100.0)
	})
}

func TestSLAPolicy_EvaluateString(t *testing.T) {
	policy := model.DefaultSLAPolicy()

	tests := []struct {
		name      string
		input     string
		remaining int
	}{
		{"date only", "2024-03-05", 5},
		{"rfc3339", "2024-03-05T22:10:00Z", 5},
		{"rfc3339 with offset", "2024-03-05T01:10:00+05:00", 5},
		{"fractional seconds", "2024-03-05T10:00:00.123456", 5},
		{"space separated", "2024-03-05 10:00:00", 5},
		{"malformed falls back to today", "yesterday", 15},
		{"empty falls back to today", "", 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := policy.EvaluateString(tt.input, 15, today)
			gt.V(t, st.DaysRemaining).Equal(tt.remaining)
		})
	}

	t.Run("malformed input is not alarming", func(t *testing.T) {
		st := policy.EvaluateString("not-a-date", 15, today)
		gt.V(t, st.Status).Equal(types.SLABucketOK)
		gt.V(t, st.Percentage).Equal(0.0)
	})
}

func TestSLAPolicy_WindowFor(t *testing.T) {
	policy := model.DefaultSLAPolicy()
	gt.V(t, policy.WindowFor(types.ReportTypeHazard)).Equal(15)
	gt.V(t, policy.WindowFor(types.ReportTypeAircraftIncident)).Equal(30)
	gt.V(t, policy.WindowFor(types.ReportTypeBirdStrike)).Equal(7)
	gt.V(t, policy.WindowFor(types.ReportTypeLaserStrike)).Equal(7)
	gt.V(t, policy.WindowFor(types.ReportTypeTCAS)).Equal(14)

	policy.Days[types.ReportTypeHazard] = 10
	gt.V(t, policy.WindowFor(types.ReportTypeHazard)).Equal(10)
	gt.V(t, model.DefaultSLADays[types.ReportTypeHazard]).Equal(15)

	gt.V(t, model.SLAPolicy{}.WindowFor(types.ReportTypeTCAS)).Equal(14)
	gt.V(t, model.SLAPolicy{}.WindowFor("unknown")).Equal(30)
}

func TestSLAPolicy_CustomThresholds(t *testing.T) {
	policy := model.SLAPolicy{CriticalDays: 1, WarningDays: 2}
	gt.V(t, policy.Evaluate(today.AddDate(0, 0, -8), 10, today).Status).Equal(types.SLABucketWarning)
	gt.V(t, policy.Evaluate(today.AddDate(0, 0, -9), 10, today).Status).Equal(types.SLABucketCritical)
	gt.V(t, policy.Evaluate(today.AddDate(0, 0, -5), 10, today).Status).Equal(types.SLABucketOK)
}
