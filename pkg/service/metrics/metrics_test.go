package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/secmon-lab/avsafe/pkg/service/metrics"
)

func TestMetrics(t *testing.T) {
	m := metrics.New()

	m.ReportSubmitted(types.ReportTypeHazard, types.RiskLevelHigh)
	m.ReportSubmitted(types.ReportTypeHazard, types.RiskLevelHigh)
	m.ReportSubmitted(types.ReportTypeFlightServices, "")
	m.Notified("high_risk", nil)
	m.Notified("high_risk", errors.New("channel_not_found"))
	m.SetSLACounts(map[types.SLABucket]int{types.SLABucketOverdue: 2})

	count, err := testutil.GatherAndCount(m.Registry(), "avsafe_reports_submitted_total")
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(2)

	count, err = testutil.GatherAndCount(m.Registry(), "avsafe_sla_reports")
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(len(types.AllSLABuckets()))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	gt.NoError(t, err).Required()
	gt.String(t, string(body)).Contains(`avsafe_reports_submitted_total{report_type="hazard_report",risk_level="High"} 2`)
	gt.String(t, string(body)).Contains(`avsafe_notifications_total{kind="high_risk",result="error"} 1`)
	gt.String(t, string(body)).Contains(`avsafe_sla_reports{bucket="overdue"} 2`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.ReportSubmitted(types.ReportTypeHazard, types.RiskLevelLow)
	m.StatusChanged(types.InvestigationStatusOpen, types.InvestigationStatusClosed)
	m.NumberCollision()
	m.Notified("digest", nil)
	m.SetSLACounts(nil)
	m.Exported("download")
}
