package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

func TestReportType_Prefix(t *testing.T) {
	tests := []struct {
		reportType types.ReportType
		want       string
	}{
		{types.ReportTypeBirdStrike, "BRD"},
		{types.ReportTypeLaserStrike, "LSR"},
		{types.ReportTypeTCAS, "TCS"},
		{types.ReportTypeHazard, "HZD"},
		{types.ReportTypeAircraftIncident, "INC"},
		{types.ReportTypeFlightServices, "FSR"},
		{types.ReportTypeCaptainDebrief, "DBR"},
		{types.ReportType("maintenance_log"), "RPT"},
		{types.ReportType(""), "RPT"},
	}

	for _, tt := range tests {
		t.Run(tt.reportType.String(), func(t *testing.T) {
			gt.V(t, tt.reportType.Prefix()).Equal(tt.want)
		})
	}
}

func TestParseReportType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.ReportType
		wantErr bool
	}{
		{"exact", "hazard_report", types.ReportTypeHazard, false},
		{"upper case", "BIRD_STRIKE", types.ReportTypeBirdStrike, false},
		{"prefix", "TCS", types.ReportTypeTCAS, false},
		{"lower prefix", "dbr", types.ReportTypeCaptainDebrief, false},
		{"unknown", "weather", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseReportType(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err).Required()
			gt.V(t, got).Equal(tt.want)
		})
	}
}

func TestReportType_IsRiskScored(t *testing.T) {
	gt.B(t, types.ReportTypeHazard.IsRiskScored()).True()
	gt.B(t, types.ReportTypeTCAS.IsRiskScored()).True()
	gt.B(t, types.ReportTypeFlightServices.IsRiskScored()).False()
	gt.B(t, types.ReportTypeCaptainDebrief.IsRiskScored()).False()
}

func TestParseLikelihood(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Likelihood
		wantErr bool
	}{
		{"digit", "3", 3, false},
		{"with label", "4 - Occasional", 4, false},
		{"padded", " 5 ", 5, false},
		{"zero", "0", 0, true},
		{"too large", "6", 0, true},
		{"negative", "-1", 0, true},
		{"word", "frequent", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseLikelihood(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err).Required()
			gt.V(t, got).Equal(tt.want)
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Severity
		wantErr bool
	}{
		{"upper", "A", types.SeverityCatastrophic, false},
		{"lower", "d", types.SeverityMinor, false},
		{"with label", "B - Hazardous", types.SeverityHazardous, false},
		{"out of range", "F", "", true},
		{"word", "Major", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseSeverity(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err).Required()
			gt.V(t, got).Equal(tt.want)
		})
	}
}

func TestParseRiskLevel(t *testing.T) {
	got, err := types.ParseRiskLevel("extreme")
	gt.NoError(t, err).Required()
	gt.V(t, got).Equal(types.RiskLevelExtreme)

	_, err = types.ParseRiskLevel("catastrophic")
	gt.Error(t, err)
}

func TestRiskLevel_IsHigh(t *testing.T) {
	gt.B(t, types.RiskLevelExtreme.IsHigh()).True()
	gt.B(t, types.RiskLevelHigh.IsHigh()).True()
	gt.B(t, types.RiskLevelMedium.IsHigh()).False()
	gt.B(t, types.RiskLevelLow.IsHigh()).False()
}

func TestSLABucket_NeedsAttention(t *testing.T) {
	gt.B(t, types.SLABucketOverdue.NeedsAttention()).True()
	gt.B(t, types.SLABucketCritical.NeedsAttention()).True()
	gt.B(t, types.SLABucketWarning.NeedsAttention()).False()
	gt.B(t, types.SLABucketOK.NeedsAttention()).False()
	gt.B(t, types.SLABucket("late").IsValid()).False()
}
