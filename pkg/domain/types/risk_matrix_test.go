package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

func TestClassify(t *testing.T) {
	expected := map[types.Likelihood]map[types.Severity]types.RiskLevel{
		5: {"A": types.RiskLevelExtreme, "B": types.RiskLevelExtreme, "C": types.RiskLevelHigh, "D": types.RiskLevelMedium, "E": types.RiskLevelLow},
		4: {"A": types.RiskLevelExtreme, "B": types.RiskLevelHigh, "C": types.RiskLevelHigh, "D": types.RiskLevelMedium, "E": types.RiskLevelLow},
		3: {"A": types.RiskLevelHigh, "B": types.RiskLevelHigh, "C": types.RiskLevelMedium, "D": types.RiskLevelMedium, "E": types.RiskLevelLow},
		2: {"A": types.RiskLevelHigh, "B": types.RiskLevelMedium, "C": types.RiskLevelMedium, "D": types.RiskLevelLow, "E": types.RiskLevelLow},
		1: {"A": types.RiskLevelMedium, "B": types.RiskLevelMedium, "C": types.RiskLevelLow, "D": types.RiskLevelLow, "E": types.RiskLevelLow},
	}

	count := 0
	for l, row := range expected {
		for s, want := range row {
			t.Run(l.String()+s.String(), func(t *testing.T) {
				got := types.Classify(l, s)
				gt.V(t, got).Equal(want)
				gt.B(t, got.IsValid()).True()
			})
			count++
		}
	}
	gt.Number(t, count).Equal(25)
}

func TestClassifyNormalizesSeverity(t *testing.T) {
	gt.V(t, types.Classify(5, "a")).Equal(types.RiskLevelExtreme)
	gt.V(t, types.Classify(3, " c ")).Equal(types.RiskLevelMedium)
}

func TestClassifyOutOfDomain(t *testing.T) {
	tests := []struct {
		name       string
		likelihood types.Likelihood
		severity   types.Severity
	}{
		{"likelihood too high", 6, "Z"},
		{"likelihood zero", 0, "A"},
		{"negative likelihood", -1, "A"},
		{"unknown severity", 5, "F"},
		{"empty severity", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, types.Classify(tt.likelihood, tt.severity)).Equal(types.RiskLevelLow)
		})
	}
}

func TestActionFor(t *testing.T) {
	t.Run("every level has an action", func(t *testing.T) {
		seen := map[string]bool{}
		for _, level := range types.AllRiskLevels() {
			a := types.ActionFor(level)
			gt.V(t, a.Level).Equal(level)
			gt.String(t, a.Action).NotEqual("")
			gt.String(t, a.Timeline).NotEqual("")
			gt.String(t, a.Authority).NotEqual("")
			gt.B(t, seen[a.Color]).False()
			seen[a.Color] = true
		}
	})

	t.Run("extreme escalates to accountable manager", func(t *testing.T) {
		a := types.ActionFor(types.RiskLevelExtreme)
		gt.V(t, a.Authority).Equal("Accountable Manager")
		gt.V(t, a.Color).Equal("#8B0000")
	})

	t.Run("unknown level falls back to low", func(t *testing.T) {
		gt.V(t, types.ActionFor("Severe")).Equal(types.ActionFor(types.RiskLevelLow))
	})
}

func TestRiskMatrix(t *testing.T) {
	rows := types.RiskMatrix()
	gt.A(t, rows).Length(5)
	for _, row := range rows {
		gt.A(t, row).Length(5)
	}

	gt.V(t, rows[0][0].Likelihood).Equal(types.LikelihoodFrequent)
	gt.V(t, rows[0][0].Severity).Equal(types.SeverityCatastrophic)
	gt.V(t, rows[0][0].Level).Equal(types.RiskLevelExtreme)
	gt.V(t, rows[4][4].Level).Equal(types.RiskLevelLow)
	gt.V(t, rows[4][4].Color).Equal("#228B22")
}
