package types

// riskMatrix follows the ICAO Annex 19 tolerability table. Rows are
// likelihood 5..1 and columns severity A..E.
var riskMatrix = [5][5]RiskLevel{
	{RiskLevelExtreme, RiskLevelExtreme, RiskLevelHigh, RiskLevelMedium, RiskLevelLow},
	{RiskLevelExtreme, RiskLevelHigh, RiskLevelHigh, RiskLevelMedium, RiskLevelLow},
	{RiskLevelHigh, RiskLevelHigh, RiskLevelMedium, RiskLevelMedium, RiskLevelLow},
	{RiskLevelHigh, RiskLevelMedium, RiskLevelMedium, RiskLevelLow, RiskLevelLow},
	{RiskLevelMedium, RiskLevelMedium, RiskLevelLow, RiskLevelLow, RiskLevelLow},
}

// Classify returns the risk level for a likelihood/severity pair. Severity
// is case-insensitive. Pairs outside the matrix resolve to Low.
func Classify(likelihood Likelihood, severity Severity) RiskLevel {
	if !likelihood.IsValid() {
		return RiskLevelLow
	}
	col := -1
	for i, s := range AllSeverities() {
		if s == severity.Normalize() {
			col = i
			break
		}
	}
	if col < 0 {
		return RiskLevelLow
	}
	return riskMatrix[LikelihoodFrequent-likelihood][col]
}

// RiskAction describes how an organization must respond to a risk level
type RiskAction struct {
	Level     RiskLevel `json:"level"`
	Action    string    `json:"action"`
	Timeline  string    `json:"timeline"`
	Authority string    `json:"authority"`
	Color     string    `json:"color"`
}

var riskActions = map[RiskLevel]RiskAction{
	RiskLevelExtreme: {
		Level:     RiskLevelExtreme,
		Action:    "Stop operation; immediate mitigation required",
		Timeline:  "Immediate (within 24 hours)",
		Authority: "Accountable Manager",
		Color:     "#8B0000",
	},
	RiskLevelHigh: {
		Level:     RiskLevelHigh,
		Action:    "Senior management attention; mitigation plan required",
		Timeline:  "Within 7 days",
		Authority: "Director of Safety",
		Color:     "#FF4500",
	},
	RiskLevelMedium: {
		Level:     RiskLevelMedium,
		Action:    "Management responsibility; monitor and mitigate",
		Timeline:  "Within 30 days",
		Authority: "Department Head",
		Color:     "#FFA500",
	},
	RiskLevelLow: {
		Level:     RiskLevelLow,
		Action:    "Acceptable; manage by routine procedures",
		Timeline:  "Routine review",
		Authority: "Safety Officer",
		Color:     "#228B22",
	},
}

// ActionFor returns the required response for a risk level. Unknown levels
// get the Low entry.
func ActionFor(level RiskLevel) RiskAction {
	if a, ok := riskActions[level]; ok {
		return a
	}
	return riskActions[RiskLevelLow]
}

// RiskMatrixCell is one cell of the rendered matrix
type RiskMatrixCell struct {
	Likelihood Likelihood `json:"likelihood"`
	Severity   Severity   `json:"severity"`
	Level      RiskLevel  `json:"level"`
	Color      string     `json:"color"`
}

// RiskMatrix returns all 25 cells, row by row from likelihood 5 down to 1
func RiskMatrix() [][]RiskMatrixCell {
	rows := make([][]RiskMatrixCell, 0, 5)
	for _, l := range AllLikelihoods() {
		row := make([]RiskMatrixCell, 0, 5)
		for _, s := range AllSeverities() {
			level := Classify(l, s)
			row = append(row, RiskMatrixCell{
				Likelihood: l,
				Severity:   s,
				Level:      level,
				Color:      ActionFor(level).Color,
			})
		}
		rows = append(rows, row)
	}
	return rows
}
