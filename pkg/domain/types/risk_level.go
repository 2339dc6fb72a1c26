package types

import (
	"fmt"
	"strings"
)

// RiskLevel is the tolerability class produced by the risk matrix
type RiskLevel string

const (
	RiskLevelLow     RiskLevel = "Low"
	RiskLevelMedium  RiskLevel = "Medium"
	RiskLevelHigh    RiskLevel = "High"
	RiskLevelExtreme RiskLevel = "Extreme"
)

// AllRiskLevels returns risk levels from the least to the most severe
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelLow,
		RiskLevelMedium,
		RiskLevelHigh,
		RiskLevelExtreme,
	}
}

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelExtreme:
		return true
	default:
		return false
	}
}

// IsHigh reports whether the level needs senior management attention
func (r RiskLevel) IsHigh() bool {
	return r == RiskLevelHigh || r == RiskLevelExtreme
}

func (r RiskLevel) String() string {
	return string(r)
}

// ParseRiskLevel parses a risk level case-insensitively
func ParseRiskLevel(s string) (RiskLevel, error) {
	for _, r := range AllRiskLevels() {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid risk level: %s", s)
}
