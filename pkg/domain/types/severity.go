package types

import (
	"fmt"
	"strings"
)

// Severity is the ICAO consequence letter, A (catastrophic) to E (negligible)
type Severity string

const (
	SeverityCatastrophic Severity = "A"
	SeverityHazardous    Severity = "B"
	SeverityMajor        Severity = "C"
	SeverityMinor        Severity = "D"
	SeverityNegligible   Severity = "E"
)

// AllSeverities returns severities in matrix column order
func AllSeverities() []Severity {
	return []Severity{
		SeverityCatastrophic,
		SeverityHazardous,
		SeverityMajor,
		SeverityMinor,
		SeverityNegligible,
	}
}

// Normalize upper-cases and trims the letter. It does not validate.
func (s Severity) Normalize() Severity {
	return Severity(strings.ToUpper(strings.TrimSpace(string(s))))
}

func (s Severity) IsValid() bool {
	switch s.Normalize() {
	case SeverityCatastrophic, SeverityHazardous, SeverityMajor, SeverityMinor, SeverityNegligible:
		return true
	default:
		return false
	}
}

func (s Severity) String() string {
	return string(s)
}

// Label returns the ICAO descriptor of the severity
func (s Severity) Label() string {
	switch s.Normalize() {
	case SeverityCatastrophic:
		return "Catastrophic"
	case SeverityHazardous:
		return "Hazardous"
	case SeverityMajor:
		return "Major"
	case SeverityMinor:
		return "Minor"
	case SeverityNegligible:
		return "Negligible"
	default:
		return "Unknown"
	}
}

// ParseSeverity parses form input such as "b" or "B - Hazardous"
func ParseSeverity(s string) (Severity, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("invalid severity: %q", s)
	}
	sev := Severity(trimmed[:1]).Normalize()
	if len(trimmed) > 1 && !strings.ContainsAny(trimmed[1:2], " -") {
		return "", fmt.Errorf("invalid severity: %q", s)
	}
	if !sev.IsValid() {
		return "", fmt.Errorf("invalid severity: %q", s)
	}
	return sev, nil
}
