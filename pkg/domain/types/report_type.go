package types

import (
	"fmt"
	"strings"
)

// ReportType identifies which safety form a report was submitted with
type ReportType string

const (
	ReportTypeAircraftIncident ReportType = "aircraft_incident"
	ReportTypeBirdStrike       ReportType = "bird_strike"
	ReportTypeLaserStrike      ReportType = "laser_strike"
	ReportTypeTCAS             ReportType = "tcas_report"
	ReportTypeHazard           ReportType = "hazard_report"
	ReportTypeFlightServices   ReportType = "fsr"
	ReportTypeCaptainDebrief   ReportType = "captain_dbr"
)

// FallbackReportPrefix is used for report types without a registered prefix
const FallbackReportPrefix = "RPT"

var reportPrefixes = map[ReportType]string{
	ReportTypeAircraftIncident: "INC",
	ReportTypeBirdStrike:       "BRD",
	ReportTypeLaserStrike:      "LSR",
	ReportTypeTCAS:             "TCS",
	ReportTypeHazard:           "HZD",
	ReportTypeFlightServices:   "FSR",
	ReportTypeCaptainDebrief:   "DBR",
}

// AllReportTypes returns all valid report types in display order
func AllReportTypes() []ReportType {
	return []ReportType{
		ReportTypeAircraftIncident,
		ReportTypeBirdStrike,
		ReportTypeLaserStrike,
		ReportTypeTCAS,
		ReportTypeHazard,
		ReportTypeFlightServices,
		ReportTypeCaptainDebrief,
	}
}

// IsValid checks if the report type is valid
func (t ReportType) IsValid() bool {
	_, ok := reportPrefixes[t]
	return ok
}

// String returns the string representation of the report type
func (t ReportType) String() string {
	return string(t)
}

// Prefix returns the report number prefix, or RPT for unknown types.
func (t ReportType) Prefix() string {
	if p, ok := reportPrefixes[t]; ok {
		return p
	}
	return FallbackReportPrefix
}

// IsRiskScored reports whether submissions of this type carry a
// likelihood/severity assessment.
func (t ReportType) IsRiskScored() bool {
	switch t {
	case ReportTypeAircraftIncident, ReportTypeBirdStrike, ReportTypeLaserStrike,
		ReportTypeTCAS, ReportTypeHazard:
		return true
	default:
		return false
	}
}

// Label returns a human readable name used in exports and notifications
func (t ReportType) Label() string {
	switch t {
	case ReportTypeAircraftIncident:
		return "Aircraft Incident"
	case ReportTypeBirdStrike:
		return "Bird Strike"
	case ReportTypeLaserStrike:
		return "Laser Strike"
	case ReportTypeTCAS:
		return "TCAS Report"
	case ReportTypeHazard:
		return "Hazard Report"
	case ReportTypeFlightServices:
		return "Flight Services Report"
	case ReportTypeCaptainDebrief:
		return "Captain's Debrief"
	default:
		return string(t)
	}
}

// ParseReportType parses a string into a ReportType. Matching is
// case-insensitive and also accepts the report number prefix (e.g. "HZD").
func ParseReportType(s string) (ReportType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if t := ReportType(normalized); t.IsValid() {
		return t, nil
	}
	upper := strings.ToUpper(normalized)
	for t, p := range reportPrefixes {
		if p == upper {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid report type: %s", s)
}
