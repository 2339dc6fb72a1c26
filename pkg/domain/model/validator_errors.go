package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidSubmission = goerr.New("invalid report submission")
	ErrDetailsMismatch   = goerr.New("report details do not match report type")
	ErrMissingRiskInput  = goerr.New("likelihood and severity are required for this report type")
	ErrUnknownAirport    = goerr.New("airport is not in the configured list")
	ErrInvalidNumber     = goerr.New("invalid report number")
)

// Context keys for error values
const (
	ReportTypeKey   = "report_type"
	ReportNumberKey = "report_number"
	FieldKey        = "field"
	RuleKey         = "rule"
	FieldValueKey   = "field_value"
)
