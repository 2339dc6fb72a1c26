package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrInvalidSLA      = goerr.New("invalid SLA configuration")
	ErrInvalidAirport  = goerr.New("invalid airport code")
	ErrDuplicateEntry  = goerr.New("duplicate entry")
	ErrMissingSettings = goerr.New("required setting is missing")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	ReportTypeKey = "report_type"
	BackendKey    = "backend"
	EntryKey      = "entry"
)
