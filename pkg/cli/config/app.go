package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig is the content of the TOML application configuration
type AppConfig struct {
	SLA         SLAConfig `toml:"sla"`
	Departments []string  `toml:"departments"`
	Airports    []string  `toml:"airports"`
}

// SLAConfig overrides the investigation windows. Days is keyed by report
// type (e.g. "hazard_report") or by its number prefix (e.g. "HZD").
type SLAConfig struct {
	CriticalDays *int           `toml:"critical_days"`
	WarningDays  *int           `toml:"warning_days"`
	Days         map[string]int `toml:"days"`
}

var icaoCodePattern = regexp.MustCompile(`^[A-Z]{4}$`)

// Validate checks value ranges and normalizes airport codes to upper case
func (c *AppConfig) Validate() error {
	if err := c.SLA.Validate(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Airports))
	for i, code := range c.Airports {
		code = strings.ToUpper(strings.TrimSpace(code))
		if !icaoCodePattern.MatchString(code) {
			return goerr.Wrap(ErrInvalidAirport, "airport must be a 4 letter ICAO code", goerr.V(EntryKey, c.Airports[i]))
		}
		if _, ok := seen[code]; ok {
			return goerr.Wrap(ErrDuplicateEntry, "duplicate airport", goerr.V(EntryKey, code))
		}
		seen[code] = struct{}{}
		c.Airports[i] = code
	}

	names := make(map[string]struct{}, len(c.Departments))
	for _, name := range c.Departments {
		if strings.TrimSpace(name) == "" {
			return goerr.Wrap(ErrInvalidConfig, "department name is empty")
		}
		if _, ok := names[name]; ok {
			return goerr.Wrap(ErrDuplicateEntry, "duplicate department", goerr.V(EntryKey, name))
		}
		names[name] = struct{}{}
	}

	return nil
}

func (s *SLAConfig) Validate() error {
	critical, warning := model.DefaultCriticalDays, model.DefaultWarningDays
	if s.CriticalDays != nil {
		critical = *s.CriticalDays
	}
	if s.WarningDays != nil {
		warning = *s.WarningDays
	}
	if critical < 0 || warning < 0 {
		return goerr.Wrap(ErrInvalidSLA, "thresholds must not be negative",
			goerr.V("critical_days", critical), goerr.V("warning_days", warning))
	}
	if warning < critical {
		return goerr.Wrap(ErrInvalidSLA, "warning_days must not be less than critical_days",
			goerr.V("critical_days", critical), goerr.V("warning_days", warning))
	}

	for key, days := range s.Days {
		if _, err := types.ParseReportType(key); err != nil {
			return goerr.Wrap(ErrInvalidSLA, "unknown report type", goerr.V(ReportTypeKey, key))
		}
		if days <= 0 {
			return goerr.Wrap(ErrInvalidSLA, "SLA days must be positive",
				goerr.V(ReportTypeKey, key), goerr.V("days", days))
		}
	}
	return nil
}

// SLAPolicy returns the default policy with the configured overrides applied
func (c *AppConfig) SLAPolicy() model.SLAPolicy {
	policy := model.DefaultSLAPolicy()
	if c.SLA.CriticalDays != nil {
		policy.CriticalDays = *c.SLA.CriticalDays
	}
	if c.SLA.WarningDays != nil {
		policy.WarningDays = *c.SLA.WarningDays
	}
	for key, days := range c.SLA.Days {
		if rt, err := types.ParseReportType(key); err == nil {
			policy.Days[rt] = days
		}
	}
	return policy
}

// Validator returns a form validator restricted to the configured airports
// and departments
func (c *AppConfig) Validator() *model.SubmissionValidator {
	return model.NewSubmissionValidator(
		model.WithAirports(c.Airports),
		model.WithDepartments(c.Departments),
	)
}

// LoadAppConfig reads and validates a TOML configuration file
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from an operator flag
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var cfg AppConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid app config", goerr.V(ConfigPathKey, path))
	}
	return &cfg, nil
}

// App holds the CLI flag for the application configuration file
type App struct {
	path string
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML application config (SLA windows, departments, airports)",
			Category:    "Application",
			Destination: &x.path,
			Sources:     cli.EnvVars("AVSAFE_CONFIG"),
		},
	}
}

func (x App) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the configuration file. With no path set, the built-in
// defaults are used. A path that does not exist is an error.
func (x *App) Configure() (*AppConfig, error) {
	if x.path == "" {
		return &AppConfig{}, nil
	}
	return LoadAppConfig(x.path)
}
