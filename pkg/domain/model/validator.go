package model

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

// Submission is the raw form input of a new report
type Submission struct {
	Type          string        `json:"type" validate:"required"`
	Likelihood    string        `json:"likelihood"`
	Severity      string        `json:"severity"`
	Department    string        `json:"department" validate:"max=100"`
	Title         string        `json:"title" validate:"max=200"`
	Narrative     string        `json:"narrative" validate:"required,max=10000"`
	ReporterName  string        `json:"reporter_name" validate:"required,max=100"`
	ReporterEmail string        `json:"reporter_email" validate:"omitempty,email"`
	FlightNumber  string        `json:"flight_number" validate:"omitempty,alphanum,max=8"`
	AircraftReg   string        `json:"aircraft_reg" validate:"omitempty,max=10"`
	EventDate     string        `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	Location      string        `json:"location" validate:"omitempty,len=4,alpha"`
	Details       ReportDetails `json:"details"`
}

// ValidatedSubmission is a Submission with its enumerations parsed
type ValidatedSubmission struct {
	Input      Submission
	ReportType types.ReportType
	Likelihood types.Likelihood
	Severity   types.Severity
	EventDate  time.Time
	Location   string
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// SubmissionValidator checks form input. Airports, when set, restricts the
// location and route fields to the given ICAO codes.
type SubmissionValidator struct {
	airports    []string
	departments []string
}

type ValidatorOption func(*SubmissionValidator)

func WithAirports(codes []string) ValidatorOption {
	return func(v *SubmissionValidator) {
		v.airports = codes
	}
}

func WithDepartments(names []string) ValidatorOption {
	return func(v *SubmissionValidator) {
		v.departments = names
	}
}

func NewSubmissionValidator(opts ...ValidatorOption) *SubmissionValidator {
	v := &SubmissionValidator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks the submission and parses its enumerations
func (v *SubmissionValidator) Validate(s *Submission) (*ValidatedSubmission, error) {
	if err := getValidator().Struct(s); err != nil {
		return nil, wrapValidationError(err)
	}

	reportType, err := types.ParseReportType(s.Type)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidSubmission, err.Error(), goerr.V(FieldKey, "type"))
	}

	if err := s.Details.Validate(reportType); err != nil {
		return nil, goerr.Wrap(ErrInvalidSubmission, "details do not match report type",
			goerr.V(ReportTypeKey, reportType), goerr.V("cause", err.Error()))
	}

	out := &ValidatedSubmission{
		Input:      *s,
		ReportType: reportType,
		Location:   strings.ToUpper(s.Location),
	}

	if reportType.IsRiskScored() {
		if s.Likelihood == "" || s.Severity == "" {
			return nil, goerr.Wrap(ErrInvalidSubmission, ErrMissingRiskInput.Error(),
				goerr.V(ReportTypeKey, reportType))
		}
		out.Likelihood, err = types.ParseLikelihood(s.Likelihood)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidSubmission, err.Error(), goerr.V(FieldKey, "likelihood"))
		}
		out.Severity, err = types.ParseSeverity(s.Severity)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidSubmission, err.Error(), goerr.V(FieldKey, "severity"))
		}
	}

	if s.EventDate != "" {
		out.EventDate, err = time.Parse(time.DateOnly, s.EventDate)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidSubmission, "invalid event date", goerr.V(FieldKey, "event_date"))
		}
	}

	if err := v.checkAirport("location", out.Location); err != nil {
		return nil, err
	}
	if bs := s.Details.BirdStrike; bs != nil {
		if err := v.checkAirport("details.bird_strike.origin", bs.Origin); err != nil {
			return nil, err
		}
		if err := v.checkAirport("details.bird_strike.destination", bs.Destination); err != nil {
			return nil, err
		}
	}

	if len(v.departments) > 0 && s.Department != "" && !slices.Contains(v.departments, s.Department) {
		return nil, goerr.Wrap(ErrInvalidSubmission, "unknown department",
			goerr.V(FieldKey, "department"), goerr.V(FieldValueKey, s.Department))
	}

	return out, nil
}

func (v *SubmissionValidator) checkAirport(field, code string) error {
	if code == "" || len(v.airports) == 0 {
		return nil
	}
	if slices.Contains(v.airports, strings.ToUpper(code)) {
		return nil
	}
	return goerr.Wrap(ErrInvalidSubmission, ErrUnknownAirport.Error(),
		goerr.V(FieldKey, field), goerr.V(FieldValueKey, code))
}

// wrapValidationError reports the first failing field
func wrapValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return goerr.Wrap(ErrInvalidSubmission, fe.Namespace()+" failed "+fe.Tag(),
			goerr.V(FieldKey, fe.Namespace()),
			goerr.V(RuleKey, fe.Tag()),
			goerr.V("violations", len(verrs)))
	}
	return goerr.Wrap(ErrInvalidSubmission, err.Error())
}
