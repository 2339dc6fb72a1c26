package model

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

type ReportID string

func NewReportID() ReportID {
	return ReportID(uuid.NewString())
}

func (id ReportID) String() string {
	return string(id)
}

// Report is a submitted safety report. Shared fields live on Report and the
// form specific fields in Details, where exactly the member matching Type
// is set.
//
// Number, CreatedAt and RiskLevel are fixed at submission and never change.
type Report struct {
	ID            ReportID                  `json:"id"`
	Number        ReportNumber              `json:"report_number"`
	Type          types.ReportType          `json:"report_type"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
	Likelihood    types.Likelihood          `json:"likelihood,omitempty"`
	Severity      types.Severity            `json:"severity,omitempty"`
	RiskLevel     types.RiskLevel           `json:"risk_level,omitempty"`
	Status        types.InvestigationStatus `json:"investigation_status"`
	Department    string                    `json:"department,omitempty"`
	Title         string                    `json:"title,omitempty"`
	Narrative     string                    `json:"narrative,omitempty"`
	ReporterName  string                    `json:"reporter_name,omitempty"`
	ReporterEmail string                    `json:"reporter_email,omitempty"`
	FlightNumber  string                    `json:"flight_number,omitempty"`
	AircraftReg   string                    `json:"aircraft_reg,omitempty"`
	EventDate     time.Time                 `json:"event_date,omitzero"`
	Location      string                    `json:"location,omitempty"`
	Details       ReportDetails             `json:"details"`
}

// ReportDetails holds the form specific section of a report
type ReportDetails struct {
	BirdStrike     *BirdStrikeDetails     `json:"bird_strike,omitempty" firestore:"bird_strike,omitempty"`
	LaserStrike    *LaserStrikeDetails    `json:"laser_strike,omitempty" firestore:"laser_strike,omitempty"`
	TCAS           *TCASDetails           `json:"tcas,omitempty" firestore:"tcas,omitempty"`
	Hazard         *HazardDetails         `json:"hazard,omitempty" firestore:"hazard,omitempty"`
	Incident       *IncidentDetails       `json:"incident,omitempty" firestore:"incident,omitempty"`
	FlightServices *FlightServicesDetails `json:"flight_services,omitempty" firestore:"flight_services,omitempty"`
	CaptainDebrief *CaptainDebriefDetails `json:"captain_debrief,omitempty" firestore:"captain_debrief,omitempty"`
}

type BirdStrikeDetails struct {
	Species      string `json:"species,omitempty" firestore:"species" validate:"max=100"`
	Size         string `json:"size,omitempty" firestore:"size" validate:"omitempty,oneof=Small Medium Large"`
	NumberStruck int    `json:"number_struck" firestore:"number_struck" validate:"gte=0,lte=1000"`
	DamageLevel  string `json:"damage_level,omitempty" firestore:"damage_level" validate:"omitempty,oneof=None Minor Substantial Destroyed"`
	FlightPhase  string `json:"flight_phase,omitempty" firestore:"flight_phase" validate:"max=50"`
	Origin       string `json:"origin,omitempty" firestore:"origin" validate:"omitempty,len=4,alpha"`
	Destination  string `json:"destination,omitempty" firestore:"destination" validate:"omitempty,len=4,alpha"`
}

type LaserStrikeDetails struct {
	Color               string   `json:"color,omitempty" firestore:"color" validate:"max=30"`
	Intensity           string   `json:"intensity,omitempty" firestore:"intensity" validate:"omitempty,oneof=Low Medium High"`
	CrewEffects         []string `json:"crew_effects,omitempty" firestore:"crew_effects" validate:"dive,max=100"`
	LocationDescription string   `json:"location_description,omitempty" firestore:"location_description" validate:"max=500"`
}

type TCASDetails struct {
	AlertType  string `json:"alert_type" firestore:"alert_type" validate:"required,oneof=TA RA"`
	AltitudeFt int    `json:"altitude_ft" firestore:"altitude_ft" validate:"gte=0,lte=60000"`
	RAComplied bool   `json:"ra_complied" firestore:"ra_complied"`
}

type HazardDetails struct {
	Category string `json:"category" firestore:"category" validate:"required,max=100"`
}

type IncidentDetails struct {
	NotificationType string `json:"notification_type,omitempty" firestore:"notification_type" validate:"max=100"`
	Category         string `json:"category,omitempty" firestore:"category" validate:"max=100"`
	ImmediateAction  string `json:"immediate_action,omitempty" firestore:"immediate_action" validate:"max=2000"`
}

type FlightServicesDetails struct {
	Ratings map[string]int `json:"ratings,omitempty" firestore:"ratings" validate:"dive,keys,required,endkeys,gte=1,lte=5"`
	Issues  []string       `json:"issues,omitempty" firestore:"issues" validate:"dive,max=200"`
	Remarks string         `json:"remarks,omitempty" firestore:"remarks" validate:"max=2000"`
}

type CaptainDebriefDetails struct {
	OverallAssessment string `json:"overall_assessment" firestore:"overall_assessment" validate:"required,max=100"`
	Observations      string `json:"observations,omitempty" firestore:"observations" validate:"max=5000"`
}

// populated returns the report types whose detail section is set
func (d ReportDetails) populated() []types.ReportType {
	var set []types.ReportType
	if d.BirdStrike != nil {
		set = append(set, types.ReportTypeBirdStrike)
	}
	if d.LaserStrike != nil {
		set = append(set, types.ReportTypeLaserStrike)
	}
	if d.TCAS != nil {
		set = append(set, types.ReportTypeTCAS)
	}
	if d.Hazard != nil {
		set = append(set, types.ReportTypeHazard)
	}
	if d.Incident != nil {
		set = append(set, types.ReportTypeAircraftIncident)
	}
	if d.FlightServices != nil {
		set = append(set, types.ReportTypeFlightServices)
	}
	if d.CaptainDebrief != nil {
		set = append(set, types.ReportTypeCaptainDebrief)
	}
	return set
}

// Validate checks that only the section belonging to reportType is set.
// An absent section is accepted and treated as empty.
func (d ReportDetails) Validate(reportType types.ReportType) error {
	for _, t := range d.populated() {
		if t != reportType {
			return goerr.Wrap(ErrDetailsMismatch, "details do not match report type",
				goerr.V(ReportTypeKey, reportType),
				goerr.V("details_type", t))
		}
	}
	return nil
}

// Clone returns a deep copy of the details
func (d ReportDetails) Clone() ReportDetails {
	var c ReportDetails
	if d.BirdStrike != nil {
		v := *d.BirdStrike
		c.BirdStrike = &v
	}
	if d.LaserStrike != nil {
		v := *d.LaserStrike
		v.CrewEffects = slices.Clone(v.CrewEffects)
		c.LaserStrike = &v
	}
	if d.TCAS != nil {
		v := *d.TCAS
		c.TCAS = &v
	}
	if d.Hazard != nil {
		v := *d.Hazard
		c.Hazard = &v
	}
	if d.Incident != nil {
		v := *d.Incident
		c.Incident = &v
	}
	if d.FlightServices != nil {
		v := *d.FlightServices
		v.Ratings = maps.Clone(v.Ratings)
		v.Issues = slices.Clone(v.Issues)
		c.FlightServices = &v
	}
	if d.CaptainDebrief != nil {
		v := *d.CaptainDebrief
		c.CaptainDebrief = &v
	}
	return c
}

// Clone returns a deep copy of the report
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	c := *r
	c.Details = r.Details.Clone()
	return &c
}

// IsHazardOrIncident reports whether the report feeds the risk distribution
func (r *Report) IsHazardOrIncident() bool {
	return r.Type == types.ReportTypeHazard || r.Type == types.ReportTypeAircraftIncident
}

// Action returns the required response for the stored risk level
func (r *Report) Action() types.RiskAction {
	return types.ActionFor(r.RiskLevel)
}

// ReportFilter narrows List results. Zero values match everything.
type ReportFilter struct {
	Type       types.ReportType
	Status     types.InvestigationStatus
	Department string
	Limit      int
}

// Match reports whether r satisfies the filter, ignoring Limit
func (f ReportFilter) Match(r *Report) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Department != "" && r.Department != f.Department {
		return false
	}
	return true
}
