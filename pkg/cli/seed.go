package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/cli/config"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/secmon-lab/avsafe/pkg/usecase"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var (
	seedAirports     = []string{"OPSK", "OPKC", "OPLA", "OPIS", "OPPS", "OPQT", "OMDB", "OERK", "OTHH"}
	seedAircraftRegs = []string{"AP-BMA", "AP-BMB", "AP-BMC", "AP-BMD", "AP-BME", "AP-BMF"}
	seedDepartments  = []string{"Flight Operations", "Engineering", "Ground Operations", "Cabin Services", "Safety", "Security"}
	seedStatuses     = []types.InvestigationStatus{
		types.InvestigationStatusSubmitted,
		types.InvestigationStatusOpen,
		types.InvestigationStatusUnderInvestigation,
		types.InvestigationStatusPendingReview,
		types.InvestigationStatusClosed,
	}
	seedHazardCategories = []string{"Foreign Object Debris", "Fuel Spill", "Runway Incursion", "Wildlife", "Ground Equipment"}
	seedSeverities       = []string{"A", "B", "C", "D", "E"}
)

func cmdSeed() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var perType int
	var daysBack int
	var randSeed uint64

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "count",
			Usage:       "Number of reports per report type",
			Value:       5,
			Destination: &perType,
		},
		&cli.IntFlag{
			Name:        "days",
			Usage:       "Spread report creation dates over the last N days",
			Value:       30,
			Destination: &daysBack,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Usage:       "Random seed for reproducible data",
			Value:       1,
			Destination: &randSeed,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Submit sample reports of every type (development only)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if perType <= 0 || daysBack < 0 {
				return goerr.Wrap(config.ErrInvalidConfig, "count must be positive and days not negative",
					goerr.V("count", perType), goerr.V("days", daysBack))
			}

			s := newSeeder(randSeed, daysBack)
			rt, err := newRuntime(ctx, runtimeConfig{
				app:     &appCfg,
				repo:    &repoCfg,
				options: []usecase.Option{usecase.WithClock(s.clock)},
			})
			if err != nil {
				return err
			}
			defer rt.Close()
			s.restrictTo(rt.cfg)

			n, err := s.run(ctx, rt.uc, perType)
			if err != nil {
				return err
			}
			logging.Default().Info("Seeding completed", "reports", n)
			return nil
		},
	}
}

// seeder generates sample submissions. Its clock returns the creation time
// picked for the submission in flight, so reports spread over past days.
type seeder struct {
	rnd         *rand.Rand
	airports    []string
	departments []string
	daysBack    int
	base        time.Time
	at          time.Time
}

func newSeeder(seed uint64, daysBack int) *seeder {
	return &seeder{
		rnd:         rand.New(rand.NewPCG(seed, seed)),
		airports:    seedAirports,
		departments: seedDepartments,
		daysBack:    daysBack,
		base:        time.Now().UTC(),
	}
}

// restrictTo limits generated values to what the form validator accepts
func (s *seeder) restrictTo(cfg *config.AppConfig) {
	if len(cfg.Airports) > 0 {
		s.airports = cfg.Airports
	}
	if len(cfg.Departments) > 0 {
		s.departments = cfg.Departments
	}
}

func (s *seeder) clock() time.Time {
	return s.at
}

func (s *seeder) pick(items []string) string {
	return items[s.rnd.IntN(len(items))]
}

func (s *seeder) run(ctx context.Context, uc *usecase.UseCases, perType int) (int, error) {
	total := 0
	for _, rt := range types.AllReportTypes() {
		for range perType {
			s.at = s.base.Add(-time.Duration(s.rnd.IntN(s.daysBack*24+1)) * time.Hour)

			report, err := uc.Report.Submit(ctx, s.submission(rt))
			if err != nil {
				return total, goerr.Wrap(err, "failed to submit sample report", goerr.V("report_type", rt))
			}

			status := seedStatuses[s.rnd.IntN(len(seedStatuses))]
			if status != report.Status {
				if _, err := uc.Report.UpdateStatus(ctx, report.Number.String(), status.String()); err != nil {
					return total, goerr.Wrap(err, "failed to set sample status", goerr.V("report_number", report.Number))
				}
			}

			logging.From(ctx).Debug("sample report added",
				"report_number", report.Number, "risk_level", report.RiskLevel, "status", status)
			total++
		}
	}
	return total, nil
}

func (s *seeder) submission(rt types.ReportType) *model.Submission {
	sub := &model.Submission{
		Type:          rt.String(),
		Department:    s.pick(s.departments),
		ReporterName:  "Seed Reporter",
		ReporterEmail: "safety.seed@example.com",
		FlightNumber:  fmt.Sprintf("PF%d", 100+s.rnd.IntN(900)),
		AircraftReg:   s.pick(seedAircraftRegs),
		EventDate:     s.at.Format(time.DateOnly),
		Location:      s.pick(s.airports),
	}
	if rt.IsRiskScored() {
		sub.Likelihood = fmt.Sprint(1 + s.rnd.IntN(5))
		sub.Severity = s.pick(seedSeverities)
	}

	switch rt {
	case types.ReportTypeBirdStrike:
		sub.Title = "Bird strike"
		sub.Narrative = "Bird strike encountered during flight. Standard operating procedures followed."
		sub.Details.BirdStrike = &model.BirdStrikeDetails{
			Species:      s.pick([]string{"Kite", "Crow", "Pigeon", "Eagle", "Unknown"}),
			Size:         s.pick([]string{"Small", "Medium", "Large"}),
			NumberStruck: 1 + s.rnd.IntN(10),
			DamageLevel:  s.pick([]string{"None", "Minor", "Substantial"}),
			FlightPhase:  s.pick([]string{"Takeoff", "Approach", "Landing"}),
			Origin:       s.pick(s.airports),
			Destination:  s.pick(s.airports),
		}
	case types.ReportTypeLaserStrike:
		sub.Title = "Laser illumination on final"
		sub.Narrative = "Laser illumination observed from a ground source. ATC notified."
		sub.Details.LaserStrike = &model.LaserStrikeDetails{
			Color:               s.pick([]string{"Green", "Blue", "Red"}),
			Intensity:           s.pick([]string{"Low", "Medium", "High"}),
			CrewEffects:         []string{s.pick([]string{"Glare", "Distraction", "Flash blindness"})},
			LocationDescription: fmt.Sprintf("%dnm final", 3+s.rnd.IntN(8)),
		}
	case types.ReportTypeTCAS:
		sub.Title = "TCAS event"
		sub.Narrative = "TCAS alert received during climb. Traffic acquired visually."
		alert := s.pick([]string{"TA", "RA"})
		sub.Details.TCAS = &model.TCASDetails{
			AlertType:  alert,
			AltitudeFt: 1000 * (2 + s.rnd.IntN(35)),
			RAComplied: alert == "RA",
		}
	case types.ReportTypeHazard:
		category := s.pick(seedHazardCategories)
		sub.Title = category
		sub.Narrative = "Hazard identified during routine operations: " + category + "."
		sub.Details.Hazard = &model.HazardDetails{Category: category}
	case types.ReportTypeAircraftIncident:
		sub.Title = "Technical incident"
		sub.Narrative = "Caution message displayed in flight. Checklist actioned and flight continued."
		sub.Details.Incident = &model.IncidentDetails{
			NotificationType: s.pick([]string{"Mandatory", "Voluntary"}),
			Category:         s.pick([]string{"Technical", "Operational", "Environmental"}),
			ImmediateAction:  "QRH checklist completed",
		}
	case types.ReportTypeFlightServices:
		sub.Title = "Flight services report"
		sub.Narrative = "Cabin service feedback for the sector."
		sub.Details.FlightServices = &model.FlightServicesDetails{
			Ratings: map[string]int{
				"catering":    1 + s.rnd.IntN(5),
				"cleanliness": 1 + s.rnd.IntN(5),
				"ground_ops":  1 + s.rnd.IntN(5),
			},
			Remarks: "Generated sample",
		}
	case types.ReportTypeCaptainDebrief:
		sub.Title = "Captain debrief"
		sub.Narrative = "Post flight debrief by the commander."
		sub.Details.CaptainDebrief = &model.CaptainDebriefDetails{
			OverallAssessment: s.pick([]string{"Satisfactory", "Needs Improvement", "Excellent"}),
			Observations:      "Smooth sector with minor delays at the gate.",
		}
	}
	return sub
}
