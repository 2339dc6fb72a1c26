package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type reportDocument struct {
	ID            string              `firestore:"id"`
	Number        string              `firestore:"report_number"`
	Type          string              `firestore:"report_type"`
	CreatedAt     time.Time           `firestore:"created_at"`
	UpdatedAt     time.Time           `firestore:"updated_at"`
	Likelihood    int                 `firestore:"likelihood"`
	Severity      string              `firestore:"severity"`
	RiskLevel     string              `firestore:"risk_level"`
	Status        string              `firestore:"investigation_status"`
	Department    string              `firestore:"department"`
	Title         string              `firestore:"title"`
	Narrative     string              `firestore:"narrative"`
	ReporterName  string              `firestore:"reporter_name"`
	ReporterEmail string              `firestore:"reporter_email"`
	FlightNumber  string              `firestore:"flight_number"`
	AircraftReg   string              `firestore:"aircraft_reg"`
	EventDate     time.Time           `firestore:"event_date"`
	Location      string              `firestore:"location"`
	Details       model.ReportDetails `firestore:"details"`
}

func toReportDocument(r *model.Report) *reportDocument {
	return &reportDocument{
		ID:            r.ID.String(),
		Number:        r.Number.String(),
		Type:          string(r.Type),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Likelihood:    r.Likelihood.Int(),
		Severity:      string(r.Severity),
		RiskLevel:     string(r.RiskLevel),
		Status:        string(r.Status),
		Department:    r.Department,
		Title:         r.Title,
		Narrative:     r.Narrative,
		ReporterName:  r.ReporterName,
		ReporterEmail: r.ReporterEmail,
		FlightNumber:  r.FlightNumber,
		AircraftReg:   r.AircraftReg,
		EventDate:     r.EventDate,
		Location:      r.Location,
		Details:       r.Details.Clone(),
	}
}

func (d *reportDocument) toModel() *model.Report {
	return &model.Report{
		ID:            model.ReportID(d.ID),
		Number:        model.ReportNumber(d.Number),
		Type:          types.ReportType(d.Type),
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
		Likelihood:    types.Likelihood(d.Likelihood),
		Severity:      types.Severity(d.Severity),
		RiskLevel:     types.RiskLevel(d.RiskLevel),
		Status:        types.InvestigationStatus(d.Status),
		Department:    d.Department,
		Title:         d.Title,
		Narrative:     d.Narrative,
		ReporterName:  d.ReporterName,
		ReporterEmail: d.ReporterEmail,
		FlightNumber:  d.FlightNumber,
		AircraftReg:   d.AircraftReg,
		EventDate:     d.EventDate,
		Location:      d.Location,
		Details:       d.Details,
	}
}

type reportRepository struct {
	client           *firestore.Client
	collectionPrefix string
	indexedQueries   bool
}

func newReportRepository(client *firestore.Client) *reportRepository {
	return &reportRepository{
		client: client,
	}
}

func (r *reportRepository) reportsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_" + ReportsCollection
	}
	return ReportsCollection
}

func (r *reportRepository) docRef(number model.ReportNumber) *firestore.DocumentRef {
	return r.client.Collection(r.reportsCollection()).Doc(number.String())
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) (*model.Report, error) {
	created := report.Clone()
	if created.ID == "" {
		created.ID = model.NewReportID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.UpdatedAt = created.CreatedAt
	created.Status = created.Status.Normalize()

	// Create fails when the document exists, which makes the report number
	// unique without a separate lock
	if _, err := r.docRef(created.Number).Create(ctx, toReportDocument(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrDuplicateReportNumber, "report number already exists",
				goerr.V(model.ReportNumberKey, created.Number))
		}
		return nil, goerr.Wrap(err, "failed to create report", goerr.V(model.ReportNumberKey, created.Number))
	}

	return created, nil
}

func (r *reportRepository) Get(ctx context.Context, number model.ReportNumber) (*model.Report, error) {
	doc, err := r.docRef(number).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrReportNotFound, "report not found",
				goerr.V(model.ReportNumberKey, number))
		}
		return nil, goerr.Wrap(err, "failed to get report", goerr.V(model.ReportNumberKey, number))
	}

	var reportDoc reportDocument
	if err := doc.DataTo(&reportDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal report", goerr.V(model.ReportNumberKey, number))
	}
	return reportDoc.toModel(), nil
}

// List pushes equality filters to Firestore. With indexed queries enabled, a
// type-only filter (the dashboard path) is also ordered and limited server
// side using the (report_type, created_at, report_number) index created by
// migrate. Everything else is ordered in memory so no index is needed per
// filter combination.
func (r *reportRepository) List(ctx context.Context, filter model.ReportFilter) ([]*model.Report, error) {
	query := r.client.Collection(r.reportsCollection()).Query
	if filter.Type != "" {
		query = query.Where("report_type", "==", string(filter.Type))
	}
	if filter.Status != "" {
		query = query.Where("investigation_status", "==", string(filter.Status))
	}
	if filter.Department != "" {
		query = query.Where("department", "==", filter.Department)
	}

	serverOrdered := r.indexedQueries && filter.Type != "" && filter.Status == "" && filter.Department == ""
	if serverOrdered {
		query = query.OrderBy("created_at", firestore.Desc).OrderBy("report_number", firestore.Desc)
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var reports []*model.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate reports")
		}

		var reportDoc reportDocument
		if err := doc.DataTo(&reportDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal report", goerr.V("doc_id", doc.Ref.ID))
		}
		reports = append(reports, reportDoc.toModel())
	}

	if serverOrdered {
		return reports, nil
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].Number > reports[j].Number
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	if filter.Limit > 0 && len(reports) > filter.Limit {
		reports = reports[:filter.Limit]
	}
	return reports, nil
}

func (r *reportRepository) Update(ctx context.Context, report *model.Report) (*model.Report, error) {
	ref := r.docRef(report.Number)

	var updated *model.Report
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrReportNotFound, "report not found",
					goerr.V(model.ReportNumberKey, report.Number))
			}
			return goerr.Wrap(err, "failed to get report", goerr.V(model.ReportNumberKey, report.Number))
		}

		var existing reportDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal report", goerr.V(model.ReportNumberKey, report.Number))
		}
		stored := existing.toModel()

		updated = report.Clone()
		updated.ID = stored.ID
		updated.Type = stored.Type
		updated.CreatedAt = stored.CreatedAt
		updated.Likelihood = stored.Likelihood
		updated.Severity = stored.Severity
		updated.RiskLevel = stored.RiskLevel
		updated.UpdatedAt = time.Now().UTC()

		return tx.Set(ref, toReportDocument(updated))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update report", goerr.V(model.ReportNumberKey, report.Number))
	}

	return updated, nil
}
