package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

const reportColumns = `report_number, id, report_type, created_at, updated_at, likelihood, severity,
	risk_level, investigation_status, department, title, narrative, reporter_name, reporter_email,
	flight_number, aircraft_reg, event_date, location, details`

type reportRepository struct {
	db      *sql.DB
	dialect Dialect
}

func newReportRepository(db *sql.DB, dialect Dialect) *reportRepository {
	return &reportRepository{db: db, dialect: dialect}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*model.Report, error) {
	var (
		r                    model.Report
		number, id, rtype    string
		createdAt, updatedAt int64
		likelihood           int
		severity, riskLevel  string
		status, eventDate    string
		details              []byte
	)
	err := row.Scan(&number, &id, &rtype, &createdAt, &updatedAt, &likelihood, &severity,
		&riskLevel, &status, &r.Department, &r.Title, &r.Narrative, &r.ReporterName, &r.ReporterEmail,
		&r.FlightNumber, &r.AircraftReg, &eventDate, &r.Location, &details)
	if err != nil {
		return nil, err
	}

	r.Number = model.ReportNumber(number)
	r.ID = model.ReportID(id)
	r.Type = types.ReportType(rtype)
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	r.UpdatedAt = time.Unix(0, updatedAt).UTC()
	r.Likelihood = types.Likelihood(likelihood)
	r.Severity = types.Severity(severity)
	r.RiskLevel = types.RiskLevel(riskLevel)
	r.Status = types.InvestigationStatus(status)
	if eventDate != "" {
		if d, err := time.Parse(time.DateOnly, eventDate); err == nil {
			r.EventDate = d
		}
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &r.Details); err != nil {
			return nil, goerr.Wrap(err, "failed to decode report details", goerr.V(model.ReportNumberKey, number))
		}
	}
	return &r, nil
}

func formatEventDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
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

	details, err := json.Marshal(created.Details)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode report details")
	}

	query := rebind(r.dialect, `INSERT INTO reports (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (report_number) DO NOTHING`)

	res, err := r.db.ExecContext(ctx, query,
		created.Number.String(), created.ID.String(), string(created.Type),
		created.CreatedAt.UnixNano(), created.UpdatedAt.UnixNano(),
		created.Likelihood.Int(), string(created.Severity), string(created.RiskLevel),
		string(created.Status), created.Department, created.Title, created.Narrative,
		created.ReporterName, created.ReporterEmail, created.FlightNumber, created.AircraftReg,
		formatEventDate(created.EventDate), created.Location, string(details))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert report", goerr.V(model.ReportNumberKey, created.Number))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return nil, goerr.Wrap(interfaces.ErrDuplicateReportNumber, "report number already exists",
			goerr.V(model.ReportNumberKey, created.Number))
	}

	return created, nil
}

func (r *reportRepository) Get(ctx context.Context, number model.ReportNumber) (*model.Report, error) {
	query := rebind(r.dialect, `SELECT `+reportColumns+` FROM reports WHERE report_number = ?`)
	report, err := scanReport(r.db.QueryRowContext(ctx, query, number.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrReportNotFound, "report not found",
				goerr.V(model.ReportNumberKey, number))
		}
		return nil, goerr.Wrap(err, "failed to get report", goerr.V(model.ReportNumberKey, number))
	}
	return report, nil
}

func (r *reportRepository) List(ctx context.Context, filter model.ReportFilter) ([]*model.Report, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Type != "" {
		conds = append(conds, "report_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		conds = append(conds, "investigation_status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Department != "" {
		conds = append(conds, "department = ?")
		args = append(args, filter.Department)
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, report_number DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, rebind(r.dialect, query), args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list reports")
	}
	defer func() { _ = rows.Close() }()

	var reports []*model.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan report")
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate reports")
	}
	return reports, nil
}

func (r *reportRepository) Update(ctx context.Context, report *model.Report) (*model.Report, error) {
	details, err := json.Marshal(report.Details)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode report details")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// only mutable columns are written
	query := rebind(r.dialect, `UPDATE reports SET
		updated_at = ?, investigation_status = ?, department = ?, title = ?, narrative = ?,
		reporter_name = ?, reporter_email = ?, flight_number = ?, aircraft_reg = ?,
		event_date = ?, location = ?, details = ?
		WHERE report_number = ?`)

	res, err := tx.ExecContext(ctx, query,
		time.Now().UTC().UnixNano(), string(report.Status), report.Department, report.Title,
		report.Narrative, report.ReporterName, report.ReporterEmail, report.FlightNumber,
		report.AircraftReg, formatEventDate(report.EventDate), report.Location, string(details),
		report.Number.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update report", goerr.V(model.ReportNumberKey, report.Number))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return nil, goerr.Wrap(interfaces.ErrReportNotFound, "report not found",
			goerr.V(model.ReportNumberKey, report.Number))
	}

	updated, err := scanReport(tx.QueryRowContext(ctx,
		rebind(r.dialect, `SELECT `+reportColumns+` FROM reports WHERE report_number = ?`),
		report.Number.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reload report", goerr.V(model.ReportNumberKey, report.Number))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit update", goerr.V(model.ReportNumberKey, report.Number))
	}
	return updated, nil
}
