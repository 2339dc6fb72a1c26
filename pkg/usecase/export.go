package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
	"github.com/secmon-lab/avsafe/pkg/utils/safe"
	"github.com/xuri/excelize/v2"
)

const (
	XLSXContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVContentType   = "text/csv; charset=utf-8"
	summarySheetName = "Summary"
)

type ExportFormat string

const (
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatCSV  ExportFormat = "csv"
)

// ParseExportFormat accepts "xlsx" (also "excel") and "csv". An empty string
// selects xlsx.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return ExportFormatXLSX, nil
	case "csv":
		return ExportFormatCSV, nil
	default:
		return "", goerr.Wrap(ErrInvalidExportFilter, "unknown export format", goerr.V("format", s))
	}
}

func (f ExportFormat) contentType() string {
	if f == ExportFormatCSV {
		return CSVContentType
	}
	return XLSXContentType
}

// ExportFilter narrows an export. Zero fields match everything. From and To
// are inclusive calendar dates taken in their own location.
type ExportFilter struct {
	Type   types.ReportType
	From   time.Time
	To     time.Time
	Format ExportFormat
}

func (f ExportFilter) Validate() error {
	if f.Type != "" && !f.Type.IsValid() {
		return goerr.Wrap(ErrInvalidExportFilter, "unknown report type", goerr.V(model.ReportTypeKey, f.Type))
	}
	if !f.From.IsZero() && !f.To.IsZero() && startOfDay(f.From).After(startOfDay(f.To)) {
		return goerr.Wrap(ErrInvalidExportFilter, "from date is after to date",
			goerr.V("from", f.From.Format(time.DateOnly)), goerr.V("to", f.To.Format(time.DateOnly)))
	}
	switch f.Format {
	case "", ExportFormatXLSX, ExportFormatCSV:
	default:
		return goerr.Wrap(ErrInvalidExportFilter, "unknown export format", goerr.V("format", f.Format))
	}
	return nil
}

func (f ExportFilter) format() ExportFormat {
	if f.Format == "" {
		return ExportFormatXLSX
	}
	return f.Format
}

func (f ExportFilter) reportTypes() []types.ReportType {
	if f.Type != "" {
		return []types.ReportType{f.Type}
	}
	return types.AllReportTypes()
}

func (f ExportFilter) match(r *model.Report) bool {
	if !f.From.IsZero() && r.CreatedAt.Before(startOfDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && !r.CreatedAt.Before(startOfDay(f.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// apply returns the subset of set selected by f, keyed by the selected types
func (f ExportFilter) apply(set model.ReportSet) model.ReportSet {
	out := make(model.ReportSet, len(set))
	for _, rt := range f.reportTypes() {
		reports := make([]*model.Report, 0, len(set[rt]))
		for _, r := range set[rt] {
			if f.match(r) {
				reports = append(reports, r)
			}
		}
		out[rt] = reports
	}
	return out
}

func (f ExportFilter) fileName(ref time.Time) string {
	name := "avsafe-export-"
	if f.Type != "" {
		name += f.Type.String() + "-"
	}
	return name + ref.UTC().Format("20060102-150405") + "." + string(f.format())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var reportColumns = []string{
	"Report Number", "Created At", "Status", "Risk Level", "Likelihood", "Severity",
	"Department", "Title", "Location", "Flight", "Aircraft", "SLA", "Days Remaining", "Details",
}

type ExportUseCase struct {
	uc *UseCases
}

// ExportResult is a generated workbook. URL is set when it was uploaded.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
	URL         string
}

// Export writes the reports selected by filter. An xlsx export has a
// Summary sheet first and one sheet per selected report type. A csv export
// is a single table with the report type in the first column.
func (e *ExportUseCase) Export(ctx context.Context, ref time.Time, filter ExportFilter) (*ExportResult, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	loaded, err := e.uc.loadReportSet(ctx)
	if err != nil {
		return nil, err
	}
	set := filter.apply(loaded)

	var data []byte
	switch filter.format() {
	case ExportFormatCSV:
		data, err = buildCSV(set, filter.reportTypes(), e.uc.policy, ref)
	default:
		data, err = buildWorkbook(ctx, set, filter.reportTypes(), e.uc.policy, ref)
	}
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		FileName:    filter.fileName(ref),
		ContentType: filter.format().contentType(),
		Data:        data,
	}

	if e.uc.uploader == nil {
		e.uc.metrics.Exported("download")
		return result, nil
	}

	url, err := e.uc.uploader.Upload(ctx, result.FileName, result.ContentType, data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upload export", goerr.V("file", result.FileName))
	}
	result.URL = url
	e.uc.metrics.Exported("storage")
	logging.From(ctx).Info("export uploaded", "url", url, "size", len(data))
	return result, nil
}

type workbook struct {
	f      *excelize.File
	header int
	risk   map[types.RiskLevel]int
}

func newWorkbook() (*workbook, error) {
	wb := &workbook{f: excelize.NewFile(), risk: map[types.RiskLevel]int{}}

	header, err := wb.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create header style")
	}
	wb.header = header

	for _, level := range types.AllRiskLevels() {
		color := strings.TrimPrefix(types.ActionFor(level).Color, "#")
		id, err := wb.f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create risk style", goerr.V("risk_level", level))
		}
		wb.risk[level] = id
	}
	return wb, nil
}

func (wb *workbook) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return goerr.Wrap(err, "invalid cell", goerr.V("row", row))
	}
	if err := wb.f.SetSheetRow(sheet, cell, &values); err != nil {
		return goerr.Wrap(err, "failed to write row", goerr.V("sheet", sheet), goerr.V("row", row))
	}
	return nil
}

func (wb *workbook) setHeader(sheet string, row int, values []any) error {
	if err := wb.setRow(sheet, row, values); err != nil {
		return err
	}
	if err := wb.f.SetRowStyle(sheet, row, row, wb.header); err != nil {
		return goerr.Wrap(err, "failed to style header", goerr.V("sheet", sheet))
	}
	return nil
}

func buildWorkbook(ctx context.Context, set model.ReportSet, reportTypes []types.ReportType, policy model.SLAPolicy, ref time.Time) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer safe.Close(ctx, wb.f)

	if err := wb.f.SetSheetName("Sheet1", summarySheetName); err != nil {
		return nil, goerr.Wrap(err, "failed to rename summary sheet")
	}
	if err := wb.writeSummary(model.Summarize(set, policy, ref)); err != nil {
		return nil, err
	}

	for _, rt := range reportTypes {
		if err := wb.writeReports(rt, set[rt], policy, ref); err != nil {
			return nil, err
		}
	}

	buf, err := wb.f.WriteToBuffer()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to serialize workbook")
	}
	return buf.Bytes(), nil
}

func (wb *workbook) writeSummary(summary *model.DashboardSummary) error {
	sheet := summarySheetName
	row := 1

	if err := wb.setHeader(sheet, row, []any{"Generated At", summary.GeneratedAt.UTC().Format(time.RFC3339)}); err != nil {
		return err
	}
	row += 2

	if err := wb.setHeader(sheet, row, []any{"Report Type", "Count"}); err != nil {
		return err
	}
	for _, rt := range types.AllReportTypes() {
		row++
		if err := wb.setRow(sheet, row, []any{rt.Label(), summary.CountsByType[rt]}); err != nil {
			return err
		}
	}
	row += 2

	if err := wb.setHeader(sheet, row, []any{"Risk Level", "Hazards and Incidents"}); err != nil {
		return err
	}
	for _, level := range types.AllRiskLevels() {
		row++
		if err := wb.setRow(sheet, row, []any{level.String(), summary.RiskDistribution[level]}); err != nil {
			return err
		}
		if err := wb.styleRisk(sheet, 1, row, level); err != nil {
			return err
		}
	}
	row += 2

	inv := summary.Investigations
	if err := wb.setHeader(sheet, row, []any{"Investigations", "Count"}); err != nil {
		return err
	}
	for _, kv := range [][]any{{"Open", inv.Open}, {"Closed", inv.Closed}, {"Unclassified", inv.Unclassified}} {
		row++
		if err := wb.setRow(sheet, row, kv); err != nil {
			return err
		}
	}
	row += 2

	if err := wb.setHeader(sheet, row, []any{"Hazard SLA", "Count"}); err != nil {
		return err
	}
	for _, b := range types.AllSLABuckets() {
		row++
		if err := wb.setRow(sheet, row, []any{b.String(), summary.SLA.Counts[b]}); err != nil {
			return err
		}
	}

	if err := wb.f.SetColWidth(sheet, "A", "B", 24); err != nil {
		return goerr.Wrap(err, "failed to set column width", goerr.V("sheet", sheet))
	}
	return nil
}

func (wb *workbook) writeReports(rt types.ReportType, reports []*model.Report, policy model.SLAPolicy, ref time.Time) error {
	sheet := rt.Label()
	if _, err := wb.f.NewSheet(sheet); err != nil {
		return goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", sheet))
	}

	header := make([]any, len(reportColumns))
	for i, c := range reportColumns {
		header[i] = c
	}
	if err := wb.setHeader(sheet, 1, header); err != nil {
		return err
	}

	for i, r := range reports {
		row := i + 2
		values, err := reportRow(r, policy, ref)
		if err != nil {
			return err
		}
		if err := wb.setRow(sheet, row, values); err != nil {
			return err
		}
		if r.RiskLevel.IsValid() {
			if err := wb.styleRisk(sheet, 4, row, r.RiskLevel); err != nil {
				return err
			}
		}
	}

	if err := wb.f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return goerr.Wrap(err, "failed to set column width", goerr.V("sheet", sheet))
	}
	return nil
}

func (wb *workbook) styleRisk(sheet string, col, row int, level types.RiskLevel) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return goerr.Wrap(err, "invalid cell", goerr.V("row", row))
	}
	if err := wb.f.SetCellStyle(sheet, cell, cell, wb.risk[level]); err != nil {
		return goerr.Wrap(err, "failed to style risk cell", goerr.V("sheet", sheet), goerr.V("cell", cell))
	}
	return nil
}

func reportRow(r *model.Report, policy model.SLAPolicy, ref time.Time) ([]any, error) {
	slaText, remaining := "", any("")
	if !r.Status.IsClosed() {
		st := policy.EvaluateReport(r, ref)
		slaText, remaining = st.DisplayText, st.DaysRemaining
	}

	details, err := json.Marshal(r.Details)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode details", goerr.V(model.ReportNumberKey, r.Number))
	}

	likelihood := any("")
	if r.Likelihood.IsValid() {
		likelihood = r.Likelihood.Int()
	}

	return []any{
		r.Number.String(), r.CreatedAt.UTC().Format(time.RFC3339), r.Status.String(),
		r.RiskLevel.String(), likelihood, r.Severity.String(), r.Department, r.Title,
		r.Location, r.FlightNumber, r.AircraftReg, slaText, remaining, string(details),
	}, nil
}

func buildCSV(set model.ReportSet, reportTypes []types.ReportType, policy model.SLAPolicy, ref time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(append([]string{"Report Type"}, reportColumns...)); err != nil {
		return nil, goerr.Wrap(err, "failed to write csv header")
	}
	for _, rt := range reportTypes {
		for _, r := range set[rt] {
			values, err := reportRow(r, policy, ref)
			if err != nil {
				return nil, err
			}
			record := make([]string, 0, len(values)+1)
			record = append(record, rt.Label())
			for _, v := range values {
				record = append(record, fmt.Sprint(v))
			}
			if err := w.Write(record); err != nil {
				return nil, goerr.Wrap(err, "failed to write csv row", goerr.V(model.ReportNumberKey, r.Number))
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, goerr.Wrap(err, "failed to flush csv")
	}
	return buf.Bytes(), nil
}
