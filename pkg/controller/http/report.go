package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

// reportResponse adds the derived response action to a stored report
type reportResponse struct {
	*model.Report
	RequiredAction types.RiskAction `json:"required_action"`
}

func newReportResponse(r *model.Report) reportResponse {
	return reportResponse{Report: r, RequiredAction: r.Action()}
}

func (s *Server) submitReport(w http.ResponseWriter, r *http.Request) {
	var input model.Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		handleError(w, r, goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("cause", err.Error())))
		return
	}

	report, err := s.uc.Report.Submit(r.Context(), &input)
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/reports/"+report.Number.String())
	writeJSON(w, r, http.StatusCreated, newReportResponse(report))
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter model.ReportFilter

	if v := q.Get("type"); v != "" {
		rt, err := types.ParseReportType(v)
		if err != nil {
			handleError(w, r, goerr.Wrap(errBadRequest, err.Error(), goerr.V("type", v)))
			return
		}
		filter.Type = rt
	}
	if v := q.Get("status"); v != "" {
		st, err := types.ParseInvestigationStatus(v)
		if err != nil {
			handleError(w, r, goerr.Wrap(errBadRequest, err.Error(), goerr.V("status", v)))
			return
		}
		filter.Status = st
	}
	filter.Department = q.Get("department")
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			handleError(w, r, goerr.Wrap(errBadRequest, "limit must be a non-negative integer", goerr.V("limit", v)))
			return
		}
		filter.Limit = limit
	}

	reports, err := s.uc.Report.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := make([]reportResponse, len(reports))
	for i, report := range reports {
		resp[i] = newReportResponse(report)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"reports": resp})
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.uc.Report.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newReportResponse(report))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("cause", err.Error())))
		return
	}

	report, err := s.uc.Report.UpdateStatus(r.Context(), chi.URLParam(r, "number"), req.Status)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newReportResponse(report))
}

func (s *Server) reportSLA(w http.ResponseWriter, r *http.Request) {
	st, err := s.uc.Report.SLA(r.Context(), chi.URLParam(r, "number"), s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}
