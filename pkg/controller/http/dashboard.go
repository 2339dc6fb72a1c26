package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/secmon-lab/avsafe/pkg/usecase"
	"github.com/secmon-lab/avsafe/pkg/utils/safe"
)

func (s *Server) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.uc.Dashboard.Summary(r.Context(), s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) dashboardRecent(w http.ResponseWriter, r *http.Request) {
	limit := model.DefaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			handleError(w, r, goerr.Wrap(errBadRequest, "limit must be a non-negative integer", goerr.V("limit", v)))
			return
		}
		limit = n
	}

	reports, err := s.uc.Dashboard.Recent(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) dashboardSLA(w http.ResponseWriter, r *http.Request) {
	summary, err := s.uc.Dashboard.SLAAlerts(r.Context(), s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// exportFilter reads type, from, to (YYYY-MM-DD, in the server's zone) and
// format from the query
func exportFilter(r *http.Request, loc *time.Location) (usecase.ExportFilter, error) {
	q := r.URL.Query()
	var filter usecase.ExportFilter

	if v := q.Get("type"); v != "" {
		rt, err := types.ParseReportType(v)
		if err != nil {
			return filter, goerr.Wrap(errBadRequest, err.Error(), goerr.V("type", v))
		}
		filter.Type = rt
	}
	for _, p := range []struct {
		key string
		dst *time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		d, err := time.ParseInLocation(time.DateOnly, v, loc)
		if err != nil {
			return filter, goerr.Wrap(errBadRequest, "date must be YYYY-MM-DD", goerr.V(p.key, v))
		}
		*p.dst = d
	}

	format, err := usecase.ParseExportFormat(q.Get("format"))
	if err != nil {
		return filter, err
	}
	filter.Format = format
	return filter, nil
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	filter, err := exportFilter(r, now.Location())
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.uc.Export.Export(r.Context(), now, filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if result.URL != "" {
		writeJSON(w, r, http.StatusOK, map[string]string{
			"file_name": result.FileName,
			"url":       result.URL,
		})
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, result.Data)
}
