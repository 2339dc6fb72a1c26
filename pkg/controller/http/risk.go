package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

type riskMatrixResponse struct {
	Likelihoods []levelLabel             `json:"likelihoods"`
	Severities  []levelLabel             `json:"severities"`
	Cells       [][]types.RiskMatrixCell `json:"cells"`
	Actions     []types.RiskAction       `json:"actions"`
}

type levelLabel struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func riskMatrixHandler(w http.ResponseWriter, r *http.Request) {
	resp := riskMatrixResponse{Cells: types.RiskMatrix()}
	for _, l := range types.AllLikelihoods() {
		resp.Likelihoods = append(resp.Likelihoods, levelLabel{Value: l.String(), Label: l.Label()})
	}
	for _, s := range types.AllSeverities() {
		resp.Severities = append(resp.Severities, levelLabel{Value: s.String(), Label: s.Label()})
	}
	for _, level := range types.AllRiskLevels() {
		resp.Actions = append(resp.Actions, types.ActionFor(level))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type classifyResponse struct {
	Likelihood types.Likelihood `json:"likelihood"`
	Severity   types.Severity   `json:"severity"`
	RiskLevel  types.RiskLevel  `json:"risk_level"`
	Action     types.RiskAction `json:"action"`
}

func classifyHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	likelihood, err := types.ParseLikelihood(q.Get("likelihood"))
	if err != nil {
		handleError(w, r, goerr.Wrap(errBadRequest, err.Error(), goerr.V("likelihood", q.Get("likelihood"))))
		return
	}
	severity, err := types.ParseSeverity(q.Get("severity"))
	if err != nil {
		handleError(w, r, goerr.Wrap(errBadRequest, err.Error(), goerr.V("severity", q.Get("severity"))))
		return
	}

	level := types.Classify(likelihood, severity)
	writeJSON(w, r, http.StatusOK, classifyResponse{
		Likelihood: likelihood,
		Severity:   severity,
		RiskLevel:  level,
		Action:     types.ActionFor(level),
	})
}
