package api

import (
	"encoding/json"
	"net/http"

	"github.com/smros/smros/pkg/gate"
)

type hardSubmitResponse struct {
	Passed bool               `json:"passed"`
	Checks []gate.CheckResult `json:"checks"`
}

// handleSubmitHard runs the all-or-nothing Hard-KO evaluation on the
// submitted shop info, metrics and document metadata. Evidence is
// persisted only when every check passes.
func (h *Handler) handleSubmitHard(w http.ResponseWriter, r *http.Request) {
	var in gate.HardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	checks, passed, err := h.svc.SubmitHard(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "submit hard evidence: "+err.Error())
		return
	}
	h.metrics.HardSubmissions.WithLabelValues(passedLabel(passed)).Inc()

	status := http.StatusOK
	if !passed {
		// The evaluation itself succeeded; the gate stays closed.
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, hardSubmitResponse{Passed: passed, Checks: checks})
}

type softApplyRequest struct {
	Value *float64 `json:"value"`
	Note  string   `json:"note"`
}

type softApplyResponse struct {
	Status gate.Status `json:"status"`
}

// handleApplySoft records one Soft-KO input and returns the re-derived
// gate status. A null value records nothing but still re-derives.
func (h *Handler) handleApplySoft(w http.ResponseWriter, r *http.Request) {
	ruleID := r.PathValue("ruleID")

	var req softApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	status, err := h.svc.ApplySoftInput(r.Context(), ruleID, req.Value, req.Note)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	h.metrics.GateTransitions.WithLabelValues(string(status)).Inc()
	writeJSON(w, http.StatusOK, softApplyResponse{Status: status})
}

// handleGateStatus returns the full gate snapshot: derived status plus
// the hard evidence and soft record it was derived from.
func (h *Handler) handleGateStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.GateSnapshot(r.Context()))
}

// handleReset clears all gate and assessment state. This is the only
// remote path that removes Hard evidence.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.svc.Reset(r.Context())
	h.cache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func passedLabel(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}
