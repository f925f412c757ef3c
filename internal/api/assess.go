package api

import (
	"encoding/json"
	"net/http"

	"github.com/smros/smros/internal/assessment"
)

type evaluateRequest struct {
	ShopID string         `json:"shop_id"`
	Inputs map[string]any `json:"inputs"`
}

// handleEvaluate runs the full scoring pipeline on the submitted inputs
// and returns the completed assessment.
func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ShopID == "" {
		writeError(w, http.StatusBadRequest, "shop_id is required")
		return
	}

	res, err := h.svc.Evaluate(r.Context(), req.ShopID, req.Inputs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "evaluate: "+err.Error())
		return
	}

	h.metrics.Evaluations.WithLabelValues(string(res.Tier)).Inc()
	h.cache.Put(res.AssessmentID, res)
	writeJSON(w, http.StatusOK, res)
}

// handleLatest returns the most recent completed assessment from the
// local tiers.
func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	res := h.svc.LatestResult(r.Context())
	if res == nil {
		writeError(w, http.StatusNotFound, "no completed assessment")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGetAssessment returns one assessment by ID, serving from the
// in-process cache first and falling back to the Postgres mirror.
func (h *Handler) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("assessmentID")

	if res := h.cache.Get(id); res != nil {
		writeJSON(w, http.StatusOK, res)
		return
	}
	if h.remote == nil {
		writeError(w, http.StatusServiceUnavailable, "assessment archive unavailable")
		return
	}

	out := h.remote.FetchLatestAssessment(r.Context(), "", id)
	if !out.OK {
		writeError(w, http.StatusBadGateway, "assessment archive: "+out.Reason)
		return
	}
	if out.Doc == nil {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}

	var res assessment.Result
	if err := json.Unmarshal(out.Doc, &res); err != nil {
		writeError(w, http.StatusInternalServerError, "decode archived assessment: "+err.Error())
		return
	}
	h.cache.Put(id, &res)
	writeJSON(w, http.StatusOK, &res)
}

// handleFixlist returns the prioritized fix list of the latest
// assessment: the highest-impact failing criteria first.
func (h *Handler) handleFixlist(w http.ResponseWriter, r *http.Request) {
	res := h.svc.LatestResult(r.Context())
	if res == nil {
		writeError(w, http.StatusNotFound, "no completed assessment")
		return
	}
	writeJSON(w, http.StatusOK, res.Fixlist)
}
