// Package api implements the hosted Mall Readiness REST API.
// It exposes gate evaluation, scoring and evidence-document endpoints
// backed by the assessment service, Postgres and blob storage.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/smros/smros/internal/assessment"
	"github.com/smros/smros/internal/evidence"
	"github.com/smros/smros/internal/store"
)

// Handler is the top-level API handler for the hosted readiness service.
type Handler struct {
	svc     *assessment.Service
	remote  *store.RemoteTier
	storage evidence.StorageClient
	cache   *ResultCache
	metrics *Metrics
}

// NewHandler creates a new API handler. remote and storage may be nil
// when the daemon runs without Postgres or blob storage; the affected
// endpoints answer 503.
func NewHandler(svc *assessment.Service, remote *store.RemoteTier, storage evidence.StorageClient, cache *ResultCache, metrics *Metrics) *Handler {
	if cache == nil {
		cache = NewResultCacheFromEnv()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Handler{
		svc:     svc,
		remote:  remote,
		storage: storage,
		cache:   cache,
		metrics: metrics,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Gate state machine
	mux.HandleFunc("POST /api/v1/gate/hard", h.handleSubmitHard)
	mux.HandleFunc("POST /api/v1/gate/soft/{ruleID}", h.handleApplySoft)
	mux.HandleFunc("GET /api/v1/gate", h.handleGateStatus)

	// Scoring
	mux.HandleFunc("POST /api/v1/assessments", h.handleEvaluate)
	mux.HandleFunc("GET /api/v1/assessments/latest", h.handleLatest)
	mux.HandleFunc("GET /api/v1/assessments/{assessmentID}", h.handleGetAssessment)
	mux.HandleFunc("GET /api/v1/fixlist", h.handleFixlist)

	// Evidence documents
	mux.HandleFunc("POST /api/v1/shops/{shopID}/documents/{docID}", h.handleUploadDocument)
	mux.HandleFunc("GET /api/v1/shops/{shopID}/documents/{docID}", h.handleGetDocument)

	// Lifecycle
	mux.HandleFunc("POST /api/v1/reset", h.handleReset)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
