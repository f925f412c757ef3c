// Package assessment orchestrates the Mall Readiness pipeline: criterion
// scoring, aggregation, tier decision, gate management and result
// persistence. It is the only component that talks to both the gate
// state machine and the persistence adapter.
package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/smros/smros/internal/store"
	"github.com/smros/smros/pkg/aggregate"
	"github.com/smros/smros/pkg/config"
	"github.com/smros/smros/pkg/gate"
	"github.com/smros/smros/pkg/rules"
	"github.com/smros/smros/pkg/scoring"
)

// Result is a completed assessment: the scored criteria, the rollups and
// the gate snapshot attached for audit.
type Result struct {
	AssessmentID string                     `json:"assessment_id"`
	ShopID       string                     `json:"shop_id"`
	TotalScore   float64                    `json:"total_score"`
	Tier         scoring.Tier               `json:"tier"`
	Criteria     []scoring.CriterionResult  `json:"criteria"`
	Breakdown    []aggregate.GroupBreakdown `json:"breakdown"`
	Fixlist      []aggregate.ImpactGapEntry `json:"fixlist"`
	Gate         gate.Snapshot              `json:"gate"`
	CreatedAt    time.Time                  `json:"created_at"`
}

// Clock abstracts time for deadline and TTL tests.
type Clock func() time.Time

// Service runs assessments and owns gate persistence through the tiered
// adapter. The optional db mirrors completed results into Postgres.
type Service struct {
	registry *rules.Registry
	engine   *scoring.Engine
	adapter  *store.Adapter
	resolver gate.Resolver
	cfg      *config.Config
	db       *sql.DB
	now      Clock

	// generation guards against a stale async evaluation overwriting
	// state produced by a newer input change.
	generation atomic.Uint64
}

// NewService creates an assessment service. db may be nil for CLI use;
// clock may be nil for wall-clock time.
func NewService(registry *rules.Registry, engine *scoring.Engine, adapter *store.Adapter, resolver gate.Resolver, cfg *config.Config, db *sql.DB, clock Clock) *Service {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		registry: registry,
		engine:   engine,
		adapter:  adapter,
		resolver: resolver,
		cfg:      cfg,
		db:       db,
		now:      clock,
	}
}

// CurrentAssessmentID returns the active assessment ID, creating one if
// none exists.
func (s *Service) CurrentAssessmentID(ctx context.Context) (string, error) {
	data, err := s.adapter.Get(ctx, store.KeyAssessmentID)
	if err == nil && len(data) > 0 {
		return string(data), nil
	}
	id := uuid.New().String()
	if err := s.adapter.Put(ctx, store.KeyAssessmentID, []byte(id)); err != nil {
		return "", fmt.Errorf("persist assessment id: %w", err)
	}
	return id, nil
}

// SubmitHard runs the Hard-KO evaluation. When every check passes it
// persists the evidence snapshot (primary copy in the session tier, a
// TTL-bound mirror in the durable tier) and creates the Soft-KO record
// if one does not already exist. The evidence is immutable thereafter
// except by Reset.
func (s *Service) SubmitHard(ctx context.Context, in gate.HardInput) ([]gate.CheckResult, bool, error) {
	now := s.now()
	results, evidence := gate.EvaluateHard(ctx, in, s.registry.Hard(), s.resolver, now)
	if evidence == nil {
		return results, false, nil
	}

	data, err := json.Marshal(evidence)
	if err != nil {
		return results, false, fmt.Errorf("marshal hard evidence: %w", err)
	}
	if err := s.adapter.Put(ctx, store.KeyHardEvidence, data); err != nil {
		return results, false, fmt.Errorf("persist hard evidence: %w", err)
	}
	s.mirrorHard(ctx, evidence, now)

	// Create the Soft-KO record once; its deadline anchors here.
	if s.loadSoft(ctx) == nil {
		rec := gate.NewSoftRecord(evidence.VerifiedAt, s.cfg.Gate.RemediationDays, s.registry.SoftSpecs(), now)
		if err := s.saveSoft(ctx, rec); err != nil {
			return results, true, err
		}
	}
	return results, true, nil
}

// mirrorHard writes the TTL envelope keyed by the current assessment ID.
// Mirror failures are logged, not fatal.
func (s *Service) mirrorHard(ctx context.Context, evidence *gate.HardEvidence, now time.Time) {
	id, err := s.CurrentAssessmentID(ctx)
	if err != nil {
		log.Printf("hard mirror skipped: %v", err)
		return
	}
	env := gate.NewEnvelope(evidence, now, s.cfg.Gate.TTLHours)
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("hard mirror skipped: %v", err)
		return
	}
	if err := s.adapter.PutPrefixed(ctx, store.HardCachePrefix, id, data); err != nil {
		log.Printf("hard mirror skipped: %v", err)
	}
}

// GetHard returns the Hard evidence through the read-through cache: the
// session tier first, then the TTL mirror (deleting it when expired),
// then nothing. Absence means the Hard gate has not passed.
func (s *Service) GetHard(ctx context.Context) *gate.HardEvidence {
	if data, err := s.adapter.Get(ctx, store.KeyHardEvidence); err == nil {
		if ev := gate.ParseHard(data); ev != nil {
			return ev
		}
	}

	id, err := s.CurrentAssessmentID(ctx)
	if err != nil {
		return nil
	}
	data, err := s.adapter.GetPrefixed(ctx, store.HardCachePrefix, id)
	if err != nil || data == nil {
		return nil
	}
	ev := gate.OpenEnvelope(data, s.now())
	if ev == nil {
		// Expired or malformed envelope: delete, report a miss.
		s.adapter.DeletePrefixed(ctx, store.HardCachePrefix, id)
		return nil
	}
	// Repopulate the primary copy.
	if raw, err := json.Marshal(ev); err == nil {
		if err := s.adapter.Put(ctx, store.KeyHardEvidence, raw); err != nil {
			log.Printf("hard repopulate failed: %v", err)
		}
	}
	return ev
}

// ApplySoftInput evaluates one Soft-KO input, updates the record and
// returns the derived status. Empty input (nil value) records nothing.
// Writes are refused while the gate is locked.
func (s *Service) ApplySoftInput(ctx context.Context, ruleID string, value *float64, note string) (gate.Status, error) {
	rec := s.loadSoft(ctx)
	if rec == nil {
		return gate.StatusUnknown, fmt.Errorf("no soft gate record; hard gate has not passed")
	}

	specs := s.registry.SoftSpecs()
	now := s.now()

	if s.lockActive(ctx, rec, specs, now) {
		return rec.Status, fmt.Errorf("soft gate is locked; reset to edit")
	}

	spec, ok := s.registry.SoftSpec(ruleID)
	if !ok {
		return rec.Status, fmt.Errorf("unknown soft criterion %s", ruleID)
	}

	gate.ApplyItem(rec, spec, value, note, specs, now)
	if err := s.saveSoft(ctx, rec); err != nil {
		return rec.Status, err
	}

	if rec.Status == gate.StatusPass {
		if err := s.adapter.Put(ctx, store.KeyLock, []byte("1")); err != nil {
			log.Printf("lock write failed: %v", err)
		}
	}
	return rec.Status, nil
}

// lockActive reads the lock flag and reconciles it against the freshly
// derived status: a lock can never outlive a non-passing status.
func (s *Service) lockActive(ctx context.Context, rec *gate.SoftRecord, specs []rules.SoftSpec, now time.Time) bool {
	data, err := s.adapter.Get(ctx, store.KeyLock)
	locked := err == nil && string(data) == "1"

	status := gate.DeriveStatus(rec, specs, now)
	reconciled := gate.ReconcileLock(locked, status)
	if locked && !reconciled {
		s.adapter.Delete(ctx, store.KeyLock)
	}
	return reconciled
}

// GateSnapshot derives the overall gate state for attachment to results
// and for the status endpoints. Absence of Hard evidence is G0; absence
// of everything is UNKNOWN.
func (s *Service) GateSnapshot(ctx context.Context) gate.Snapshot {
	hard := s.GetHard(ctx)
	soft := s.loadSoft(ctx)

	snap := gate.Snapshot{Status: gate.StatusUnknown, Hard: hard, Soft: soft}
	switch {
	case hard == nil && soft == nil:
		snap.Status = gate.StatusUnknown
	case hard == nil:
		snap.Status = gate.StatusHardBlocked
	case soft == nil:
		snap.Status = gate.StatusHardBlocked
	default:
		snap.Status = gate.DeriveStatus(soft, s.registry.SoftSpecs(), s.now())
		soft.Status = snap.Status
	}
	return snap
}

// Evaluate runs the full scoring pipeline for the given inputs and
// persists the completed result. Re-running with identical inputs yields
// an identical result apart from the timestamps and IDs.
func (s *Service) Evaluate(ctx context.Context, shopID string, inputs map[string]any) (*Result, error) {
	gen := s.generation.Add(1)

	criteria := s.engine.ScoreAll(ctx, inputs)
	criteria = aggregate.Normalize(criteria, rules.PrefixClassifier)

	id, err := s.CurrentAssessmentID(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{
		AssessmentID: id,
		ShopID:       shopID,
		TotalScore:   scoring.Total(criteria),
		Criteria:     criteria,
		Breakdown:    aggregate.Breakdown(criteria),
		Fixlist:      aggregate.TopFixlist(criteria, s.cfg.Scoring.FixlistSize),
		Gate:         s.GateSnapshot(ctx),
		CreatedAt:    s.now().UTC(),
	}
	res.Tier = scoring.TierFromScore(res.TotalScore)

	// A newer evaluation started while this one awaited its async
	// scorers; drop this result instead of clobbering fresher state.
	if s.generation.Load() != gen {
		return res, nil
	}

	if err := s.persistResult(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) persistResult(ctx context.Context, res *Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := s.adapter.Put(ctx, store.KeyResult, data); err != nil {
		return fmt.Errorf("persist result: %w", err)
	}

	if s.db == nil {
		return nil
	}
	breakdown, _ := json.Marshal(res.Breakdown)
	fixlist, _ := json.Marshal(res.Fixlist)
	gateSnap, _ := json.Marshal(res.Gate)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, shop_id, total_score, tier, gate_status, payload, breakdown, fixlist, gate, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE
		   SET total_score = EXCLUDED.total_score, tier = EXCLUDED.tier,
		       gate_status = EXCLUDED.gate_status, payload = EXCLUDED.payload,
		       breakdown = EXCLUDED.breakdown, fixlist = EXCLUDED.fixlist,
		       gate = EXCLUDED.gate`,
		res.AssessmentID, res.ShopID, res.TotalScore, string(res.Tier), string(res.Gate.Status),
		data, breakdown, fixlist, gateSnap, res.CreatedAt,
	)
	if err != nil {
		// Remote mirror is best-effort; local tiers already hold the result.
		log.Printf("assessment row upsert failed: %v", err)
	}
	return nil
}

// LatestResult reads the last completed result from the local tiers.
func (s *Service) LatestResult(ctx context.Context) *Result {
	data, err := s.adapter.Get(ctx, store.KeyResult)
	if err != nil || len(data) == 0 {
		return nil
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil
	}
	return &res
}

// Reset deletes all gate and assessment state. This is the only path
// that removes Hard evidence or the Soft record.
func (s *Service) Reset(ctx context.Context) {
	id, err := s.CurrentAssessmentID(ctx)
	if err == nil {
		s.adapter.DeletePrefixed(ctx, store.HardCachePrefix, id)
	}
	s.adapter.Delete(ctx, store.KeyHardEvidence)
	s.adapter.Delete(ctx, store.KeySoftRecord)
	s.adapter.Delete(ctx, store.KeyResult)
	s.adapter.Delete(ctx, store.KeyLock)
	s.adapter.Delete(ctx, store.KeyAssessmentID)
}

func (s *Service) loadSoft(ctx context.Context) *gate.SoftRecord {
	data, err := s.adapter.Get(ctx, store.KeySoftRecord)
	if err != nil {
		return nil
	}
	return gate.ParseSoft(data)
}

func (s *Service) saveSoft(ctx context.Context, rec *gate.SoftRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal soft record: %w", err)
	}
	if err := s.adapter.Put(ctx, store.KeySoftRecord, data); err != nil {
		return fmt.Errorf("persist soft record: %w", err)
	}
	return nil
}
