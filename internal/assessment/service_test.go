package assessment

import (
	"context"
	"testing"
	"time"

	"github.com/smros/smros/internal/store"
	"github.com/smros/smros/pkg/config"
	"github.com/smros/smros/pkg/gate"
	"github.com/smros/smros/pkg/rules"
	"github.com/smros/smros/pkg/scoring"
)

type upProbe struct{}

func (upProbe) Reachable(_ context.Context, _ string) bool { return true }

type yesClassifier struct{}

func (yesClassifier) Classify(_ context.Context, _ []byte) (scoring.ImageTraits, error) {
	return scoring.ImageTraits{WhiteBg: true, Lifestyle: true}, nil
}

type okResolver struct{}

func (okResolver) ResolvesA(_ context.Context, _ string) bool { return true }

// testClock is a settable clock for deadline and TTL scenarios.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, clock *testClock) *Service {
	t.Helper()
	registry := rules.Default()
	engine := scoring.NewEngine(registry, &scoring.CustomScorers{
		Probe:      upProbe{},
		Classifier: yesClassifier{},
	})
	session := store.NewMemoryTier()
	durable := store.NewMemoryTier()
	adapter := store.NewAdapter(session, durable)
	adapter.Declare(store.KeyHardEvidence, session)
	adapter.Declare(store.HardCachePrefix, durable)
	adapter.Declare(store.KeySoftRecord, durable)
	adapter.Declare(store.KeyResult, durable)
	adapter.Declare(store.KeyLock, durable)

	return NewService(registry, engine, adapter, okResolver{}, config.DefaultConfig(), nil, clock.Now)
}

func passingHardInput() gate.HardInput {
	return gate.HardInput{
		ShopInfo: map[string]string{
			"shop_name": "Shop", "owner_name": "Owner", "tax_code": "123",
			"address": "HCMC", "phone": "090", "email": "a@b.c",
		},
		Metrics: map[string]any{
			"operating_months":    12.0,
			"vat_invoice":         "Có",
			"no_severe_violation": true,
			"brand_domain":        "shop.example.com",
		},
		Files: map[string]gate.FileMeta{
			"business_licence": {Filename: "giay phep.pdf", MimeType: "application/pdf"},
			"trademark_cert":   {Filename: "trademark.pdf", MimeType: "application/pdf"},
			"quality_cert":     {Filename: "cong bo.pdf", MimeType: "application/pdf"},
		},
	}
}

func perfectInputs() map[string]any {
	return map[string]any{
		"OP-01": 3.0, "OP-02": 1.0, "OP-03": 1.0, "OP-04": 4.9,
		"CS-01": 95.0, "CS-02": 5.0, "PEN-01": 0.0, "CO-01": 2.0,
		"BR-01": true,
		"BR-02": "https://shop.example.com",
		"BR-03": scoring.SocialProof{PageURL: "https://fb.example.com/shop", Followers: 5000},
		"BR-04": "a brand with a story",
		"BR-05": scoring.ImagePair{Primary: []byte{1}, Secondary: []byte{2}},
		"CAT-01": 100.0, "CAT-02": 90.0, "CAT-03": true,
		"SC-01": 150.0, "SC-02": 400.0, "SC-03": 25.0,
	}
}

func TestEvaluatePerfectScore(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	res, err := svc.Evaluate(context.Background(), "shop-1", perfectInputs())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.TotalScore != 100.00 {
		t.Errorf("total = %.2f, want 100.00", res.TotalScore)
	}
	if res.Tier != scoring.TierMallReady {
		t.Errorf("tier = %s, want Mall-Ready", res.Tier)
	}
	if len(res.Criteria) != 19 {
		t.Errorf("expected 19 criteria, got %d", len(res.Criteria))
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)
	ctx := context.Background()

	first, err := svc.Evaluate(ctx, "shop-1", perfectInputs())
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Evaluate(ctx, "shop-1", perfectInputs())
	if err != nil {
		t.Fatal(err)
	}
	if first.TotalScore != second.TotalScore || first.Tier != second.Tier {
		t.Errorf("re-evaluation drifted: %.2f/%s vs %.2f/%s",
			first.TotalScore, first.Tier, second.TotalScore, second.Tier)
	}
	for i := range first.Criteria {
		if first.Criteria[i].Score != second.Criteria[i].Score {
			t.Errorf("criterion %s score drifted", first.Criteria[i].RuleID)
		}
	}
}

func TestSubmitHardCreatesSoftRecord(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)
	ctx := context.Background()

	results, passed, err := svc.SubmitHard(ctx, passingHardInput())
	if err != nil {
		t.Fatalf("SubmitHard: %v", err)
	}
	if !passed {
		for _, r := range results {
			if !r.Passed {
				t.Logf("failed check: %s (%s)", r.ID, r.Reason)
			}
		}
		t.Fatal("expected hard gate to pass")
	}

	snap := svc.GateSnapshot(ctx)
	if snap.Status != gate.StatusSoftPending {
		t.Errorf("fresh soft record status = %s, want G1", snap.Status)
	}
	if snap.Hard == nil || snap.Soft == nil {
		t.Error("snapshot should carry both gate records")
	}
}

func TestSubmitHardFailureLeavesGateBlocked(t *testing.T) {
	clock := &testClock{t: time.Now()}
	svc := newTestService(t, clock)
	ctx := context.Background()

	in := passingHardInput()
	in.Metrics["vat_invoice"] = "Không"
	_, passed, err := svc.SubmitHard(ctx, in)
	if err != nil || passed {
		t.Fatalf("expected clean failure, got passed=%v err=%v", passed, err)
	}
	if snap := svc.GateSnapshot(ctx); snap.Status != gate.StatusUnknown {
		t.Errorf("no state written, status = %s, want UNKNOWN", snap.Status)
	}
}

func TestHardMirrorReadThroughAndTTL(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := &testClock{t: start}
	svc := newTestService(t, clock)
	ctx := context.Background()

	if _, passed, _ := svc.SubmitHard(ctx, passingHardInput()); !passed {
		t.Fatal("hard gate should pass")
	}

	// Drop the session-tier primary; the mirror must serve the read.
	svc.adapter.Delete(ctx, store.KeyHardEvidence)
	if ev := svc.GetHard(ctx); ev == nil {
		t.Fatal("TTL mirror should serve a read-through hit")
	}

	// Expire the mirror and drop the (repopulated) primary again.
	svc.adapter.Delete(ctx, store.KeyHardEvidence)
	clock.t = start.Add(25 * time.Hour)
	if ev := svc.GetHard(ctx); ev != nil {
		t.Error("expired mirror must read as absent")
	}
	// The expired envelope is deleted on read.
	id, _ := svc.CurrentAssessmentID(ctx)
	data, _ := svc.adapter.GetPrefixed(ctx, store.HardCachePrefix, id)
	if data != nil {
		t.Error("expired envelope should have been deleted")
	}
}

func TestSoftGateLifecycle(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := &testClock{t: start}
	svc := newTestService(t, clock)
	ctx := context.Background()

	if _, passed, _ := svc.SubmitHard(ctx, passingHardInput()); !passed {
		t.Fatal("hard gate should pass")
	}

	v := func(x float64) *float64 { return &x }

	// One failing item at T+6d: still pending.
	clock.t = start.Add(6 * 24 * time.Hour)
	status, err := svc.ApplySoftInput(ctx, "SC-02", v(100), "orders below floor")
	if err != nil {
		t.Fatalf("ApplySoftInput: %v", err)
	}
	if status != gate.StatusSoftPending {
		t.Errorf("T+6d status = %s, want G1", status)
	}

	// Same failing item at T+8d: overdue.
	clock.t = start.Add(8 * 24 * time.Hour)
	status, _ = svc.ApplySoftInput(ctx, "SC-02", v(100), "still failing")
	if status != gate.StatusSoftOverdue {
		t.Errorf("T+8d status = %s, want G2", status)
	}

	// All four passing: PASS regardless of deadline, and the lock engages.
	for _, in := range []struct {
		id  string
		val float64
	}{{"OP-04", 4.8}, {"PEN-01", 0}, {"CO-01", 5}, {"SC-02", 400}} {
		status, err = svc.ApplySoftInput(ctx, in.id, v(in.val), "")
		if err != nil {
			t.Fatalf("ApplySoftInput(%s): %v", in.id, err)
		}
	}
	if status != gate.StatusPass {
		t.Errorf("all passing status = %s, want PASS", status)
	}

	// Locked: further edits are refused.
	if _, err := svc.ApplySoftInput(ctx, "SC-02", v(100), ""); err == nil {
		t.Error("expected locked gate to refuse edits")
	}
}

func TestLockReconciledWhenStatusRegresses(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := &testClock{t: start}
	svc := newTestService(t, clock)
	ctx := context.Background()

	if _, passed, _ := svc.SubmitHard(ctx, passingHardInput()); !passed {
		t.Fatal("hard gate should pass")
	}
	v := func(x float64) *float64 { return &x }
	svc.ApplySoftInput(ctx, "SC-02", v(100), "failing")

	// Simulate tampering: lock set while the gate is not passing.
	if err := svc.adapter.Put(ctx, store.KeyLock, []byte("1")); err != nil {
		t.Fatal(err)
	}

	// The next edit must reconcile the lock away and be accepted.
	status, err := svc.ApplySoftInput(ctx, "SC-02", v(120), "still failing")
	if err != nil {
		t.Fatalf("reconciled gate should accept the edit: %v", err)
	}
	if status != gate.StatusSoftPending {
		t.Errorf("status = %s, want G1", status)
	}
	data, _ := svc.adapter.Get(ctx, store.KeyLock)
	if string(data) == "1" {
		t.Error("stale lock must have been cleared")
	}
}

func TestResetClearsEverything(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)
	ctx := context.Background()

	svc.SubmitHard(ctx, passingHardInput())
	svc.Evaluate(ctx, "shop-1", perfectInputs())
	svc.Reset(ctx)

	if svc.GetHard(ctx) != nil {
		t.Error("reset should remove hard evidence")
	}
	if svc.LatestResult(ctx) != nil {
		t.Error("reset should remove the stored result")
	}
	if snap := svc.GateSnapshot(ctx); snap.Status != gate.StatusUnknown {
		t.Errorf("post-reset status = %s, want UNKNOWN", snap.Status)
	}
}

func TestCorruptedSoftRecordIsAbsence(t *testing.T) {
	clock := &testClock{t: time.Now()}
	svc := newTestService(t, clock)
	ctx := context.Background()

	if err := svc.adapter.Put(ctx, store.KeySoftRecord, []byte("{corrupted")); err != nil {
		t.Fatal(err)
	}
	v := 4.8
	if _, err := svc.ApplySoftInput(ctx, "OP-04", &v, ""); err == nil {
		t.Error("corrupted record must read as absence, refusing the edit")
	}
}
