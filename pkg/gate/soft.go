package gate

import (
	"time"

	"github.com/smros/smros/pkg/rules"
)

// DefaultRemediationDays is the grace period granted at gate creation.
const DefaultRemediationDays = 7

// NewSoftRecord creates the Soft-KO record when the Hard gate passes.
// The deadline anchors to the Hard-gate verification instant and is
// never extended by later edits.
func NewSoftRecord(verifiedAt time.Time, remediationDays int, required []rules.SoftSpec, now time.Time) *SoftRecord {
	if remediationDays <= 0 {
		remediationDays = DefaultRemediationDays
	}
	rec := &SoftRecord{
		VerifiedAt: verifiedAt.UTC(),
		Soft: SoftState{
			DeadlineAt: verifiedAt.UTC().Add(time.Duration(remediationDays) * 24 * time.Hour).Format(time.RFC3339),
			Items:      map[string]SoftItem{},
		},
	}
	rec.Status = DeriveStatus(rec, required, now)
	return rec
}

// ApplyItem evaluates one Soft-KO input against its spec and updates the
// record, then re-derives the status. Empty input writes no item: "not
// yet evaluated" is distinct from "failed". Returns whether an item was
// written.
func ApplyItem(rec *SoftRecord, spec rules.SoftSpec, raw *float64, note string, required []rules.SoftSpec, now time.Time) bool {
	if rec == nil || raw == nil {
		if rec != nil {
			rec.Status = DeriveStatus(rec, required, now)
		}
		return false
	}
	if rec.Soft.Items == nil {
		rec.Soft.Items = map[string]SoftItem{}
	}

	passed := spec.Pass(*raw)
	item, existed := rec.Soft.Items[spec.RuleID]
	ts := now.UTC()
	if existed && passed && !item.Passed {
		item.FixedAt = &ts
	}
	if existed && !passed && item.Passed {
		item.RegressedAt = &ts
	}
	item.Passed = passed
	item.Note = note
	rec.Soft.Items[spec.RuleID] = item

	rec.Status = DeriveStatus(rec, required, now)
	return true
}

// DeriveStatus recomputes the gate status from the items and deadline.
// All required criteria recorded and passed -> PASS. Otherwise the
// deadline decides between pending and overdue; a missing or unparseable
// deadline is overdue, never pending.
func DeriveStatus(rec *SoftRecord, required []rules.SoftSpec, now time.Time) Status {
	if rec == nil {
		return StatusUnknown
	}

	allPassed := len(required) > 0
	for _, spec := range required {
		item, ok := rec.Soft.Items[spec.RuleID]
		if !ok || !item.Passed {
			allPassed = false
			break
		}
	}
	if allPassed {
		return StatusPass
	}

	deadline, err := time.Parse(time.RFC3339, rec.Soft.DeadlineAt)
	if err != nil {
		return StatusSoftOverdue
	}
	if now.After(deadline) {
		return StatusSoftOverdue
	}
	return StatusSoftPending
}

// ReconcileLock enforces that the edit lock never outlives a non-passing
// status. Returns the corrected lock value.
func ReconcileLock(locked bool, status Status) bool {
	if locked && status != StatusPass {
		return false
	}
	return locked
}
