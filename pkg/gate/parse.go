package gate

import (
	"encoding/json"
	"time"
)

// ParseHard decodes persisted Hard evidence. Malformed JSON or a missing
// verification timestamp yields nil: absence, never a default pass.
func ParseHard(data []byte) *HardEvidence {
	if len(data) == 0 {
		return nil
	}
	var ev HardEvidence
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil
	}
	if ev.VerifiedAt.IsZero() {
		return nil
	}
	return &ev
}

// ParseSoft decodes a persisted Soft-KO record under the same fail-closed
// discipline. The caller should re-derive the status after parsing rather
// than trusting the stored one.
func ParseSoft(data []byte) *SoftRecord {
	if len(data) == 0 {
		return nil
	}
	var rec SoftRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	if rec.VerifiedAt.IsZero() {
		return nil
	}
	if rec.Soft.Items == nil {
		rec.Soft.Items = map[string]SoftItem{}
	}
	return &rec
}

// NewEnvelope wraps Hard evidence in a TTL cache envelope.
func NewEnvelope(hard *HardEvidence, now time.Time, ttlHours int) *Envelope {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	expires := now.UTC().Add(time.Duration(ttlHours) * time.Hour)
	return &Envelope{Hard: hard, CachedAt: now.UTC(), ExpiresAt: &expires}
}

// OpenEnvelope decodes a cached mirror and returns the embedded evidence
// if the envelope is still live. A missing expiry or a lapsed one makes
// the envelope invalid; the caller must delete it and fall back to the
// durable tier.
func OpenEnvelope(data []byte, now time.Time) *HardEvidence {
	if len(data) == 0 {
		return nil
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	if env.ExpiresAt == nil || now.After(*env.ExpiresAt) {
		return nil
	}
	if env.Hard == nil || env.Hard.VerifiedAt.IsZero() {
		return nil
	}
	return env.Hard
}
