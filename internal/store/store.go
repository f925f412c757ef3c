// Package store implements the tiered persistence adapter for gate and
// assessment state. Logical keys are read through a declared priority
// list of tiers (session -> durable -> remote); the adapter owns only
// the storage mechanics, never the interpretation of what it stores.
package store

import (
	"context"
	"fmt"
)

// Logical keys the core reads and writes through the adapter.
const (
	KeyAssessmentID = "current_assessment_id"
	KeyHardEvidence = "hard_evidence"
	KeySoftRecord   = "soft_record"
	KeyResult       = "assessment_result"
	KeyLock         = "soft_gate_lock"

	// HardCachePrefix prefixes the TTL-mirror key for a given assessment.
	HardCachePrefix = "hard_cache:"
)

// Tier is one storage layer. Get returns (nil, nil) on a clean miss;
// only infrastructure failures surface as errors.
type Tier interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Adapter reads each logical key through its tier priority list and
// writes through to every tier in the list. Tier failures on read fall
// through to the next tier; a remote tier that errors is a miss, never a
// hard failure.
type Adapter struct {
	priority map[string][]Tier
	fallback []Tier
}

// NewAdapter creates an adapter with a default tier order used for any
// key without an explicit priority list.
func NewAdapter(defaultOrder ...Tier) *Adapter {
	return &Adapter{
		priority: make(map[string][]Tier),
		fallback: defaultOrder,
	}
}

// Declare sets the tier priority list for one logical key.
func (a *Adapter) Declare(key string, tiers ...Tier) {
	a.priority[key] = tiers
}

func (a *Adapter) tiersFor(key string) []Tier {
	if t, ok := a.priority[key]; ok {
		return t
	}
	return a.fallback
}

// Get reads a key through its priority list. The first tier that returns
// data wins; tier errors are skipped. A miss everywhere returns
// (nil, nil).
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	tiers := a.tiersFor(key)
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no tiers declared for key %s", key)
	}
	for _, t := range tiers {
		data, err := t.Get(ctx, key)
		if err != nil {
			continue
		}
		if data != nil {
			return data, nil
		}
	}
	return nil, nil
}

// GetPrefixed reads a dynamic key (e.g. the hard-evidence TTL mirror)
// through the priority list declared for its prefix.
func (a *Adapter) GetPrefixed(ctx context.Context, prefix, suffix string) ([]byte, error) {
	tiers := a.priority[prefix]
	if tiers == nil {
		tiers = a.fallback
	}
	key := prefix + suffix
	for _, t := range tiers {
		data, err := t.Get(ctx, key)
		if err != nil {
			continue
		}
		if data != nil {
			return data, nil
		}
	}
	return nil, nil
}

// Put writes a key to every tier in its priority list. The write
// succeeds if at least one tier accepts it; per-tier failures are
// collected into the returned error only when all tiers fail.
func (a *Adapter) Put(ctx context.Context, key string, value []byte) error {
	return a.putKey(ctx, a.tiersFor(key), key, value)
}

// PutPrefixed writes a dynamic key through its prefix's priority list.
func (a *Adapter) PutPrefixed(ctx context.Context, prefix, suffix string, value []byte) error {
	tiers := a.priority[prefix]
	if tiers == nil {
		tiers = a.fallback
	}
	return a.putKey(ctx, tiers, prefix+suffix, value)
}

func (a *Adapter) putKey(ctx context.Context, tiers []Tier, key string, value []byte) error {
	if len(tiers) == 0 {
		return fmt.Errorf("no tiers declared for key %s", key)
	}
	var lastErr error
	wrote := false
	for _, t := range tiers {
		if err := t.Put(ctx, key, value); err != nil {
			lastErr = fmt.Errorf("tier %s: %w", t.Name(), err)
			continue
		}
		wrote = true
	}
	if !wrote {
		return fmt.Errorf("put %s: %w", key, lastErr)
	}
	return nil
}

// Delete removes a key from every tier in its priority list. Tier
// failures are ignored; deletion is best-effort.
func (a *Adapter) Delete(ctx context.Context, key string) {
	for _, t := range a.tiersFor(key) {
		_ = t.Delete(ctx, key)
	}
}

// DeletePrefixed removes a dynamic key from its prefix's tiers.
func (a *Adapter) DeletePrefixed(ctx context.Context, prefix, suffix string) {
	tiers := a.priority[prefix]
	if tiers == nil {
		tiers = a.fallback
	}
	for _, t := range tiers {
		_ = t.Delete(ctx, prefix+suffix)
	}
}
