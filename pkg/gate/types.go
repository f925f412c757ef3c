// Package gate implements the Mall Readiness gate state machine: the
// Hard-KO eligibility gate, the Soft-KO remediation gate with its
// deadline-driven status derivation, and the TTL-bound evidence mirror.
// Every parse of externally-sourced state is fail-closed: malformed or
// schema-deficient input is absence, never a default pass.
package gate

import "time"

// Status is the derived Soft-KO gate status. It is never set directly;
// DeriveStatus recomputes it from the items and the deadline.
type Status string

const (
	StatusUnknown     Status = "UNKNOWN"
	StatusHardBlocked Status = "G0"
	StatusSoftPending Status = "G1"
	StatusSoftOverdue Status = "G2"
	StatusPass        Status = "PASS"
)

// FileMeta describes an uploaded Hard-KO document.
type FileMeta struct {
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
	StorageRef string `json:"storage_ref,omitempty"`
}

// HardEvidence is the immutable snapshot created when every Hard-KO
// check passes. It is never mutated afterwards except by explicit reset.
type HardEvidence struct {
	VerifiedAt time.Time           `json:"verifiedAt"`
	ShopInfo   map[string]string   `json:"shopInfo"`
	Metrics    map[string]any      `json:"metrics"`
	FilesMeta  map[string]FileMeta `json:"files_meta"`
}

// SoftItem is the recorded outcome of one Soft-KO criterion.
type SoftItem struct {
	Passed      bool       `json:"passed"`
	Note        string     `json:"note"`
	FixedAt     *time.Time `json:"fixed_at"`
	RegressedAt *time.Time `json:"regressed_at"`
}

// SoftState carries the remediation deadline and per-criterion items.
// DeadlineAt stays a string so an unparseable value degrades to overdue
// instead of invalidating the whole record.
type SoftState struct {
	DeadlineAt string              `json:"deadline_at"`
	Items      map[string]SoftItem `json:"items"`
}

// SoftRecord is the Soft-KO gate record. Created when the Hard gate
// passes, mutated in place as inputs change, never deleted except by
// explicit reset.
type SoftRecord struct {
	VerifiedAt time.Time `json:"verified_at"`
	Status     Status    `json:"gate_status"`
	Soft       SoftState `json:"soft"`
}

// Envelope is the TTL-bound cache wrapper around mirrored Hard evidence.
type Envelope struct {
	Hard      *HardEvidence `json:"hard"`
	CachedAt  time.Time     `json:"cachedAt"`
	ExpiresAt *time.Time    `json:"expiresAt"`
}

// Snapshot is the gate state attached to a completed assessment result
// for audit.
type Snapshot struct {
	Status Status        `json:"status"`
	Hard   *HardEvidence `json:"hard,omitempty"`
	Soft   *SoftRecord   `json:"soft,omitempty"`
}
