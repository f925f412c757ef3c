package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// RemoteTier mirrors gate state into a Postgres document table. It is
// strictly best-effort: every failure is reported as a miss or a
// RemoteResult with OK=false, never as an error the caller must handle.
// The core does not retry remote failures; it falls back to local tiers.
type RemoteTier struct {
	db *sql.DB
}

// NewRemoteTier wraps an open Postgres handle. The gate_documents table
// is created by the platform migrations.
func NewRemoteTier(db *sql.DB) *RemoteTier {
	return &RemoteTier{db: db}
}

func (r *RemoteTier) Name() string { return "remote" }

func (r *RemoteTier) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM gate_documents WHERE key = $1`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("remote get %s: %w", key, err)
	}
	return value, nil
}

func (r *RemoteTier) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO gate_documents (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("remote put %s: %w", key, err)
	}
	return nil
}

func (r *RemoteTier) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM gate_documents WHERE key = $1`, key); err != nil {
		return fmt.Errorf("remote delete %s: %w", key, err)
	}
	return nil
}

// RemoteResult is the outcome of a best-effort remote fetch. Doc is nil
// on not-found; OK is false only on infrastructure failure, with Reason
// carrying the cause.
type RemoteResult struct {
	OK     bool
	Reason string
	Doc    json.RawMessage
}

// FetchLatestAssessment returns the newest completed assessment document
// for a shop, or an assessment by ID when assessmentID is non-empty.
// Not-found is a successful result with a nil Doc.
func (r *RemoteTier) FetchLatestAssessment(ctx context.Context, shopID, assessmentID string) RemoteResult {
	query := `SELECT payload FROM assessments WHERE shop_id = $1 ORDER BY created_at DESC LIMIT 1`
	arg := shopID
	if assessmentID != "" {
		query = `SELECT payload FROM assessments WHERE id = $1`
		arg = assessmentID
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&payload)
	if err == sql.ErrNoRows {
		return RemoteResult{OK: true}
	}
	if err != nil {
		return RemoteResult{OK: false, Reason: err.Error()}
	}
	return RemoteResult{OK: true, Doc: payload}
}
