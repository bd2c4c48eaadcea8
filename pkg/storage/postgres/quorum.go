// SPDX-License-Identifier: LGPL-3.0-or-later

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuorumStore is a durable kms.QuorumStore backed by PostgreSQL, for
// deployments where approvals must survive a gateway restart. Key layout
// follows spec §6: approval:<rid_hex>:<approver>, count:<rid_hex> — here
// expressed as rows in a quorum_approvals table rather than a KV prefix
// scan, since pgx gives us real transactions instead.
type QuorumStore struct {
	db *pgxpool.Pool
}

// NewQuorumStore wraps an already-connected pool. Schema (quorum_approvals
// with columns rid, approver, approved_at, primary key (rid, approver)) is
// expected to be provisioned out of band by a migration.
func NewQuorumStore(pool *pgxpool.Pool) *QuorumStore {
	return &QuorumStore{db: pool}
}

// AddApproval records an approval for rid, keyed on (rid, approver) so a
// repeated approval from the same approver does not inflate the count.
// Mirrors nonces.go's check-then-store transaction shape, but here the
// insert itself is the dedup: ON CONFLICT ... DO UPDATE keeps one row per
// (rid, approver), refreshing approved_at, without a separate existence
// check.
func (q *QuorumStore) AddApproval(rid, approver string, now time.Time) error {
	ctx := context.Background()
	tx, err := q.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin approval transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO quorum_approvals (rid, approver, approved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (rid, approver) DO UPDATE SET approved_at = EXCLUDED.approved_at
	`, rid, approver, now)
	if err != nil {
		return fmt.Errorf("record approval: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit approval: %w", err)
	}
	return nil
}

// CountApprovals reports the number of distinct approvers recorded for rid.
func (q *QuorumStore) CountApprovals(rid string) (int, error) {
	ctx := context.Background()
	var count int
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM quorum_approvals WHERE rid = $1
	`, rid).Scan(&count)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("count approvals: %w", err)
	}
	return count, nil
}

// CleanupOlderThan deletes approval rows older than cutoff, the durable
// equivalent of cleanup_old_approvals in spec §6.
func (q *QuorumStore) CleanupOlderThan(cutoff time.Time) error {
	ctx := context.Background()
	_, err := q.db.Exec(ctx, `DELETE FROM quorum_approvals WHERE approved_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup expired approvals: %w", err)
	}
	return nil
}
