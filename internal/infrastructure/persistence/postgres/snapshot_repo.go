package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
	"github.com/nextedu/portal/pkg/circuitbreaker"
	"github.com/nextedu/portal/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// DefaultSnapshotName is the row that holds the live directory.
const DefaultSnapshotName = "portal"

// DefaultHistoryDepth is how many previous saves are kept.
const DefaultHistoryDepth = 20

// SnapshotRepository implements directory.SnapshotStore on a JSONB row.
type SnapshotRepository struct {
	conn    *Connection
	name    string
	depth   int
	breaker *circuitbreaker.CircuitBreaker
	retrier *retry.Retrier
}

// SnapshotOption configures SnapshotRepository.
type SnapshotOption func(*SnapshotRepository)

// WithSnapshotName stores the snapshot under another row name.
func WithSnapshotName(name string) SnapshotOption {
	return func(r *SnapshotRepository) { r.name = name }
}

// WithHistoryDepth changes how many saves are kept in history. Zero disables history.
func WithHistoryDepth(n int) SnapshotOption {
	return func(r *SnapshotRepository) { r.depth = n }
}

// WithBreaker guards every call with a circuit breaker.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) SnapshotOption {
	return func(r *SnapshotRepository) { r.breaker = cb }
}

// WithRetrier replaces the retry policy for transient errors.
func WithRetrier(rt *retry.Retrier) SnapshotOption {
	return func(r *SnapshotRepository) { r.retrier = rt }
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(conn *Connection, opts ...SnapshotOption) *SnapshotRepository {
	r := &SnapshotRepository{
		conn:    conn,
		name:    DefaultSnapshotName,
		depth:   DefaultHistoryDepth,
		retrier: retry.SnapshotRetrier(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ directory.VersionedSnapshotStore = (*SnapshotRepository)(nil)

// Load returns the stored snapshot or shared.ErrSnapshotNotFound.
func (r *SnapshotRepository) Load(ctx context.Context) (*directory.Snapshot, error) {
	var payload []byte
	err := r.call(ctx, func(ctx context.Context) error {
		return r.conn.QueryRow(ctx, `SELECT payload FROM portal_snapshots WHERE name = $1`, r.name).Scan(&payload)
	})
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot %q: %w", r.name, err)
	}

	var snap directory.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, shared.WrapError("snapshot", "Load", shared.ErrSnapshotCorrupt, "snapshot cannot be decoded", err)
	}
	return &snap, nil
}

// Save replaces the stored snapshot and appends it to history,
// pruning history to the configured depth.
func (r *SnapshotRepository) Save(ctx context.Context, snap *directory.Snapshot) error {
	if snap == nil {
		return errors.New("postgres: nil snapshot")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	return r.call(ctx, func(ctx context.Context) error {
		return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `
				INSERT INTO portal_snapshots (name, payload, students, teachers, pending_registrations, saved_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, NOW())
				ON CONFLICT (name) DO UPDATE SET
					payload = EXCLUDED.payload,
					students = EXCLUDED.students,
					teachers = EXCLUDED.teachers,
					pending_registrations = EXCLUDED.pending_registrations,
					saved_at = EXCLUDED.saved_at,
					updated_at = NOW()
			`, r.name, payload, len(snap.Students), len(snap.Teachers), len(snap.Registrations), savedAt)
			if err != nil {
				return fmt.Errorf("failed to upsert snapshot: %w", err)
			}

			if r.depth <= 0 {
				return nil
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO portal_snapshot_history (name, payload, students, teachers, saved_at)
				VALUES ($1, $2, $3, $4, $5)
			`, r.name, payload, len(snap.Students), len(snap.Teachers), savedAt); err != nil {
				return fmt.Errorf("failed to append snapshot history: %w", err)
			}
			_, err = tx.Exec(ctx, `
				DELETE FROM portal_snapshot_history
				WHERE name = $1 AND id NOT IN (
					SELECT id FROM portal_snapshot_history
					WHERE name = $1
					ORDER BY saved_at DESC, id DESC
					LIMIT $2
				)
			`, r.name, r.depth)
			if err != nil {
				return fmt.Errorf("failed to prune snapshot history: %w", err)
			}
			return nil
		})
	})
}

// History lists saved versions, newest first.
func (r *SnapshotRepository) History(ctx context.Context, limit int) ([]directory.SnapshotVersion, error) {
	if limit <= 0 {
		limit = r.depth
	}
	rows, err := r.conn.Query(ctx, `
		SELECT id, students, teachers, saved_at
		FROM portal_snapshot_history
		WHERE name = $1
		ORDER BY saved_at DESC, id DESC
		LIMIT $2
	`, r.name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot history: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (directory.SnapshotVersion, error) {
		var info directory.SnapshotVersion
		err := row.Scan(&info.ID, &info.Students, &info.Teachers, &info.SavedAt)
		return info, err
	})
}

// Restore copies a history version back into the live row.
func (r *SnapshotRepository) Restore(ctx context.Context, id int64) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE portal_snapshots s SET
			payload = h.payload,
			students = h.students,
			teachers = h.teachers,
			saved_at = h.saved_at,
			updated_at = NOW()
		FROM portal_snapshot_history h
		WHERE s.name = $1 AND h.name = $1 AND h.id = $2
	`, r.name, id)
	if err != nil {
		return fmt.Errorf("failed to restore snapshot %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrSnapshotNotFound
	}
	return nil
}

// call runs fn through the breaker and retries transient database errors.
func (r *SnapshotRepository) call(ctx context.Context, fn func(context.Context) error) error {
	attempt := func(ctx context.Context) error {
		err := fn(ctx)
		if IsTransient(err) {
			return retry.Retryable(err)
		}
		return err
	}
	return r.retrier.Do(ctx, func(ctx context.Context) error {
		if r.breaker == nil {
			return attempt(ctx)
		}
		err := r.breaker.Execute(ctx, attempt)
		if circuitbreaker.IsRejection(err) {
			return retry.Permanent(shared.WrapError("snapshot", "Call", shared.ErrServiceUnavailable, "database circuit open", err))
		}
		return err
	})
}
