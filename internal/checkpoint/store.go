// Package checkpoint persists, per (snapshot, dataset) pair, the timestamp of
// the last successfully exported record.
package checkpoint

import (
	"database/sql"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/pkg/errors"
)

// Store owns the export_checkpoints table. A checkpoint is mutated only after
// a snapshot write for its dataset has succeeded.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewStore creates a checkpoint store over the given connection pool and
// ensures its table exists.
func NewStore(db *sql.DB, log *logger.Logger) (*Store, error) {
	store := &Store{db: db, logger: log}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS export_checkpoints (
			snapshot_id TEXT,
			dataset TEXT,
			last_exported TIMESTAMP,
			updated_at TIMESTAMP,
			PRIMARY KEY (snapshot_id, dataset)
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCheckpointFailed, "failed to create checkpoint table", err)
	}

	return nil
}

// Get returns the last exported timestamp for the pair, or None when no run
// has checkpointed yet.
func (s *Store) Get(snapshotID string, dataset types.DatasetType) (optional.Option[time.Time], error) {
	var last time.Time

	err := s.db.QueryRow(`
		SELECT last_exported FROM export_checkpoints
		WHERE snapshot_id = $1 AND dataset = $2
	`, snapshotID, string(dataset)).Scan(&last)

	if err == sql.ErrNoRows {
		return optional.None[time.Time](), nil
	}

	if err != nil {
		return optional.None[time.Time](), errors.Wrap(errors.ErrCodeCheckpointFailed, "failed to read checkpoint", err)
	}

	return optional.Some(last), nil
}

// Advance upserts the checkpoint to ts. The upsert is idempotent per
// (snapshot_id, dataset) so retried runs are safe.
func (s *Store) Advance(snapshotID string, dataset types.DatasetType, ts time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO export_checkpoints (snapshot_id, dataset, last_exported, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (snapshot_id, dataset)
		DO UPDATE SET last_exported = excluded.last_exported, updated_at = excluded.updated_at
	`, snapshotID, string(dataset), ts, time.Now().UTC())
	if err != nil {
		return errors.Wrap(errors.ErrCodeCheckpointFailed, "failed to advance checkpoint", err)
	}

	s.logger.Info("checkpoint advanced",
		zap.String("snapshot_id", snapshotID),
		zap.String("dataset", string(dataset)),
		zap.Time("last_exported", ts))

	return nil
}
