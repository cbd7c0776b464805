package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/beastmind/internal/snapshot"
)

// ErrSnapshotNotFound is returned when an agent has no stored snapshot.
var ErrSnapshotNotFound = errors.New("agent snapshot not found")

// upsertSnapshotSQL never replaces a newer snapshot with an older one.
const upsertSnapshotSQL = `
	INSERT INTO agent_snapshots (agent_id, species, tick, payload, checksum, updated_at)
	VALUES ($1::uuid, $2, $3, $4, $5, now())
	ON CONFLICT (agent_id) DO UPDATE
	SET species = EXCLUDED.species, tick = EXCLUDED.tick, payload = EXCLUDED.payload,
	    checksum = EXCLUDED.checksum, updated_at = now()
	WHERE agent_snapshots.tick <= EXCLUDED.tick`

// SnapshotRepository stores agent snapshots in PostgreSQL.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

var _ snapshot.Store = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a repository on pool.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Save upserts rec. A record older than the stored one (by tick) is ignored.
func (r *SnapshotRepository) Save(ctx context.Context, rec snapshot.Record) error {
	payload, sum, err := snapshot.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, upsertSnapshotSQL,
		rec.Agent.String(), rec.Species, int64(rec.Tick), payload, sum,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", rec.Agent, err)
	}
	return nil
}

// Load returns agent's snapshot, verifying its checksum.
func (r *SnapshotRepository) Load(ctx context.Context, agent uuid.UUID) (snapshot.Record, error) {
	var payload, sum []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload, checksum FROM agent_snapshots WHERE agent_id = $1::uuid`,
		agent.String(),
	).Scan(&payload, &sum)
	if errors.Is(err, pgx.ErrNoRows) {
		return snapshot.Record{}, fmt.Errorf("agent %s: %w: %w", agent, ErrSnapshotNotFound, snapshot.ErrNotFound)
	}
	if err != nil {
		return snapshot.Record{}, fmt.Errorf("loading snapshot %s: %w", agent, err)
	}

	rec, err := snapshot.Unmarshal(payload, sum)
	if err != nil {
		return snapshot.Record{}, fmt.Errorf("loading snapshot %s: %w", agent, err)
	}
	return rec, nil
}

// Delete removes agent's snapshot.
func (r *SnapshotRepository) Delete(ctx context.Context, agent uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM agent_snapshots WHERE agent_id = $1::uuid`, agent.String()); err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", agent, err)
	}
	return nil
}

// ListBySpecies returns agents of species with a stored snapshot.
func (r *SnapshotRepository) ListBySpecies(ctx context.Context, species string) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT agent_id::text FROM agent_snapshots WHERE species = $1 ORDER BY agent_id`, species)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots for %s: %w", species, err)
	}
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uuid.UUID, error) {
		var s string
		if err := row.Scan(&s); err != nil {
			return uuid.Nil, err
		}
		return uuid.Parse(s)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning snapshot ids: %w", err)
	}
	return ids, nil
}

// SaveBatch saves every record in one transaction.
func (r *SnapshotRepository) SaveBatch(ctx context.Context, recs []snapshot.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning snapshot batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range recs {
		payload, sum, err := snapshot.Marshal(rec)
		if err != nil {
			return err
		}
		batch.Queue(upsertSnapshotSQL, rec.Agent.String(), rec.Species, int64(rec.Tick), payload, sum)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving snapshot batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot batch: %w", err)
	}
	return nil
}
