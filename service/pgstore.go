package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Khalil2008k/guild-contracts/config"
	"github.com/Khalil2008k/guild-contracts/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectPostgres opens a pgx pool against the configured DSN.
func ConnectPostgres(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = 30 * time.Minute
	pc.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	return pool, nil
}

const contractsSchema = `
CREATE TABLE IF NOT EXISTS contracts (
	id         TEXT PRIMARY KEY,
	job_id     TEXT NOT NULL,
	poster_id  TEXT NOT NULL,
	doer_id    TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	doc        JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS contracts_job_idx ON contracts(job_id, created_at DESC);
CREATE INDEX IF NOT EXISTS contracts_poster_idx ON contracts(poster_id);
CREATE INDEX IF NOT EXISTS contracts_doer_idx ON contracts(doer_id);
CREATE UNIQUE INDEX IF NOT EXISTS contracts_live_job_idx ON contracts(job_id)
	WHERE status NOT IN ('completed','terminated','disputed');
`

// liveJobConflictIndex is the partial unique index that makes "one live
// contract per job" hold under concurrent creates: two inserts for the same
// job cannot both commit while neither contract is terminal.
const liveJobConflictIndex = "contracts_live_job_idx"

// isLiveJobConflict reports whether err is a unique violation (SQLSTATE
// 23505) on the live contract index.
func isLiveJobConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		pgErr.ConstraintName == liveJobConflictIndex
}

// PostgresStore persists each contract as one row: indexed columns for the
// query paths, the full document in a JSONB column. Status and signature
// writes run inside a row-locked transaction so the dual-signature check and
// the activation are one atomic step.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the contracts table and indexes if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, contractsSchema)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, c *model.Contract) (*model.Contract, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stored := c.Clone()
	stored.ID = uuid.New().String()
	stored.Status = model.StatusDraft
	stored.CreatedAt = now
	stored.UpdatedAt = now

	doc, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contract: %w", err)
	}

	// The partial unique index contracts_live_job_idx rejects a second live
	// contract for the job at commit time, so no read-check-write sequence
	// is involved and concurrent creates cannot both succeed.
	_, err = s.pool.Exec(ctx,
		`INSERT INTO contracts(id,job_id,poster_id,doer_id,status,created_at,updated_at,doc)
VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		stored.ID, stored.JobID, stored.Poster.UserID, stored.Doer.UserID,
		stored.Status, stored.CreatedAt, stored.UpdatedAt, doc)
	if isLiveJobConflict(err) {
		return nil, fmt.Errorf("%w: job %s already has a live contract", model.ErrValidation, stored.JobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert contract: %w", err)
	}
	return stored, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Contract, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM contracts WHERE id=$1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query contract: %w", err)
	}
	return unmarshalContract(doc)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*model.Contract, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM contracts WHERE poster_id=$1 OR doer_id=$1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var result []*model.Contract
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		c, err := unmarshalContract(doc)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *PostgresStore) GetByJob(ctx context.Context, jobID string) (*model.Contract, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM contracts WHERE job_id=$1 ORDER BY created_at DESC LIMIT 1`,
		jobID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query contract: %w", err)
	}
	return unmarshalContract(doc)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id, newStatus, actorID string) error {
	_, err := s.mutate(ctx, id, func(c *model.Contract, now time.Time) error {
		return applyStatus(c, newStatus, actorID, now)
	})
	return err
}

func (s *PostgresStore) ApplySignature(ctx context.Context, id, role, callerID string, sig model.Signature) (*model.Contract, error) {
	return s.mutate(ctx, id, func(c *model.Contract, now time.Time) error {
		return applySignature(c, role, callerID, sig, now)
	})
}

// mutate loads the contract row under a row lock, applies fn, and writes the
// document back in the same transaction. The lock is what makes the
// read-check-write sequence atomic against a concurrent signer.
func (s *PostgresStore) mutate(ctx context.Context, id string, fn func(c *model.Contract, now time.Time) error) (*model.Contract, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var doc []byte
	err = tx.QueryRow(ctx, `SELECT doc FROM contracts WHERE id=$1 FOR UPDATE`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock contract: %w", err)
	}

	c, err := unmarshalContract(doc)
	if err != nil {
		return nil, err
	}

	if err := fn(c, time.Now().UTC()); err != nil {
		return nil, err
	}

	updated, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contract: %w", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE contracts SET status=$2, updated_at=$3, doc=$4 WHERE id=$1`,
		id, c.Status, c.UpdatedAt, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return c, nil
}

func unmarshalContract(doc []byte) (*model.Contract, error) {
	var c model.Contract
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contract: %w", err)
	}
	return &c, nil
}
