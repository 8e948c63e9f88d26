// Package sql adapts audit.Store to a relational backend, the way
// internal/storage/sql adapted the todo store: goose migrations embedded
// into the binary, a configurable pgx or sqlite driver, and a connection
// pool tuned with the same defaults.
//
// sqlc generation is not reproducible without running the Go toolchain
// (no working sqlc.yaml ships in this tree), so queries here are
// hand-written database/sql rather than sqlc-generated, documented as a
// deliberate deviation in DESIGN.md.
package sql

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/rezkam/bulkscroll/internal/audit"
	"github.com/rezkam/bulkscroll/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DBConfig holds database connection configuration (mirrors
// internal/storage/sql.DBConfig).
type DBConfig struct {
	Driver          string // "pgx" or "sqlite"
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Store is a relational audit.Store.
type Store struct {
	db *sql.DB
}

var _ audit.Store = (*Store)(nil)

// NewStore opens db per cfg, applies migrations, and returns a ready Store.
func NewStore(ctx context.Context, cfg DBConfig) (*Store, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 25
	}
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = time.Minute
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, cfg.Driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB, driver string) error {
	dialect := "sqlite3"
	if driver == "pgx" {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetBaseFS(embedMigrations)
	return goose.Up(db, "migrations")
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Accept(ctx context.Context, id domain.RequestID, opType string, acceptedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (request_id, op_type, state, accepted_at) VALUES ($1, $2, $3, $4)`,
		id.String(), opType, audit.RunAccepted, acceptedAt.UTC())
	return err
}

func (s *Store) MarkRunning(ctx context.Context, id domain.RequestID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET state = $1 WHERE request_id = $2`, audit.RunRunning, id.String())
	return err
}

func (s *Store) Complete(ctx context.Context, id domain.RequestID, resp domain.Response, completedAt time.Time) error {
	state := audit.RunSucceeded
	if resp.Progress.ReasonCancelled != "" {
		state = audit.RunCanceled
	}

	indexingFailures, err := json.Marshal(resp.IndexingFailures)
	if err != nil {
		return fmt.Errorf("marshal indexing failures: %w", err)
	}
	searchFailures, err := json.Marshal(resp.SearchFailures)
	if err != nil {
		return fmt.Errorf("marshal search failures: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE runs SET
			state = $1, completed_at = $2,
			total = $3, updated = $4, created = $5, deleted = $6,
			batches = $7, version_conflicts = $8, noops = $9, retries = $10,
			reason_cancelled = $11, indexing_failures = $12, search_failures = $13
		WHERE request_id = $14`,
		state, completedAt.UTC(),
		resp.Progress.Total, resp.Progress.Updated, resp.Progress.Created, resp.Progress.Deleted,
		resp.Progress.Batches, resp.Progress.VersionConflicts, resp.Progress.Noops, resp.Progress.Retries,
		nullString(resp.Progress.ReasonCancelled), string(indexingFailures), string(searchFailures),
		id.String(),
	)
	return err
}

func (s *Store) Fail(ctx context.Context, id domain.RequestID, reason string, completedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET state = $1, completed_at = $2, failure_reason = $3 WHERE request_id = $4`,
		audit.RunFailed, completedAt.UTC(), reason, id.String())
	return err
}

func (s *Store) Get(ctx context.Context, id domain.RequestID) (audit.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT op_type, state, accepted_at, completed_at,
			total, updated, created, deleted, batches, version_conflicts, noops, retries,
			reason_cancelled, failure_reason, indexing_failures, search_failures
		FROM runs WHERE request_id = $1`, id.String())

	var (
		opType, state                                                       string
		acceptedAt                                                          time.Time
		completedAt                                                         sql.NullTime
		total, updated, created, deleted, batches, conflicts, noops, retry  sql.NullInt64
		reasonCancelled, failureReason, indexingFailuresJSON, searchJSON    sql.NullString
	)
	if err := row.Scan(&opType, &state, &acceptedAt, &completedAt,
		&total, &updated, &created, &deleted, &batches, &conflicts, &noops, &retry,
		&reasonCancelled, &failureReason, &indexingFailuresJSON, &searchJSON); err != nil {
		if err == sql.ErrNoRows {
			return audit.Record{}, audit.ErrRecordNotFound
		}
		return audit.Record{}, err
	}

	rec := audit.Record{
		RequestID:     id,
		State:         audit.RunState(state),
		OpType:        opType,
		AcceptedAt:    acceptedAt,
		FailureReason: failureReason.String,
	}
	if completedAt.Valid {
		rec.CompletedAt = completedAt.Time
	}
	if total.Valid {
		rec.Progress = &domain.Snapshot{
			Total: total.Int64, Updated: updated.Int64, Created: created.Int64, Deleted: deleted.Int64,
			Batches: batches.Int64, VersionConflicts: conflicts.Int64, Noops: noops.Int64, Retries: retry.Int64,
			ReasonCancelled: reasonCancelled.String,
		}
	}
	if indexingFailuresJSON.String != "" {
		_ = json.Unmarshal([]byte(indexingFailuresJSON.String), &rec.IndexingFailures)
	}
	if searchJSON.String != "" {
		_ = json.Unmarshal([]byte(searchJSON.String), &rec.SearchFailures)
	}
	return rec, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
