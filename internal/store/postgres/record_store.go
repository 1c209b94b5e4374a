// Package postgres provides a Postgres-backed carrier record store.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetlens/carrierscan/internal/carrier"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// RecordStoreConfig controls the Postgres connection pool used for carrier rows.
type RecordStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// RecordStore writes accepted carrier records into Postgres.
type RecordStore struct {
	pool  execCloser
	table string
	now   func() time.Time
}

// NewRecordStore creates a Postgres-backed RecordStore using the provided config.
func NewRecordStore(ctx context.Context, cfg RecordStoreConfig) (*RecordStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "carriers"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &RecordStore{
		pool:  pool,
		table: table,
		now:   time.Now,
	}, nil
}

// NewRecordStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewRecordStoreWithPool(pool execCloser, table string) (*RecordStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "carriers"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &RecordStore{pool: pool, table: table, now: time.Now}, nil
}

// Close releases the underlying pool resources.
func (s *RecordStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// SaveRecord inserts one accepted carrier row into Postgres.
func (s *RecordStore) SaveRecord(ctx context.Context, runID string, record carrier.Record) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("record store is not configured")
	}
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	lookup_url,
	usdot_number,
	docket_number,
	legal_name,
	fields,
	stored_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)
`, s.table)
	_, err = s.pool.Exec(ctx, query,
		runID,
		record.Get(carrier.FieldLookupURL),
		record.Get(carrier.FieldUSDOTNumber),
		record.Get(carrier.FieldDocketNumber),
		record.Get(carrier.FieldLegalName),
		fieldsJSON,
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert carrier record: %w", err)
	}
	return nil
}
