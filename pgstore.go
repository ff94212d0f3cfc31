package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgStore keeps each logical key as a row in a single key/value jsonb table.
// Selected over the file store when DB_URL is set, for running the tracker
// against a managed Postgres instead of local disk.
type pgStore struct {
	db *pgxpool.Pool
}

// newPGStore connects a pool and ensures the state table exists. We use a
// pool (not a single conn) because managed providers close idle connections
// after a few minutes.
func newPGStore(ctx context.Context, dbURL string) (*pgStore, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Simple query protocol avoids "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	_, err = pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS tracker_state (
			key        text PRIMARY KEY,
			value      jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &pgStore{db: pool}, nil
}

func (p *pgStore) Load(key string) ([]byte, bool, error) {
	var raw []byte
	err := p.db.QueryRow(context.Background(),
		"SELECT value FROM tracker_state WHERE key = @key",
		pgx.NamedArgs{"key": key}).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (p *pgStore) Save(key string, raw []byte) error {
	_, err := p.db.Exec(context.Background(),
		`INSERT INTO tracker_state (key, value)
		 VALUES (@key, @value)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		pgx.NamedArgs{"key": key, "value": raw})
	return err
}

func (p *pgStore) Close() {
	p.db.Close()
}
