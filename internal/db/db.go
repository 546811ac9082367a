package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

// DefaultHistoryDSN keeps the history in memory for the life of the process.
const DefaultHistoryDSN = ":memory:"

const roundsSchema = `
CREATE TABLE IF NOT EXISTS rounds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	round_id TEXT NOT NULL UNIQUE,
	outcome TEXT NOT NULL,
	board TEXT NOT NULL,
	human_score INTEGER NOT NULL,
	opponent_score INTEGER NOT NULL,
	decided_at INTEGER NOT NULL
);`

// OpenSQLite opens the round history database and makes sure its schema exists.
func OpenSQLite(ctx context.Context, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		dsn = DefaultHistoryDSN
	}

	pool, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// An in-memory database lives only as long as its connections.
	pool.SetMaxOpenConns(1)
	pool.SetMaxIdleConns(1)
	pool.SetConnMaxLifetime(0)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	if _, err := pool.ExecContext(ctx, roundsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create rounds table: %w", err)
	}

	slog.InfoContext(ctx, "history database initialized", "dsn", dsn)
	return pool, nil
}
