package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// InitDB opens the Postgres pool, checks connectivity and applies the schema.
func InitDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,

	`CREATE TABLE IF NOT EXISTS vessels (
		id SERIAL PRIMARY KEY,
		imo_number TEXT UNIQUE NOT NULL,
		mmsi TEXT UNIQUE,
		name TEXT,
		is_tracked BOOLEAN DEFAULT false,
		carrier_code TEXT,
		appearance_count INT DEFAULT 0,
		last_known_position GEOGRAPHY(POINT, 4326),
		last_seen TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS vessel_positions (
		id SERIAL PRIMARY KEY,
		vessel_id INTEGER REFERENCES vessels(id) ON DELETE CASCADE,
		mmsi TEXT NOT NULL,
		position GEOGRAPHY(POINT, 4326) NOT NULL,
		sog DOUBLE PRECISION,
		cog DOUBLE PRECISION,
		true_heading INTEGER,
		timestamp TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (mmsi, timestamp)
	)`,

	`CREATE INDEX IF NOT EXISTS vessel_positions_mmsi_ts ON vessel_positions (mmsi, timestamp)`,

	`CREATE TABLE IF NOT EXISTS locations (
		id SERIAL PRIMARY KEY,
		unlocode TEXT NOT NULL,
		name TEXT NOT NULL,
		country_code TEXT NOT NULL,
		location GEOGRAPHY(POINT, 4326),
		is_port BOOLEAN DEFAULT FALSE,
		is_airport BOOLEAN DEFAULT FALSE,
		is_train_station BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (unlocode, name)
	)`,

	`CREATE INDEX IF NOT EXISTS locations_unlocode_prefix ON locations (unlocode text_pattern_ops)`,
}

// Migrate creates any missing tables. Every statement is idempotent.
func Migrate(ctx context.Context, db Querier) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
