// Package db keeps a DuckDB copy of the loaded features so they can be
// queried with SQL.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/joeblew999/plat-choropleth/internal/service"
)

// Config holds database configuration.
type Config struct {
	DataDir string // empty keeps the database in memory
	DBName  string
}

// Open opens a DuckDB database.
func Open(cfg Config) (*sql.DB, error) {
	dsn := ""
	if cfg.DataDir != "" {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
		}
		dsn = filepath.Join(duckdbDir, cfg.DBName+".duckdb")
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}
	return conn, nil
}

const createFeatures = `CREATE OR REPLACE TABLE features (
	id      VARCHAR PRIMARY KEY,
	name    VARCHAR,
	density DOUBLE,
	color   VARCHAR,
	bucket  DOUBLE,
	west    DOUBLE,
	south   DOUBLE,
	east    DOUBLE,
	north   DOUBLE
)`

// LoadFeatures replaces the features table with rows.
func LoadFeatures(ctx context.Context, conn *sql.DB, rows []service.FeatureSummary) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createFeatures); err != nil {
		return fmt.Errorf("creating features table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO features VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Name, r.Density, string(r.Color), r.Bucket,
			r.Bound[0], r.Bound[1], r.Bound[2], r.Bound[3],
		); err != nil {
			return fmt.Errorf("inserting feature %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// Seal cuts the database off from the file system and network and freezes
// its settings. After Seal, SQL can only read and write tables already in
// the database.
func Seal(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range []string{
		"SET GLOBAL enable_external_access = false",
		"SET GLOBAL lock_configuration = true",
	} {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sealing duckdb: %w", err)
		}
	}
	return nil
}
