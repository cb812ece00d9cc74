// Package store persists the routing graph across pipeline runs: vertices,
// edges, and trails, behind an Executor abstraction that works
// transparently over a plain connection or an open transaction (spec §6
// "Outbound" -- persistence is the report server's read path and the
// pipeline's optional write-through target).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"          // postgres driver
	_ "modernc.org/sqlite"          // cgo-free sqlite driver

	"github.com/ali01/trailnet/internal/config"
)

// Executor is satisfied by both *sqlx.DB and *sqlx.Tx, letting every store
// method work unchanged whether or not it runs inside a transaction.
type Executor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	Rebind(query string) string
}

// DB wraps sqlx.DB with the schema and transaction helpers every store
// needs, dialect-agnostic across the sqlite and postgres drivers.
type DB struct {
	*sqlx.DB
	driver string
}

// Open connects to the configured backend (sqlite or postgres) and verifies
// the connection.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	var driverName, dsn string
	switch cfg.Driver {
	case "sqlite":
		driverName, dsn = "sqlite", cfg.Path
	case "postgres":
		driverName = "postgres"
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}

	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: failed to connect (%s): %w", cfg.Driver, err)
	}

	if cfg.Driver == "postgres" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: failed to ping (%s): %w", cfg.Driver, err)
	}

	return &DB{DB: db, driver: cfg.Driver}, nil
}

// Driver reports which backend this DB is connected to.
func (d *DB) Driver() string { return d.driver }

// Transaction runs fn inside a transaction, committing on success and
// rolling back (including on panic) on failure.
func (d *DB) Transaction(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store: transaction failed: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: failed to commit transaction: %w", err)
	}
	return nil
}
