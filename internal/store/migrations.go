package store

import (
	_ "embed"
	"fmt"
	"log"
)

//go:embed schema.sql
var schemaSQL string

// InitializeSchema creates the trails/vertices/edges tables if they don't
// already exist. Unlike the report server's reads, this runs once at
// pipeline startup and is safe to call on every run since every statement
// is idempotent (CREATE TABLE/INDEX IF NOT EXISTS).
func (d *DB) InitializeSchema() error {
	if _, err := d.Exec(schemaSQL); err != nil {
		return fmt.Errorf("store: failed to initialize schema: %w", err)
	}
	log.Printf("store: schema initialized (%s)", d.driver)
	return nil
}
