// Package database opens the Postgres connection shared by the trips source,
// the ingest command and the postgres tracking backend.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"taxi-fare-model/config"
)

const pingTimeout = 5 * time.Second

// Open connects to the configured database and checks that it answers.
func Open(cfg config.DBConfig) (*sql.DB, error) {
	return OpenDSN(cfg.DSN())
}

// OpenDSN is Open for a raw lib/pq connection string or postgres:// URL.
func OpenDSN(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Println("Database connected.")
	return db, nil
}
