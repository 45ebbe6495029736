// Package migration applies the schema the postgres data source and the
// postgres tracking backend read and write.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator wraps a migrate instance over the embedded migrations.
type Migrator struct {
	m *migrate.Migrate
}

// New prepares migrations against databaseURL (postgres://...).
func New(databaseURL string) (*Migrator, error) {
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("could not access migrations: %w", err)
	}
	src, err := iofs.New(dir, ".")
	if err != nil {
		return nil, fmt.Errorf("could not create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not start migrations: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies every pending migration. Nothing to apply is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Down rolls back every migration.
func (mg *Migrator) Down() error {
	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// Version reports the applied version; 0 when nothing is applied.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

// WaitForDB pings the database until it answers or attempts run out.
func WaitForDB(databaseURL string, attempts int, delay time.Duration) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	for i := 0; i < attempts; i++ {
		if err = db.Ping(); err == nil {
			log.Println("Connected to the database successfully.")
			return nil
		}
		log.Printf("Waiting for the database to be ready... (attempt %d)", i+1)
		time.Sleep(delay)
	}
	return fmt.Errorf("could not connect to the database: %w", err)
}

// RunMigrations waits for the database and applies all migrations.
func RunMigrations(databaseURL string) error {
	if err := WaitForDB(databaseURL, 10, 3*time.Second); err != nil {
		return err
	}
	mg, err := New(databaseURL)
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil {
		return err
	}
	log.Println("Migrations applied successfully!")
	return nil
}
