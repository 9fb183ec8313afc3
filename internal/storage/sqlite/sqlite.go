package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/storage"
	"github.com/IlyasAtabaev731/finance-dashboard/migrations"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// New opens the database at path and applies the embedded migrations.
// ":memory:" gives a private database, which is what the tests use.
func New(path string, logger *slog.Logger) (*storage.Storage, error) {
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("database connection error %s", err)
	}

	// every connection to :memory: is a different database, and sqlite
	// serializes writers anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect database error %s", err)
	}

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("SQLite storage ready", slog.String("path", path))

	return storage.New(db, storage.SQLite, logger), nil
}

func migrateUp(db *sql.DB) error {
	const op = "storage.sqlite.migrateUp"

	src, err := iofs.New(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// m.Close would close db as well, so m is left for the collector.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
