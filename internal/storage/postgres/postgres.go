package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/storage"
	_ "github.com/lib/pq"
)

// New connects to Postgres. The schema is owned by cmd/migrator.
func New(dbUrl string, logger *slog.Logger) (*storage.Storage, error) {
	db, err := sql.Open("postgres", dbUrl)
	if err != nil {
		return nil, fmt.Errorf("database connection error %s", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect database error %s", err)
	}

	return storage.New(db, storage.Postgres, logger), nil
}
