// Package storage implements the users table and the ownership-scoped
// record collections on top of database/sql. The postgres and sqlite
// packages open the connection and hand it to New.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/google/uuid"
)

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders into $n for Postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type Storage struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger

	Transactions *Collection[models.Transaction]
	Assets       *Collection[models.Asset]
	Liabilities  *Collection[models.Liability]
}

func New(db *sql.DB, dialect Dialect, logger *slog.Logger) *Storage {
	return &Storage{
		db:           db,
		dialect:      dialect,
		logger:       logger,
		Transactions: NewCollection(db, dialect, transactionsTable),
		Assets:       NewCollection(db, dialect, assetsTable),
		Liabilities:  NewCollection(db, dialect, liabilitiesTable),
	}
}

func (s *Storage) Dialect() Dialect {
	return s.dialect
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Stop() error {
	return s.db.Close()
}

// FindUser returns domain.ErrNotFound when no user carries externalID.
func (s *Storage) FindUser(ctx context.Context, externalID string) (*models.User, error) {
	const op = "storage.FindUser"

	row := s.db.QueryRowContext(ctx,
		s.dialect.rebind("SELECT id, external_id, created_at FROM users WHERE external_id = ?"),
		externalID,
	)

	var user models.User
	if err := row.Scan(&user.ID, &user.ExternalID, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: user %q: %w", op, externalID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.CreatedAt = user.CreatedAt.UTC()

	return &user, nil
}

// EnsureUser returns the user for externalID, inserting it first if needed.
// Concurrent callers racing on the same externalID all get the same row.
func (s *Storage) EnsureUser(ctx context.Context, externalID string) (*models.User, error) {
	const op = "storage.EnsureUser"

	user, err := s.FindUser(ctx, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	inserted, err := s.insertUser(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if inserted {
		s.logger.Info("Provisioned user", slog.String("external_id", externalID))
	}

	return s.FindUser(ctx, externalID)
}

// insertUser reports false when the external id already had a row, which
// happens when a concurrent caller provisioned it first.
func (s *Storage) insertUser(ctx context.Context, externalID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		s.dialect.rebind("INSERT INTO users (id, external_id, created_at) VALUES (?, ?, ?) ON CONFLICT (external_id) DO NOTHING"),
		uuid.New(), externalID, now(),
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
