package storage

import (
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/google/uuid"
)

var transactionsTable = Table[models.Transaction]{
	Name:    "transactions",
	Columns: []string{"type", "amount", "category", "description", "date"},
	values: func(t *models.Transaction) []any {
		return []any{t.ID, t.UserID, string(t.Type), t.Amount, t.Category, t.Description, t.Date, t.CreatedAt}
	},
	scan: func(s scanner) (*models.Transaction, error) {
		var t models.Transaction
		var kind string
		if err := s.Scan(&t.ID, &t.UserID, &kind, &t.Amount, &t.Category, &t.Description, &t.Date, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Type = models.TransactionType(kind)
		t.Date = t.Date.UTC()
		t.CreatedAt = t.CreatedAt.UTC()
		return &t, nil
	},
	keys: func(t *models.Transaction, id, owner uuid.UUID, createdAt time.Time) {
		t.ID, t.UserID, t.CreatedAt = id, owner, createdAt
	},
}

var assetsTable = Table[models.Asset]{
	Name:    "assets",
	Columns: []string{"value", "description"},
	values: func(a *models.Asset) []any {
		return []any{a.ID, a.UserID, a.Value, a.Description, a.CreatedAt}
	},
	scan: func(s scanner) (*models.Asset, error) {
		var a models.Asset
		if err := s.Scan(&a.ID, &a.UserID, &a.Value, &a.Description, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.CreatedAt = a.CreatedAt.UTC()
		return &a, nil
	},
	keys: func(a *models.Asset, id, owner uuid.UUID, createdAt time.Time) {
		a.ID, a.UserID, a.CreatedAt = id, owner, createdAt
	},
}

var liabilitiesTable = Table[models.Liability]{
	Name:    "liabilities",
	Columns: []string{"amount", "description"},
	values: func(l *models.Liability) []any {
		return []any{l.ID, l.UserID, l.Amount, l.Description, l.CreatedAt}
	},
	scan: func(s scanner) (*models.Liability, error) {
		var l models.Liability
		if err := s.Scan(&l.ID, &l.UserID, &l.Amount, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.CreatedAt = l.CreatedAt.UTC()
		return &l, nil
	},
	keys: func(l *models.Liability, id, owner uuid.UUID, createdAt time.Time) {
		l.ID, l.UserID, l.CreatedAt = id, owner, createdAt
	},
}
