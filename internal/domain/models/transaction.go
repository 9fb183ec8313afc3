package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// ParseTransactionType accepts any casing and returns the stored lowercase form.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case TransactionIncome, TransactionExpense:
		return t, nil
	default:
		return "", fmt.Errorf("%w: invalid type %q, allowed values: 'income', 'expense'", domain.ErrInvalidRequest, s)
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate coerces a client supplied date into a UTC timestamp with
// microsecond precision, which is what both storage backends keep.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Microsecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidRequest, s)
}

type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionInput is the request body for creating or updating a transaction.
// Nil fields are left untouched on update.
type TransactionInput struct {
	Caller
	Type        *string          `json:"type,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *string          `json:"date,omitempty"`
}

// Transaction validates a create request. The owner is never taken from input.
func (in TransactionInput) Transaction() (*Transaction, error) {
	if in.Type == nil {
		return nil, fmt.Errorf("%w: type is required", domain.ErrInvalidRequest)
	}
	if in.Amount == nil {
		return nil, fmt.Errorf("%w: amount is required", domain.ErrInvalidRequest)
	}
	if in.Date == nil {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidRequest)
	}

	t, err := ParseTransactionType(*in.Type)
	if err != nil {
		return nil, err
	}
	date, err := ParseDate(*in.Date)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		Type:        t,
		Amount:      *in.Amount,
		Category:    deref(in.Category),
		Description: deref(in.Description),
		Date:        date,
	}, nil
}

// Patch returns the changed columns of an update request.
func (in TransactionInput) Patch() (map[string]any, error) {
	changes := make(map[string]any)
	if in.Type != nil {
		t, err := ParseTransactionType(*in.Type)
		if err != nil {
			return nil, err
		}
		changes["type"] = string(t)
	}
	if in.Amount != nil {
		changes["amount"] = *in.Amount
	}
	if in.Category != nil {
		changes["category"] = *in.Category
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.Date != nil {
		date, err := ParseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		changes["date"] = date
	}
	return changes, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
