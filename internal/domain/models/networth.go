package models

import (
	"fmt"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Asset struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type AssetInput struct {
	Caller
	Value       *decimal.Decimal `json:"value,omitempty"`
	Description *string          `json:"description,omitempty"`
}

func (in AssetInput) Asset() (*Asset, error) {
	if in.Value == nil {
		return nil, fmt.Errorf("%w: value is required", domain.ErrInvalidRequest)
	}
	return &Asset{Value: *in.Value, Description: deref(in.Description)}, nil
}

func (in AssetInput) Patch() (map[string]any, error) {
	changes := make(map[string]any)
	if in.Value != nil {
		changes["value"] = *in.Value
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	return changes, nil
}

type Liability struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type LiabilityInput struct {
	Caller
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
}

func (in LiabilityInput) Liability() (*Liability, error) {
	if in.Amount == nil {
		return nil, fmt.Errorf("%w: amount is required", domain.ErrInvalidRequest)
	}
	return &Liability{Amount: *in.Amount, Description: deref(in.Description)}, nil
}

func (in LiabilityInput) Patch() (map[string]any, error) {
	changes := make(map[string]any)
	if in.Amount != nil {
		changes["amount"] = *in.Amount
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	return changes, nil
}
