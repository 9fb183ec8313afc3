package client

import (
	"context"
	"net/http"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/google/uuid"
)

func (c *Client) ListTransactions(ctx context.Context) []models.Transaction {
	return list[models.Transaction](ctx, c, "transactions")
}

func (c *Client) GetTransaction(ctx context.Context, id uuid.UUID) *models.Transaction {
	return get[models.Transaction](ctx, c, "transactions", id)
}

func (c *Client) CreateTransaction(ctx context.Context, in models.TransactionInput) *models.Transaction {
	in.Caller = c.caller()
	return write[models.Transaction](ctx, c, http.MethodPost, "transactions", "transaction", in)
}

func (c *Client) UpdateTransaction(ctx context.Context, id uuid.UUID, in models.TransactionInput) *models.Transaction {
	in.Caller = c.caller()
	return write[models.Transaction](ctx, c, http.MethodPut, "transactions/"+id.String(), "transaction", in)
}

func (c *Client) DeleteTransaction(ctx context.Context, id uuid.UUID) bool {
	return remove(ctx, c, "transactions", id)
}

func (c *Client) ListAssets(ctx context.Context) []models.Asset {
	return list[models.Asset](ctx, c, "assets")
}

func (c *Client) GetAsset(ctx context.Context, id uuid.UUID) *models.Asset {
	return get[models.Asset](ctx, c, "assets", id)
}

func (c *Client) CreateAsset(ctx context.Context, in models.AssetInput) *models.Asset {
	in.Caller = c.caller()
	return write[models.Asset](ctx, c, http.MethodPost, "assets", "asset", in)
}

func (c *Client) UpdateAsset(ctx context.Context, id uuid.UUID, in models.AssetInput) *models.Asset {
	in.Caller = c.caller()
	return write[models.Asset](ctx, c, http.MethodPut, "assets/"+id.String(), "asset", in)
}

func (c *Client) DeleteAsset(ctx context.Context, id uuid.UUID) bool {
	return remove(ctx, c, "assets", id)
}

func (c *Client) ListLiabilities(ctx context.Context) []models.Liability {
	return list[models.Liability](ctx, c, "liabilities")
}

func (c *Client) GetLiability(ctx context.Context, id uuid.UUID) *models.Liability {
	return get[models.Liability](ctx, c, "liabilities", id)
}

func (c *Client) CreateLiability(ctx context.Context, in models.LiabilityInput) *models.Liability {
	in.Caller = c.caller()
	return write[models.Liability](ctx, c, http.MethodPost, "liabilities", "liability", in)
}

func (c *Client) UpdateLiability(ctx context.Context, id uuid.UUID, in models.LiabilityInput) *models.Liability {
	in.Caller = c.caller()
	return write[models.Liability](ctx, c, http.MethodPut, "liabilities/"+id.String(), "liability", in)
}

func (c *Client) DeleteLiability(ctx context.Context, id uuid.UUID) bool {
	return remove(ctx, c, "liabilities", id)
}
