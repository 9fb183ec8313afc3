package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/api"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/client"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/config"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/lib/jwt"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/storage/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := sqlite.New(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Stop() })

	cfg := &config.Config{
		Identity: config.Identity{AutoProvision: "create"},
		Auth:     config.Auth{JWTSecret: secret},
	}
	srv := httptest.NewServer(api.New(cfg, logger, store).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func newClient(baseURL, externalID string, opts ...client.Option) *client.Client {
	opts = append(opts, client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return client.New(baseURL, externalID, opts...)
}

func TestTransactionsRoundTrip(t *testing.T) {
	srv := newServer(t, "")
	ctx := context.Background()
	c := newClient(srv.URL+"/", "u1")

	assert.Empty(t, c.ListTransactions(ctx), "unknown user lists nothing")

	created := c.CreateTransaction(ctx, models.TransactionInput{
		Type:     ptr("Expense"),
		Amount:   ptr(decimal.NewFromInt(50)),
		Category: ptr("Food"),
		Date:     ptr("2024-01-01"),
	})
	require.NotNil(t, created)
	assert.Equal(t, models.TransactionExpense, created.Type)

	got := c.GetTransaction(ctx, created.ID)
	require.NotNil(t, got)
	assert.Equal(t, "Food", got.Category)

	updated := c.UpdateTransaction(ctx, created.ID, models.TransactionInput{Category: ptr("Dining")})
	require.NotNil(t, updated)
	assert.Equal(t, "Dining", updated.Category)
	assert.True(t, decimal.NewFromInt(50).Equal(updated.Amount))

	assert.Len(t, c.ListTransactions(ctx), 1)
	assert.True(t, c.DeleteTransaction(ctx, created.ID))
	assert.False(t, c.DeleteTransaction(ctx, created.ID))
	assert.Nil(t, c.GetTransaction(ctx, created.ID))
}

func TestSentinelsOnRejectedRequests(t *testing.T) {
	srv := newServer(t, "")
	ctx := context.Background()
	owner := newClient(srv.URL, "u1")
	other := newClient(srv.URL, "u2")

	asset := owner.CreateAsset(ctx, models.AssetInput{Value: ptr(decimal.NewFromInt(100)), Description: ptr("bike")})
	require.NotNil(t, asset)
	liability := owner.CreateLiability(ctx, models.LiabilityInput{Amount: ptr(decimal.NewFromInt(20))})
	require.NotNil(t, liability)
	require.NotNil(t, other.CreateAsset(ctx, models.AssetInput{Value: ptr(decimal.NewFromInt(1))}))

	assert.Nil(t, other.GetAsset(ctx, asset.ID))
	assert.Nil(t, other.UpdateAsset(ctx, asset.ID, models.AssetInput{Value: ptr(decimal.Zero)}))
	assert.False(t, other.DeleteLiability(ctx, liability.ID))
	assert.NotNil(t, owner.GetLiability(ctx, liability.ID))

	assert.Nil(t, owner.CreateTransaction(ctx, models.TransactionInput{Type: ptr("savings")}))
	assert.Nil(t, owner.UpdateLiability(ctx, uuid.New(), models.LiabilityInput{Amount: ptr(decimal.NewFromInt(1))}))
	assert.Nil(t, owner.Summary(ctx, "January"))

	nobody := newClient(srv.URL, "")
	assert.Equal(t, []models.Asset{}, nobody.ListAssets(ctx))
}

func TestSentinelsOnNetworkFailure(t *testing.T) {
	srv := newServer(t, "")
	srv.Close()

	ctx := context.Background()
	c := newClient(srv.URL, "u1", client.WithHTTPClient(&http.Client{Timeout: time.Second}))

	assert.Equal(t, []models.Liability{}, c.ListLiabilities(ctx))
	assert.Nil(t, c.GetAsset(ctx, uuid.New()))
	assert.Nil(t, c.CreateAsset(ctx, models.AssetInput{Value: ptr(decimal.NewFromInt(1))}))
	assert.False(t, c.DeleteAsset(ctx, uuid.New()))
	assert.Nil(t, c.Summary(ctx, ""))
}

func TestSentinelsOnUnexpectedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	c := newClient(srv.URL, "u1")

	assert.Equal(t, []models.Transaction{}, c.ListTransactions(ctx))
	assert.Nil(t, c.CreateLiability(ctx, models.LiabilityInput{Amount: ptr(decimal.NewFromInt(1))}))
}

func TestSummaryAndToken(t *testing.T) {
	const secret = "secret"
	srv := newServer(t, secret)
	ctx := context.Background()

	token, err := jwt.NewToken("u1", secret, time.Hour)
	require.NoError(t, err)
	c := newClient(srv.URL, "", client.WithToken(token))

	assert.Nil(t, newClient(srv.URL, "u1").Summary(ctx, ""), "requests without a token are rejected")

	require.NotNil(t, c.CreateTransaction(ctx, models.TransactionInput{
		Type:   ptr("income"),
		Amount: ptr(decimal.NewFromInt(1200)),
		Date:   ptr("2024-03-05"),
	}))
	require.NotNil(t, c.CreateAsset(ctx, models.AssetInput{Value: ptr(decimal.NewFromInt(500))}))
	require.NotNil(t, c.CreateLiability(ctx, models.LiabilityInput{Amount: ptr(decimal.NewFromInt(200))}))

	s := c.Summary(ctx, "2024-03")
	require.NotNil(t, s)
	assert.True(t, decimal.NewFromInt(1200).Equal(s.TotalIncome))
	assert.True(t, decimal.NewFromInt(300).Equal(s.NetWorth))
	assert.Len(t, c.ListAssets(ctx), 1)
	assert.Len(t, c.ListLiabilities(ctx), 1)
}
