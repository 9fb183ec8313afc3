package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/config"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/lib/jwt"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/storage"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/storage/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================================
// Helpers
// ========================================================

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) (*APIServer, *storage.Storage) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := sqlite.New(":memory:", logger)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { store.Stop() })

	cfg := &config.Config{
		ApiHost:  "localhost",
		ApiPort:  8080,
		Identity: config.Identity{AutoProvision: "create"},
	}
	if mutate != nil {
		mutate(cfg)
	}

	return New(cfg, logger, store), store
}

func do(t *testing.T, s *APIServer, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

type transactionResponse struct {
	Message     string             `json:"message"`
	Transaction models.Transaction `json:"transaction"`
}

type assetResponse struct {
	Message string       `json:"message"`
	Asset   models.Asset `json:"asset"`
}

type liabilityResponse struct {
	Message   string           `json:"message"`
	Liability models.Liability `json:"liability"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func lunch(externalID, kind string) map[string]any {
	return map[string]any{
		"external_id": externalID,
		"type":        kind,
		"amount":      50,
		"category":    "Food",
		"description": "lunch",
		"date":        "2024-01-01",
	}
}

// ========================================================
// Transactions
// ========================================================

func TestCreateTransactionProvisionsUser(t *testing.T) {
	s, store := newTestServer(t, nil)

	rr := do(t, s, http.MethodPost, "/api/transactions", lunch("u1", "Expense"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	first := decode[transactionResponse](t, rr)
	assert.Equal(t, "Transaction added successfully", first.Message)
	assert.Equal(t, models.TransactionExpense, first.Transaction.Type)
	assert.True(t, decimal.NewFromInt(50).Equal(first.Transaction.Amount))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Transaction.Date.UTC())

	user, err := store.FindUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, first.Transaction.UserID)

	rr = do(t, s, http.MethodPost, "/api/transactions", lunch("u1", "income"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	second := decode[transactionResponse](t, rr)
	assert.Equal(t, first.Transaction.UserID, second.Transaction.UserID, "second write must reuse the owner")

	rr = do(t, s, http.MethodGet, "/api/transactions?external_id=u1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	assert.Len(t, decode[[]models.Transaction](t, rr), 2)
}

func TestTransactionTypeNormalization(t *testing.T) {
	s, store := newTestServer(t, nil)

	for _, kind := range []string{"INCOME", "Income", "income"} {
		rr := do(t, s, http.MethodPost, "/api/transactions", lunch("u1", kind))
		if rr.Code != http.StatusCreated {
			t.Fatalf("%s: expected status 201, got %d", kind, rr.Code)
		}
		assert.Equal(t, models.TransactionIncome, decode[transactionResponse](t, rr).Transaction.Type)
	}

	rr := do(t, s, http.MethodPost, "/api/transactions", lunch("fresh", "savings"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	assert.Contains(t, decode[errorResponse](t, rr).Error, "savings")

	_, err := store.FindUser(context.Background(), "fresh")
	assert.Error(t, err, "a rejected request must not provision a user")
}

func TestCreateTransactionValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)

	noDate := lunch("u1", "expense")
	delete(noDate, "date")
	badDate := lunch("u1", "expense")
	badDate["date"] = "someday"
	noID := lunch("", "expense")

	tests := []struct {
		name string
		body any
	}{
		{"missing date", noDate},
		{"unparsable date", badDate},
		{"missing external id", noID},
		{"malformed json", `{"type":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, s, http.MethodPost, "/api/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestValidationMessageIgnoresEchoedInput(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := do(t, s, http.MethodPost, "/api/transactions", lunch("u1", "invalid request: x"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	assert.Equal(t,
		`invalid type "invalid request: x", allowed values: 'income', 'expense'`,
		decode[errorResponse](t, rr).Error,
	)
}

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"wrapped", fmt.Errorf("identity.Resolve: %w: external id is required", domain.ErrInvalidRequest), "external id is required"},
		{"joined", errors.Join(domain.ErrInvalidRequest, errors.New("malformed JSON body")), "malformed JSON body"},
		{"bare", domain.ErrInvalidRequest, "invalid request"},
		{"echoed sentinel", fmt.Errorf("%w: invalid month %q", domain.ErrInvalidRequest, "invalid request"), `invalid month "invalid request"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reason(tt.err))
		})
	}
}

func TestCreateIgnoresClientOwner(t *testing.T) {
	s, store := newTestServer(t, nil)

	body := lunch("u1", "expense")
	body["user_id"] = uuid.NewString()

	rr := do(t, s, http.MethodPost, "/api/transactions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	user, err := store.FindUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, decode[transactionResponse](t, rr).Transaction.UserID)
}

func TestReadPathsNeedIdentity(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/api/transactions", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/transactions?external_id=ghost", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User not found", decode[errorResponse](t, rr).Error)

	do(t, s, http.MethodPost, "/api/transactions", lunch("legacy", "expense"))
	rr = do(t, s, http.MethodGet, "/api/transactions?firebase_uid=legacy", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUpdateTransaction(t *testing.T) {
	s, _ := newTestServer(t, nil)

	created := decode[transactionResponse](t, do(t, s, http.MethodPost, "/api/transactions", lunch("u1", "expense"))).Transaction
	do(t, s, http.MethodPost, "/api/transactions", lunch("u2", "expense"))
	path := "/api/transactions/" + created.ID.String()

	rr := do(t, s, http.MethodPut, path, map[string]any{"external_id": "u1", "amount": "75.50", "type": "INCOME"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	updated := decode[transactionResponse](t, rr)
	assert.Equal(t, "Transaction updated successfully", updated.Message)
	assert.True(t, decimal.RequireFromString("75.50").Equal(updated.Transaction.Amount))
	assert.Equal(t, models.TransactionIncome, updated.Transaction.Type)
	assert.Equal(t, "lunch", updated.Transaction.Description)

	rr = do(t, s, http.MethodPut, path, map[string]any{"external_id": "u2", "amount": 1})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, s, http.MethodGet, path+"?external_id=u1", nil)
	assert.True(t, decimal.RequireFromString("75.50").Equal(decode[models.Transaction](t, rr).Amount), "foreign update must not change the record")

	rr = do(t, s, http.MethodPut, "/api/transactions/"+uuid.NewString(), map[string]any{"external_id": "u1", "amount": 1})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, s, http.MethodPut, path, map[string]any{"external_id": "u1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, http.MethodPut, path, map[string]any{"external_id": "u1", "type": "savings"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ========================================================
// Assets & liabilities
// ========================================================

func TestAssetInvisibleToOtherUser(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := do(t, s, http.MethodPost, "/api/assets", map[string]any{"external_id": "u1", "value": "15000", "description": "car"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	asset := decode[assetResponse](t, rr).Asset
	do(t, s, http.MethodPost, "/api/assets", map[string]any{"external_id": "u2", "value": 1})

	rr = do(t, s, http.MethodGet, "/api/assets/"+asset.ID.String()+"?external_id=u2", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/assets/"+asset.ID.String()+"?external_id=u1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	got := decode[models.Asset](t, rr)
	assert.Equal(t, "car", got.Description)
	assert.True(t, decimal.NewFromInt(15000).Equal(got.Value))

	rr = do(t, s, http.MethodGet, "/api/assets?external_id=u2", nil)
	assert.Len(t, decode[[]models.Asset](t, rr), 1)

	rr = do(t, s, http.MethodGet, "/api/assets/not-a-uuid?external_id=u1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteLiabilityOwnedByOther(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rr := do(t, s, http.MethodPost, "/api/liabilities", map[string]any{"external_id": "u1", "amount": 1200, "description": "credit card"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	liability := decode[liabilityResponse](t, rr).Liability
	do(t, s, http.MethodPost, "/api/liabilities", map[string]any{"external_id": "u2", "amount": 1})
	path := "/api/liabilities/" + liability.ID.String()

	rr = do(t, s, http.MethodDelete, path, map[string]any{"external_id": "u2"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Unauthorized to delete this liability", decode[errorResponse](t, rr).Error)

	rr = do(t, s, http.MethodGet, path+"?external_id=u1", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "liability must still be present")

	rr = do(t, s, http.MethodDelete, path, map[string]any{"external_id": "u1"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Liability deleted successfully", decode[map[string]string](t, rr)["message"])

	rr = do(t, s, http.MethodDelete, path+"?external_id=u1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, s, http.MethodDelete, path, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ========================================================
// Provisioning policy
// ========================================================

func TestProvisioningPolicies(t *testing.T) {
	tests := []struct {
		policy          string
		transactionCode int
		assetCode       int
	}{
		{"create", http.StatusCreated, http.StatusCreated},
		{"transactions", http.StatusCreated, http.StatusNotFound},
		{"never", http.StatusNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			s, _ := newTestServer(t, func(cfg *config.Config) { cfg.Identity.AutoProvision = tt.policy })

			rr := do(t, s, http.MethodPost, "/api/assets", map[string]any{"external_id": "new-asset-user", "value": 10})
			assert.Equal(t, tt.assetCode, rr.Code)

			rr = do(t, s, http.MethodPost, "/api/transactions", lunch("new-txn-user", "expense"))
			assert.Equal(t, tt.transactionCode, rr.Code)
		})
	}
}

// ========================================================
// Authentication
// ========================================================

func TestBearerAuthentication(t *testing.T) {
	const secret = "secret"
	s, _ := newTestServer(t, func(cfg *config.Config) { cfg.Auth.JWTSecret = secret })

	token, err := jwt.NewToken("u1", secret, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	bearer := "Bearer " + token

	rr := do(t, s, http.MethodGet, "/api/transactions?external_id=u1", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/transactions", nil, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	body := lunch("", "expense")
	delete(body, "external_id")
	rr = do(t, s, http.MethodPost, "/api/transactions", body, "Authorization", bearer)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, s, http.MethodGet, "/api/transactions", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.Transaction](t, rr), 1)

	rr = do(t, s, http.MethodPost, "/api/transactions", lunch("u2", "expense"), "Authorization", bearer)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "health check stays public")
}

// ========================================================
// Summary, health & CORS
// ========================================================

func TestSummaryHandler(t *testing.T) {
	s, _ := newTestServer(t, nil)

	do(t, s, http.MethodPost, "/api/transactions", lunch("u1", "expense"))
	salary := lunch("u1", "income")
	salary["amount"] = 3000
	salary["category"] = "Salary"
	salary["date"] = "2024-02-01T09:00:00Z"
	do(t, s, http.MethodPost, "/api/transactions", salary)
	do(t, s, http.MethodPost, "/api/assets", map[string]any{"external_id": "u1", "value": 10000})
	do(t, s, http.MethodPost, "/api/liabilities", map[string]any{"external_id": "u1", "amount": 2500})

	rr := do(t, s, http.MethodGet, "/api/summary?external_id=u1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	all := decode[models.Summary](t, rr)
	assert.True(t, decimal.NewFromInt(3000).Equal(all.TotalIncome))
	assert.True(t, decimal.NewFromInt(50).Equal(all.TotalExpenses))
	assert.True(t, decimal.NewFromInt(7500).Equal(all.NetWorth))
	assert.Len(t, all.Monthly, 2)

	rr = do(t, s, http.MethodGet, "/api/summary?external_id=u1&month=2024-01", nil)
	jan := decode[models.Summary](t, rr)
	assert.True(t, jan.TotalIncome.IsZero())
	assert.True(t, decimal.NewFromInt(50).Equal(jan.TotalExpenses))

	rr = do(t, s, http.MethodGet, "/api/summary?external_id=u1&month=Jan", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, http.MethodGet, "/api/summary?external_id=ghost", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthHandler(t *testing.T) {
	s, store := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	store.Stop()
	rr = do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	})

	rr := do(t, s, http.MethodOptions, "/api/transactions", nil, "Origin", "http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	rr = do(t, s, http.MethodOptions, "/api/transactions", nil, "Origin", "http://evil.example")
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
