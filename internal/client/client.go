package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/google/uuid"
)

const defaultTimeout = 15 * time.Second

// Client talks to the dashboard API on behalf of one external identity.
// Its methods never return errors: failures are logged and reported
// through an empty result.
type Client struct {
	baseURL    string
	externalID string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithToken sends token as a bearer credential with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL, externalID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		externalID: externalID,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error: %d - %s", e.Status, e.Message)
}

func (c *Client) caller() models.Caller {
	return models.Caller{ExternalID: c.externalID}
}

func (c *Client) identityQuery() url.Values {
	q := url.Values{}
	if c.externalID != "" {
		q.Set("external_id", c.externalID)
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + "/api/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &apiError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) logFailure(op string, err error, attrs ...any) {
	c.logger.Error("API request failed", append([]any{slog.String("op", op), "error", err}, attrs...)...)
}

func list[T any](ctx context.Context, c *Client, name string) []T {
	records := make([]T, 0)
	if err := c.do(ctx, http.MethodGet, name, c.identityQuery(), nil, &records); err != nil {
		c.logFailure("list "+name, err)
		return []T{}
	}
	if records == nil {
		return []T{}
	}
	return records
}

func get[T any](ctx context.Context, c *Client, name string, id uuid.UUID) *T {
	var record T
	if err := c.do(ctx, http.MethodGet, name+"/"+id.String(), c.identityQuery(), nil, &record); err != nil {
		c.logFailure("get "+name, err, slog.String("id", id.String()))
		return nil
	}
	return &record
}

// write sends a create or update request and unwraps the record from the
// {"message": ..., "<singular>": record} envelope.
func write[T any](ctx context.Context, c *Client, method, path, singular string, body any) *T {
	var envelope map[string]json.RawMessage
	if err := c.do(ctx, method, path, nil, body, &envelope); err != nil {
		c.logFailure(strings.ToLower(method)+" "+path, err)
		return nil
	}

	raw, ok := envelope[singular]
	if !ok {
		c.logFailure(strings.ToLower(method)+" "+path, fmt.Errorf("response has no %q field", singular))
		return nil
	}

	var record T
	if err := json.Unmarshal(raw, &record); err != nil {
		c.logFailure(strings.ToLower(method)+" "+path, fmt.Errorf("failed to decode %s: %w", singular, err))
		return nil
	}
	return &record
}

func remove(ctx context.Context, c *Client, name string, id uuid.UUID) bool {
	if err := c.do(ctx, http.MethodDelete, name+"/"+id.String(), nil, c.caller(), nil); err != nil {
		c.logFailure("delete "+name, err, slog.String("id", id.String()))
		return false
	}
	return true
}

// Summary returns the dashboard totals, limited to month (YYYY-MM) when it is set.
func (c *Client) Summary(ctx context.Context, month string) *models.Summary {
	q := c.identityQuery()
	if month != "" {
		q.Set("month", month)
	}

	var s models.Summary
	if err := c.do(ctx, http.MethodGet, "summary", q, nil, &s); err != nil {
		c.logFailure("summary", err, slog.String("month", month))
		return nil
	}
	return &s
}
