package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/storefront/internal/telemetry"
)

const (
	accessTokenHeader = "X-Storefront-Access-Token"

	defaultPageSize = 20
	defaultMaxTries = 3
)

// Config holds catalog client configuration.
type Config struct {
	// Endpoint is the GraphQL endpoint URL of the catalog service
	Endpoint string
	// AccessToken authenticates this storefront against the catalog
	AccessToken string
	// PageSize bounds the product list query
	PageSize int
	// MaxTries bounds query retries; mutations are never retried
	MaxTries uint
	// HTTPClient overrides the default caching transport, used in tests
	HTTPClient *http.Client
}

// Client is a typed wrapper over the remote catalog's GraphQL API. Queries
// go out as GETs so the caching transport and shared caches can hold them;
// the checkout mutation is a POST and bypasses both caching and retries.
type Client struct {
	endpoint *url.URL
	token    string
	pageSize int
	maxTries uint
	http     *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("catalog endpoint is required")
	}

	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog endpoint: %w", err)
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = defaultMaxTries
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = NewHTTPClient()
	}

	return &Client{
		endpoint: endpoint,
		token:    cfg.AccessToken,
		pageSize: cfg.PageSize,
		maxTries: cfg.MaxTries,
		http:     cfg.HTTPClient,
	}, nil
}

// ProductByHandle fetches one product by its handle. A nil product without
// an error means the catalog has no match, which callers must treat as a
// normal outcome, not a failure.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*Product, error) {
	if handle == "" {
		return nil, errors.New("handle is required")
	}

	data, err := c.query(ctx, "product_by_handle", productByHandleQuery, map[string]any{
		"handle": handle,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		ProductByHandle *productWire `json:"productByHandle"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed product payload: %s", ErrUnavailable, err)
	}

	if payload.ProductByHandle == nil {
		return nil, nil
	}

	return payload.ProductByHandle.toProduct(), nil
}

// Products fetches one page of the catalog, in the catalog's own order.
func (c *Client) Products(ctx context.Context) ([]ProductSummary, error) {
	data, err := c.query(ctx, "product_list", productListQuery, map[string]any{
		"first": c.pageSize,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Products connectionWire[productSummaryWire] `json:"products"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed product list payload: %s", ErrUnavailable, err)
	}

	nodes := payload.Products.nodes()
	summaries := make([]ProductSummary, 0, len(nodes))
	for _, node := range nodes {
		summaries = append(summaries, node.toSummary())
	}

	return summaries, nil
}

// CreateCheckout asks the catalog to open a checkout session for a single
// unit of the given variant. A nil checkout without an error means the
// catalog declined, for example because the variant no longer exists.
func (c *Client) CreateCheckout(ctx context.Context, variantID string) (*Checkout, error) {
	if variantID == "" {
		return nil, errors.New("variant id is required")
	}

	data, err := c.mutate(ctx, "checkout_create", checkoutCreateMutation, map[string]any{
		"variantId": variantID,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		CheckoutCreate struct {
			Checkout           *checkoutWire           `json:"checkout"`
			CheckoutUserErrors []checkoutUserErrorWire `json:"checkoutUserErrors"`
		} `json:"checkoutCreate"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed checkout payload: %s", ErrUnavailable, err)
	}

	if len(payload.CheckoutCreate.CheckoutUserErrors) > 0 {
		first := payload.CheckoutCreate.CheckoutUserErrors[0]
		log.Ctx(ctx).Info().
			Str("code", first.Code).
			Str("message", first.Message).
			Msg("catalog declined checkout")
		return nil, nil
	}

	if payload.CheckoutCreate.Checkout == nil {
		return nil, nil
	}

	return &Checkout{
		ID:     payload.CheckoutCreate.Checkout.ID,
		WebURL: payload.CheckoutCreate.Checkout.WebURL,
	}, nil
}

// query executes a GraphQL query as a GET with a bounded retry budget.
// Only transport-level failures retry; unauthorized and unexpected-status
// outcomes are permanent.
func (c *Client) query(ctx context.Context, op, doc string, vars map[string]any) (json.RawMessage, error) {
	operation := func() (json.RawMessage, error) {
		data, err := c.doQuery(ctx, op, doc, vars)
		if err != nil && !errors.Is(err, ErrUnavailable) {
			return nil, backoff.Permanent(err)
		}
		return data, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
}

func (c *Client) doQuery(ctx context.Context, op, doc string, vars map[string]any) (json.RawMessage, error) {
	variables, err := json.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variables: %w", err)
	}

	u := *c.endpoint
	q := u.Query()
	q.Set("query", doc)
	q.Set("variables", string(variables))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	return c.roundTrip(req, op)
}

func (c *Client) mutate(ctx context.Context, op, doc string, vars map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphQLRequest{Query: doc, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mutation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.roundTrip(req, op)
}

func (c *Client) roundTrip(req *http.Request, op string) (json.RawMessage, error) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(accessTokenHeader, c.token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(req.Context(), op, started, err)
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// handled below
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.record(req.Context(), op, started, ErrUnauthorized)
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 500:
		err := fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		c.record(req.Context(), op, started, err)
		return nil, err
	default:
		err := &StatusError{Status: resp.StatusCode}
		c.record(req.Context(), op, started, err)
		return nil, err
	}

	var envelope graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		err = fmt.Errorf("%w: malformed response: %s", ErrUnavailable, err)
		c.record(req.Context(), op, started, err)
		return nil, err
	}

	if len(envelope.Errors) > 0 {
		err := fmt.Errorf("%w: %s", ErrUnavailable, envelope.Errors[0].Message)
		c.record(req.Context(), op, started, err)
		return nil, err
	}

	c.record(req.Context(), op, started, nil)
	return envelope.Data, nil
}

func (c *Client) record(ctx context.Context, op string, started time.Time, err error) {
	m := telemetry.GetMetrics()
	attrs := metric.WithAttributes(attribute.String("operation", op))

	m.CatalogRequestsTotal.Add(ctx, 1, attrs)
	m.CatalogRequestDuration.Record(ctx, time.Since(started).Seconds(), attrs)
	if err != nil {
		m.CatalogErrorsTotal.Add(ctx, 1, attrs)
	}
}
