package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const productJSON = `{
	"handle": "classic-tee",
	"title": "Classic Tee",
	"description": "A classic.",
	"tags": ["tee", "cotton"],
	"updatedAt": "2024-05-01T10:00:00Z",
	"priceRange": {"minVariantPrice": {"amount": "20.00", "currencyCode": "AUD"}},
	"images": {"edges": [{"node": {"url": "https://cdn.example.com/tee.jpg", "altText": "tee"}}]},
	"variants": {"edges": [{"node": {"id": "gid://product/Variant/1", "price": "20.00"}}]}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		Endpoint:    server.URL,
		AccessToken: "token-123",
		PageSize:    6,
		MaxTries:    1,
		HTTPClient:  server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestNew_requiresEndpoint(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestProductByHandle_returnsMatchingProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method, "queries travel as GETs")
		require.Equal(t, "token-123", r.Header.Get("X-Storefront-Access-Token"))
		require.Contains(t, r.URL.Query().Get("query"), "productByHandle")

		var vars map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("variables")), &vars))
		require.Equal(t, "classic-tee", vars["handle"])

		_, _ = w.Write([]byte(`{"data": {"productByHandle": ` + productJSON + `}}`))
	})

	product, err := client.ProductByHandle(context.Background(), "classic-tee")
	require.NoError(t, err)
	require.NotNil(t, product)
	require.Equal(t, "classic-tee", product.Handle)
	require.Equal(t, "Classic Tee", product.Title)
	require.Equal(t, []string{"tee", "cotton"}, product.Tags)
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), product.UpdatedAt)
	require.Equal(t, "20.00", product.PriceRange.MinVariantPrice.Amount)
	require.Len(t, product.Images, 1)
	require.Equal(t, "https://cdn.example.com/tee.jpg", product.Images[0].URL)
	require.Len(t, product.Variants, 1)
	require.Equal(t, "gid://product/Variant/1", product.Variants[0].ID)
}

func TestProductByHandle_notFoundIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"productByHandle": null}}`))
	})

	product, err := client.ProductByHandle(context.Background(), "ghost-product")
	require.NoError(t, err)
	require.Nil(t, product)
}

func TestProductByHandle_requiresHandle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.ProductByHandle(context.Background(), "")
	require.Error(t, err)
}

func TestProductByHandle_serverErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	})

	_, err := client.ProductByHandle(context.Background(), "classic-tee")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestProductByHandle_unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := client.ProductByHandle(context.Background(), "classic-tee")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.NotErrorIs(t, err, ErrUnavailable)
}

func TestProductByHandle_unexpectedStatusEscalates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "odd", http.StatusTeapot)
	})

	_, err := client.ProductByHandle(context.Background(), "classic-tee")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTeapot, statusErr.Status)
}

func TestProductByHandle_graphQLErrorsAreUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors": [{"message": "throttled"}]}`))
	})

	_, err := client.ProductByHandle(context.Background(), "classic-tee")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "throttled")
}

func TestProductByHandle_malformedBodyIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway error</html>`))
	})

	_, err := client.ProductByHandle(context.Background(), "classic-tee")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestQueries_retryTransportFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data": {"productByHandle": null}}`))
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{
		Endpoint:   server.URL,
		MaxTries:   3,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)

	product, err := client.ProductByHandle(context.Background(), "classic-tee")
	require.NoError(t, err)
	require.Nil(t, product)
	require.Equal(t, 2, attempts)
}

func TestQueries_noRetryOnUnauthorized(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{
		Endpoint:   server.URL,
		MaxTries:   3,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)

	_, err = client.ProductByHandle(context.Background(), "classic-tee")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, 1, attempts)
}

func TestProducts_unwrapsListing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Query().Get("query"), "products(first: $first)")

		var vars map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("variables")), &vars))
		require.Equal(t, float64(6), vars["first"], "page size from config")

		_, _ = w.Write([]byte(`{"data": {"products": {"edges": [
			{"node": {"handle": "classic-tee", "title": "Classic Tee",
				"priceRange": {"minVariantPrice": {"amount": "20.00", "currencyCode": "AUD"}},
				"images": {"edges": [{"node": {"url": "https://cdn.example.com/tee.jpg", "altText": "tee"}}]}}},
			{"node": {"handle": "hoodie", "title": "Hoodie",
				"priceRange": {"minVariantPrice": {"amount": "50.00", "currencyCode": "AUD"}},
				"images": {"edges": []}}}
		]}}}`))
	})

	listing, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, listing, 2)
	require.Equal(t, "classic-tee", listing[0].Handle)
	require.NotNil(t, listing[0].Image)
	require.Equal(t, "hoodie", listing[1].Handle)
	require.Nil(t, listing[1].Image, "no image node means no image")
}

func TestCreateCheckout_success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method, "mutations travel as POSTs")

		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.True(t, strings.Contains(req.Query, "checkoutCreate"))
		require.Equal(t, "gid://product/Variant/1", req.Variables["variantId"])

		_, _ = w.Write([]byte(`{"data": {"checkoutCreate": {
			"checkout": {"id": "chk_1", "webUrl": "https://checkout.example.com/c/chk_1"},
			"checkoutUserErrors": []
		}}}`))
	})

	checkout, err := client.CreateCheckout(context.Background(), "gid://product/Variant/1")
	require.NoError(t, err)
	require.NotNil(t, checkout)
	require.Equal(t, "https://checkout.example.com/c/chk_1", checkout.WebURL)
}

func TestCreateCheckout_declinedIsNotAnError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "user errors",
			body: `{"data": {"checkoutCreate": {
				"checkout": null,
				"checkoutUserErrors": [{"code": "INVALID", "field": ["lineItems"], "message": "variant gone"}]
			}}}`,
		},
		{
			name: "null checkout",
			body: `{"data": {"checkoutCreate": {"checkout": null, "checkoutUserErrors": []}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			checkout, err := client.CreateCheckout(context.Background(), "expired-variant")
			require.NoError(t, err)
			require.Nil(t, checkout)
		})
	}
}

func TestCreateCheckout_transportFailureIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.CreateCheckout(context.Background(), "gid://product/Variant/1")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateCheckout_requiresVariant(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.CreateCheckout(context.Background(), "")
	require.Error(t, err)
}
