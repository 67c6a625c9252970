package catalog

import (
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPClient creates the HTTP client used for catalog traffic. Query
// GETs are held in an in-memory shared cache that honors the catalog's own
// Cache-Control headers; POSTs (the checkout mutation) pass straight
// through. The transport is OTEL-instrumented so catalog latency shows up
// in traces.
func NewHTTPClient() *http.Client {
	cache := httpcache.NewTransport(httpcache.NewMemoryCache())

	return &http.Client{
		Transport: otelhttp.NewTransport(cache),
		Timeout:   30 * time.Second,
	}
}
