package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/storefront"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Page metrics
	PageViewsTotal   metric.Int64Counter
	PageRenderErrors metric.Int64Counter
	PageLoadDuration metric.Float64Histogram

	// Catalog client metrics
	CatalogRequestsTotal   metric.Int64Counter
	CatalogErrorsTotal     metric.Int64Counter
	CatalogRequestDuration metric.Float64Histogram

	// Checkout metrics
	CheckoutsStartedTotal  metric.Int64Counter
	CheckoutRedirectsTotal metric.Int64Counter
	CheckoutsDeclinedTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	// Page metrics
	m.PageViewsTotal, _ = meter.Int64Counter(
		"storefront.pages.views.total",
		metric.WithDescription("Total number of product page renders"),
		metric.WithUnit("{render}"),
	)

	m.PageRenderErrors, _ = meter.Int64Counter(
		"storefront.pages.errors.total",
		metric.WithDescription("Total number of page requests that hit the error boundary"),
		metric.WithUnit("{error}"),
	)

	m.PageLoadDuration, _ = meter.Float64Histogram(
		"storefront.pages.load.duration",
		metric.WithDescription("Duration of page data aggregation"),
		metric.WithUnit("s"),
	)

	// Catalog client metrics
	m.CatalogRequestsTotal, _ = meter.Int64Counter(
		"storefront.catalog.requests.total",
		metric.WithDescription("Total number of catalog API requests"),
		metric.WithUnit("{request}"),
	)

	m.CatalogErrorsTotal, _ = meter.Int64Counter(
		"storefront.catalog.errors.total",
		metric.WithDescription("Total number of failed catalog API requests"),
		metric.WithUnit("{error}"),
	)

	m.CatalogRequestDuration, _ = meter.Float64Histogram(
		"storefront.catalog.request.duration",
		metric.WithDescription("Duration of catalog API requests"),
		metric.WithUnit("s"),
	)

	// Checkout metrics
	m.CheckoutsStartedTotal, _ = meter.Int64Counter(
		"storefront.checkouts.started.total",
		metric.WithDescription("Total number of checkout initiation attempts"),
		metric.WithUnit("{checkout}"),
	)

	m.CheckoutRedirectsTotal, _ = meter.Int64Counter(
		"storefront.checkouts.redirects.total",
		metric.WithDescription("Total number of successful redirects to the hosted checkout"),
		metric.WithUnit("{redirect}"),
	)

	m.CheckoutsDeclinedTotal, _ = meter.Int64Counter(
		"storefront.checkouts.declined.total",
		metric.WithDescription("Total number of checkout attempts declined or rejected"),
		metric.WithUnit("{checkout}"),
	)

	return m
}
