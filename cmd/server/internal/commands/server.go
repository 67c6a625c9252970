package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"filippo.io/csrf"
	"github.com/wolfeidau/storefront/internal/assets"
	"github.com/wolfeidau/storefront/internal/catalog"
	"github.com/wolfeidau/storefront/internal/checkout"
	"github.com/wolfeidau/storefront/internal/config"
	httpmiddleware "github.com/wolfeidau/storefront/internal/http"
	"github.com/wolfeidau/storefront/internal/logger"
	"github.com/wolfeidau/storefront/internal/page"
	"github.com/wolfeidau/storefront/internal/session"
	"github.com/wolfeidau/storefront/internal/telemetry"
	"github.com/wolfeidau/storefront/internal/web"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:3000" env:"STOREFRONT_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"STOREFRONT_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"STOREFRONT_TLS_KEY"`

	// Catalog configuration
	CatalogEndpoint string `help:"catalog GraphQL endpoint URL" required:"" env:"STOREFRONT_CATALOG_ENDPOINT"`
	CatalogToken    string `help:"catalog storefront access token" default:"" env:"STOREFRONT_CATALOG_TOKEN"`
	CatalogRetries  uint   `help:"max tries for catalog queries" default:"3" env:"STOREFRONT_CATALOG_RETRIES"`

	// Session configuration
	SessionSecret string `help:"secret key for HMAC signing of session cookies" required:"" env:"STOREFRONT_SESSION_SECRET"`

	// Site configuration
	SiteConfig string `help:"path to site config YAML file" default:"" env:"STOREFRONT_SITE_CONFIG"`

	// Operational modes
	Tracing bool `help:"enable tracing" default:"false" env:"STOREFRONT_TRACING"`
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	// Setup telemetry if enabled
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "storefront-server", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	site, err := config.Load(c.SiteConfig)
	if err != nil {
		return fmt.Errorf("failed to load site config: %w", err)
	}

	codec, err := session.NewCodec([]byte(c.SessionSecret))
	if err != nil {
		return fmt.Errorf("failed to create session codec: %w", err)
	}

	catalogClient, err := catalog.New(catalog.Config{
		Endpoint:    c.CatalogEndpoint,
		AccessToken: c.CatalogToken,
		PageSize:    site.Catalog.PageSize,
		MaxTries:    c.CatalogRetries,
	})
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	// Build the optional client enhancement script
	pipeline := assets.New(assets.DefaultConfig())
	if err = pipeline.Build(); err != nil {
		return fmt.Errorf("failed to build js assets: %w", err)
	}

	handlers := web.NewHandlers(web.HandlersConfig{
		SiteName:   site.Name,
		Codec:      codec,
		Aggregator: page.NewAggregator(catalogClient),
		Checkout:   checkout.NewService(catalogClient),
		Policy:     site.CachePolicy(),
		Scripts:    pipeline.Scripts,
	})

	mux := http.NewServeMux()
	mux.Handle("GET /assets/", pipeline.Handler())
	handlers.Register(mux)

	// CSRF protection for the checkout form
	protection := csrf.New()

	var handler http.Handler = protection.Handler(mux)
	handler = httpmiddleware.GzipMiddleware()(handler)
	handler = logger.NewHTTPRequests(log)(handler)
	handler = httpmiddleware.ClientIPMiddleware()(handler)
	handler = httpmiddleware.RequestIDMiddleware()(handler)

	server := configureHTTPServer(c.Listen, handler)

	if c.Cert == "" && c.Key == "" {
		log.Info().Str("addr", c.Listen).Str("site", site.Name).Msg("Starting HTTP server")
		return server.ListenAndServe()
	}

	if c.Cert == "" || c.Key == "" {
		return errors.New("TLS requires both a certificate and a key (--cert and --key)")
	}
	if _, err := os.Stat(c.Cert); err != nil {
		return fmt.Errorf("TLS certificate not found at %s: %w", c.Cert, err)
	}
	if _, err := os.Stat(c.Key); err != nil {
		return fmt.Errorf("TLS key not found at %s: %w", c.Key, err)
	}

	log.Info().Str("addr", c.Listen).Str("site", site.Name).Msg("Starting HTTPS server")
	return server.ListenAndServeTLS(c.Cert, c.Key)
}
