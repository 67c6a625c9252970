package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/storefront/internal/catalog"
	"github.com/wolfeidau/storefront/internal/checkout"
	"github.com/wolfeidau/storefront/internal/page"
	"github.com/wolfeidau/storefront/internal/session"
	"github.com/wolfeidau/storefront/internal/telemetry"
)

// Handlers binds the request-lifecycle pipeline to HTTP routes. The
// rendering layer only ever sees the already-resolved view model plus the
// script flag; all session access and fetching happens here.
type Handlers struct {
	siteName   string
	codec      *session.Codec
	aggregator *page.Aggregator
	checkout   *checkout.Service
	policy     page.CachePolicy
	scripts    func() []string
}

type HandlersConfig struct {
	SiteName   string
	Codec      *session.Codec
	Aggregator *page.Aggregator
	Checkout   *checkout.Service
	Policy     page.CachePolicy
	// Scripts supplies the current asset script URLs; nil means no client
	// script is available regardless of the visitor's preference.
	Scripts func() []string
}

func NewHandlers(cfg HandlersConfig) *Handlers {
	if cfg.Scripts == nil {
		cfg.Scripts = func() []string { return nil }
	}
	return &Handlers{
		siteName:   cfg.SiteName,
		codec:      cfg.Codec,
		aggregator: cfg.Aggregator,
		checkout:   cfg.Checkout,
		policy:     cfg.Policy,
		scripts:    cfg.Scripts,
	}
}

// Register wires the routes onto the mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.Handle("GET /{$}", h.boundary(h.index))
	mux.Handle("GET /products/{handle}", h.boundary(h.product))
	mux.HandleFunc("POST /products/{handle}", h.beginCheckout)
}

// negotiate resolves the visitor's script preference and re-issues the
// session cookie. The cookie goes out on every request that touches the
// session, changed or not.
func (h *Handlers) negotiate(w http.ResponseWriter, r *http.Request) bool {
	bag := h.codec.Decode(r)
	enabled := session.ResolveScripts(r.URL.Query(), bag)

	cookie, err := h.codec.Encode(bag)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to encode session bag")
		return enabled
	}
	http.SetCookie(w, cookie)

	return enabled
}

// product is the read path: feature negotiation, concurrent aggregation,
// cache directives, render. An unknown handle is a normal 200 render with
// suggestions, not an error.
func (h *Handlers) product(w http.ResponseWriter, r *http.Request) error {
	handle := r.PathValue("handle")
	enabled := h.negotiate(w, r)

	vm, err := h.aggregator.Load(r.Context(), handle)
	if err != nil {
		return err
	}

	h.policy.Apply(w.Header())
	telemetry.GetMetrics().PageViewsTotal.Add(r.Context(), 1)

	data := productPage{
		Site:            h.siteName,
		Title:           "Product not found",
		Product:         vm.Product,
		RelatedProducts: vm.RelatedProducts,
		ScriptsEnabled:  enabled,
		Scripts:         h.scripts(),
	}
	if vm.Product != nil {
		data.Title = vm.Product.Title
	}

	return render(w, http.StatusOK, "product.html", data)
}

// index lists the catalog page. Same session and cache treatment as the
// product route.
func (h *Handlers) index(w http.ResponseWriter, r *http.Request) error {
	enabled := h.negotiate(w, r)

	products, err := h.aggregator.Listing(r.Context())
	if err != nil {
		return err
	}

	h.policy.Apply(w.Header())
	telemetry.GetMetrics().PageViewsTotal.Add(r.Context(), 1)

	return render(w, http.StatusOK, "index.html", indexPage{
		Site:           h.siteName,
		Products:       products,
		ScriptsEnabled: enabled,
		Scripts:        h.scripts(),
	})
}

// beginCheckout is the mutation path. It always answers with a redirect
// and never emits caching directives.
func (h *Handlers) beginCheckout(w http.ResponseWriter, r *http.Request) {
	pageURL := "/products/" + r.PathValue("handle")

	if err := r.ParseForm(); err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("unparseable checkout form")
		http.Redirect(w, r, pageURL, http.StatusSeeOther)
		return
	}

	redirect := h.checkout.Begin(r.Context(), pageURL, r.PostForm)
	http.Redirect(w, r, redirect.To, http.StatusSeeOther)
}

// boundary is the single place unexpected failures surface. Expected
// outcomes never reach it; anything that does is logged and answered with
// a generic failure page, never silently served as stale or empty data.
func (h *Handlers) boundary(fn func(http.ResponseWriter, *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		telemetry.GetMetrics().PageRenderErrors.Add(r.Context(), 1)

		var statusErr *catalog.StatusError

		switch {
		case errors.Is(err, catalog.ErrUnauthorized):
			log.Ctx(r.Context()).Error().Err(err).Msg("catalog rejected our credentials")
			_ = render(w, http.StatusInternalServerError, "error.html", errorPage{
				Site:    h.siteName,
				Message: "This store is not configured correctly.",
			})
		case errors.Is(err, catalog.ErrUnavailable):
			log.Ctx(r.Context()).Error().Err(err).Msg("catalog unavailable")
			_ = render(w, http.StatusBadGateway, "error.html", errorPage{
				Site:    h.siteName,
				Message: "The catalog is unavailable right now. Please try again shortly.",
			})
		case errors.As(err, &statusErr):
			log.Ctx(r.Context()).Error().Int("status", statusErr.Status).Msg("unexpected catalog response status")
			_ = render(w, http.StatusInternalServerError, "error.html", errorPage{
				Site:    h.siteName,
				Message: "Something unexpected happened. Please try again shortly.",
			})
		default:
			log.Ctx(r.Context()).Error().Err(err).Msg("unhandled error")
			_ = render(w, http.StatusInternalServerError, "error.html", errorPage{
				Site:    h.siteName,
				Message: "Something unexpected happened. Please try again shortly.",
			})
		}
	})
}
