package checkout

import (
	"context"
	"errors"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/storefront/internal/catalog"
	httpmiddleware "github.com/wolfeidau/storefront/internal/http"
	"github.com/wolfeidau/storefront/internal/telemetry"
)

// VariantField is the form field carrying the variant to check out.
const VariantField = "variantId"

// Catalog is the slice of the catalog client the checkout flow needs.
type Catalog interface {
	CreateCheckout(ctx context.Context, variantID string) (*catalog.Checkout, error)
}

// Redirect is the explicit outcome of a checkout submission. The handler
// always redirects: back to the page URL when nothing could be started, or
// out to the hosted checkout when one was.
type Redirect struct {
	To string
}

// External reports whether the redirect leaves this system for the hosted
// checkout page.
func (r Redirect) External(pageURL string) bool {
	return r.To != pageURL
}

// Service processes checkout initiation submissions.
type Service struct {
	catalog Catalog
}

func NewService(c Catalog) *Service {
	return &Service{catalog: c}
}

// Begin handles one checkout submission. A missing variant, a declined
// checkout, and an unavailable catalog all resolve to a redirect back to
// pageURL; the visitor sees a reload rather than an error message. Only a
// created checkout redirects elsewhere. Nothing is recorded locally, so
// once the redirect is issued the operation is fire-and-forget.
func (s *Service) Begin(ctx context.Context, pageURL string, form url.Values) Redirect {
	m := telemetry.GetMetrics()
	m.CheckoutsStartedTotal.Add(ctx, 1)

	variantID := form.Get(VariantField)
	if variantID == "" {
		log.Ctx(ctx).Debug().Str("page", pageURL).Msg("checkout submitted without a variant")
		m.CheckoutsDeclinedTotal.Add(ctx, 1)
		return Redirect{To: pageURL}
	}

	created, err := s.catalog.CreateCheckout(ctx, variantID)
	if err != nil {
		if !errors.Is(err, catalog.ErrUnavailable) {
			log.Ctx(ctx).Error().Err(err).Msg("checkout creation failed")
		} else {
			log.Ctx(ctx).Warn().Err(err).Msg("catalog unavailable during checkout")
		}
		m.CheckoutsDeclinedTotal.Add(ctx, 1)
		return Redirect{To: pageURL}
	}

	if created == nil {
		log.Ctx(ctx).Info().Str("variant_id", variantID).Msg("catalog declined checkout")
		m.CheckoutsDeclinedTotal.Add(ctx, 1)
		return Redirect{To: pageURL}
	}

	log.Ctx(ctx).Info().
		Str("checkout_id", created.ID).
		Str("variant_id", variantID).
		Str("client_ip", httpmiddleware.ClientIPFromContext(ctx)).
		Msg("redirecting visitor to hosted checkout")
	m.CheckoutRedirectsTotal.Add(ctx, 1)

	return Redirect{To: created.WebURL}
}
