package page

import (
	"fmt"
	"net/http"
	"time"
)

// CachePolicy is the fixed freshness policy the read path attaches to its
// responses: fresh for a short browser-side window, cacheable much longer
// at the shared/edge cache, and eligible for stale-while-revalidate over a
// long background window. It does not vary per product, and the outer
// response layer copies it verbatim. Mutations never carry it.
type CachePolicy struct {
	MaxAge               time.Duration
	SharedMaxAge         time.Duration
	StaleWhileRevalidate time.Duration
}

// DefaultCachePolicy returns the policy used when the site config does not
// override it: one minute in the browser, one hour at the edge, one day of
// serve-stale.
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{
		MaxAge:               time.Minute,
		SharedMaxAge:         time.Hour,
		StaleWhileRevalidate: 24 * time.Hour,
	}
}

// Header renders the policy as a Cache-Control value.
func (p CachePolicy) Header() string {
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d, stale-while-revalidate=%d",
		int(p.MaxAge.Seconds()),
		int(p.SharedMaxAge.Seconds()),
		int(p.StaleWhileRevalidate.Seconds()),
	)
}

// Apply sets the policy on a response.
func (p CachePolicy) Apply(h http.Header) {
	h.Set("Cache-Control", p.Header())
}
