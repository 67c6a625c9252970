package page

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCachePolicy_header(t *testing.T) {
	policy := DefaultCachePolicy()
	require.Equal(t, "public, max-age=60, s-maxage=3600, stale-while-revalidate=86400", policy.Header())
}

func TestCachePolicy_customDurations(t *testing.T) {
	policy := CachePolicy{
		MaxAge:               30 * time.Second,
		SharedMaxAge:         10 * time.Minute,
		StaleWhileRevalidate: 2 * time.Hour,
	}
	require.Equal(t, "public, max-age=30, s-maxage=600, stale-while-revalidate=7200", policy.Header())
}

func TestCachePolicy_apply(t *testing.T) {
	h := http.Header{}
	DefaultCachePolicy().Apply(h)
	require.Equal(t, "public, max-age=60, s-maxage=3600, stale-while-revalidate=86400", h.Get("Cache-Control"))
}
