package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/storefront/internal/page"
)

// Site holds the per-store settings that are data rather than deployment
// flags: display name, catalog paging, and the edge caching policy.
type Site struct {
	Name    string  `yaml:"name"`
	Catalog Catalog `yaml:"catalog"`
	Cache   Cache   `yaml:"cache"`
}

type Catalog struct {
	PageSize int `yaml:"pageSize"`
}

type Cache struct {
	MaxAgeSeconds               int `yaml:"maxAge"`
	SharedMaxAgeSeconds         int `yaml:"sharedMaxAge"`
	StaleWhileRevalidateSeconds int `yaml:"staleWhileRevalidate"`
}

// Default returns the settings used when no site file is given.
func Default() Site {
	policy := page.DefaultCachePolicy()
	return Site{
		Name: "Storefront",
		Catalog: Catalog{
			PageSize: 20,
		},
		Cache: Cache{
			MaxAgeSeconds:               int(policy.MaxAge.Seconds()),
			SharedMaxAgeSeconds:         int(policy.SharedMaxAge.Seconds()),
			StaleWhileRevalidateSeconds: int(policy.StaleWhileRevalidate.Seconds()),
		},
	}
}

// Load reads a site file, filling anything unset from the defaults. An
// empty path returns the defaults unchanged.
func Load(path string) (Site, error) {
	site := Default()
	if path == "" {
		return site, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 - operator-supplied path
	if err != nil {
		return site, fmt.Errorf("failed to read site config: %w", err)
	}

	if err := yaml.Unmarshal(data, &site); err != nil {
		return site, fmt.Errorf("failed to parse site config: %w", err)
	}

	return site, nil
}

// CachePolicy converts the configured seconds into the page cache policy.
func (s Site) CachePolicy() page.CachePolicy {
	return page.CachePolicy{
		MaxAge:               time.Duration(s.Cache.MaxAgeSeconds) * time.Second,
		SharedMaxAge:         time.Duration(s.Cache.SharedMaxAgeSeconds) * time.Second,
		StaleWhileRevalidate: time.Duration(s.Cache.StaleWhileRevalidateSeconds) * time.Second,
	}
}
