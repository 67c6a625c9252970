package catalog

import "time"

// Product is a request-scoped snapshot of a catalog product. The catalog
// service owns the entity; the handle is its stable external identifier.
type Product struct {
	Handle      string
	Title       string
	Description string
	Tags        []string
	UpdatedAt   time.Time
	Images      []Image
	Variants    []Variant
	PriceRange  PriceRange
}

// ProductSummary is the subset of product data used for listings and
// related-product suggestions.
type ProductSummary struct {
	Handle     string
	Title      string
	Image      *Image
	PriceRange PriceRange
}

type Image struct {
	URL     string
	AltText string
}

type Variant struct {
	ID    string
	Price string
}

type PriceRange struct {
	MinVariantPrice Money
}

// Money carries the amount as a decimal string, exactly as the catalog
// returns it. No arithmetic happens on this side.
type Money struct {
	Amount       string
	CurrencyCode string
}

// Checkout is a remote checkout session. The visitor is redirected to
// WebURL and never returns; nothing about it is stored locally.
type Checkout struct {
	ID     string
	WebURL string
}
