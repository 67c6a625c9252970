package catalog

import (
	"encoding/json"
	"time"
)

// Wire types mirror the storefront API's JSON shapes, including edge/node
// pagination. They exist only to be unwrapped into the clean model types.

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type connectionWire[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
}

func (c connectionWire[T]) nodes() []T {
	out := make([]T, 0, len(c.Edges))
	for _, edge := range c.Edges {
		out = append(out, edge.Node)
	}
	return out
}

type moneyWire struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type priceRangeWire struct {
	MinVariantPrice moneyWire `json:"minVariantPrice"`
}

func (p priceRangeWire) toPriceRange() PriceRange {
	return PriceRange{
		MinVariantPrice: Money{
			Amount:       p.MinVariantPrice.Amount,
			CurrencyCode: p.MinVariantPrice.CurrencyCode,
		},
	}
}

type imageWire struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type variantWire struct {
	ID    string `json:"id"`
	Price string `json:"price"`
}

type productWire struct {
	Handle      string                      `json:"handle"`
	Title       string                      `json:"title"`
	Description string                      `json:"description"`
	Tags        []string                    `json:"tags"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
	PriceRange  priceRangeWire              `json:"priceRange"`
	Images      connectionWire[imageWire]   `json:"images"`
	Variants    connectionWire[variantWire] `json:"variants"`
}

func (p *productWire) toProduct() *Product {
	product := &Product{
		Handle:      p.Handle,
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		UpdatedAt:   p.UpdatedAt,
		PriceRange:  p.PriceRange.toPriceRange(),
	}
	for _, img := range p.Images.nodes() {
		product.Images = append(product.Images, Image(img))
	}
	for _, v := range p.Variants.nodes() {
		product.Variants = append(product.Variants, Variant(v))
	}
	return product
}

type productSummaryWire struct {
	Handle     string                    `json:"handle"`
	Title      string                    `json:"title"`
	PriceRange priceRangeWire            `json:"priceRange"`
	Images     connectionWire[imageWire] `json:"images"`
}

func (p productSummaryWire) toSummary() ProductSummary {
	summary := ProductSummary{
		Handle:     p.Handle,
		Title:      p.Title,
		PriceRange: p.PriceRange.toPriceRange(),
	}
	if images := p.Images.nodes(); len(images) > 0 {
		img := Image(images[0])
		summary.Image = &img
	}
	return summary
}

type checkoutWire struct {
	ID     string `json:"id"`
	WebURL string `json:"webUrl"`
}

type checkoutUserErrorWire struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}
