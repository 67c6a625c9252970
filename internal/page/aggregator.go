package page

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wolfeidau/storefront/internal/catalog"
	"github.com/wolfeidau/storefront/internal/telemetry"
)

// MaxRelated bounds the related-products list.
const MaxRelated = 4

// Catalog is the slice of the catalog client the aggregator needs.
type Catalog interface {
	ProductByHandle(ctx context.Context, handle string) (*catalog.Product, error)
	Products(ctx context.Context) ([]catalog.ProductSummary, error)
}

// ViewModel is the aggregator's sole output and everything the rendering
// layer gets to see. A nil Product is the expected "unknown handle" state,
// not an error; related products are populated either way.
type ViewModel struct {
	Product         *catalog.Product
	RelatedProducts []catalog.ProductSummary
}

// Aggregator assembles the view model for one product page request.
type Aggregator struct {
	catalog Catalog
}

func NewAggregator(c Catalog) *Aggregator {
	return &Aggregator{catalog: c}
}

// Load fetches the product and the catalog page concurrently and derives
// the related-products subset. Both fetches always run to completion; if
// either fails the whole load fails and the other result is discarded,
// never partially rendered.
func (a *Aggregator) Load(ctx context.Context, handle string) (*ViewModel, error) {
	started := time.Now()

	var (
		product *catalog.Product
		listing []catalog.ProductSummary
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		product, err = a.catalog.ProductByHandle(ctx, handle)
		return err
	})
	g.Go(func() error {
		var err error
		listing, err = a.catalog.Products(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	telemetry.GetMetrics().PageLoadDuration.Record(ctx, time.Since(started).Seconds())

	return &ViewModel{
		Product:         product,
		RelatedProducts: related(listing, handle),
	}, nil
}

// Listing fetches the catalog page for the index view.
func (a *Aggregator) Listing(ctx context.Context) ([]catalog.ProductSummary, error) {
	return a.catalog.Products(ctx)
}

// related drops the current product from the listing and truncates to the
// first MaxRelated entries, preserving the catalog's order.
func related(listing []catalog.ProductSummary, handle string) []catalog.ProductSummary {
	out := make([]catalog.ProductSummary, 0, MaxRelated)
	for _, summary := range listing {
		if summary.Handle == handle {
			continue
		}
		out = append(out, summary)
		if len(out) == MaxRelated {
			break
		}
	}
	return out
}
