package catalog

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/logger"
	"github.com/craftline/cartengine/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type productFetcher interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*types.ProductSummary, error)
}

// Resolver maps product ids to summaries for pricing, size validation,
// and customizability checks. Results are cached unconditionally for the
// checkout session; prices are not expected to change mid-session.
type Resolver struct {
	mu    sync.Mutex
	cache map[uuid.UUID]types.ProductSummary
	fetch productFetcher
	logg  *logger.Logger
}

// NewResolver builds a resolver over the remote catalog store.
func NewResolver(fetch productFetcher, logg *logger.Logger) (*Resolver, error) {
	if fetch == nil {
		return nil, fmt.Errorf("product fetcher required")
	}
	return &Resolver{
		cache: make(map[uuid.UUID]types.ProductSummary),
		fetch: fetch,
		logg:  logg,
	}, nil
}

// ResolveAll returns summaries for every distinct id it can resolve.
// Uncached ids are fetched concurrently; an id that fails to resolve is
// simply absent from the result, never an error — callers must check for
// holes. The returned error is non-nil only when the context ends.
func (r *Resolver) ResolveAll(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]types.ProductSummary, error) {
	resolved := make(map[uuid.UUID]types.ProductSummary, len(productIDs))
	var missing []uuid.UUID

	r.mu.Lock()
	for _, id := range productIDs {
		if id == uuid.Nil {
			continue
		}
		if _, seen := resolved[id]; seen {
			continue
		}
		if summary, ok := r.cache[id]; ok {
			resolved[id] = summary
			continue
		}
		if !contains(missing, id) {
			missing = append(missing, id)
		}
	}
	r.mu.Unlock()

	if len(missing) == 0 {
		return resolved, nil
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	for _, id := range missing {
		group.Go(func() error {
			summary, err := r.fetch.GetProduct(groupCtx, id)
			if err != nil {
				if r.logg != nil {
					r.logg.Warn(r.logg.WithProductID(groupCtx, id.String()), "catalog.resolve_miss")
				}
				return nil
			}
			mu.Lock()
			resolved[id] = *summary
			mu.Unlock()

			r.mu.Lock()
			r.cache[id] = *summary
			r.mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetworkTimeout, err, "catalog resolution interrupted")
	}
	return resolved, nil
}

// Resolve returns a single product summary, hitting the cache first.
func (r *Resolver) Resolve(ctx context.Context, productID uuid.UUID) (*types.ProductSummary, error) {
	resolved, err := r.ResolveAll(ctx, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	summary, ok := resolved[productID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeCatalogUnavailable, "product could not be resolved")
	}
	return &summary, nil
}

// Cached returns the cached summary for a product, if present.
func (r *Resolver) Cached(productID uuid.UUID) (types.ProductSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary, ok := r.cache[productID]
	return summary, ok
}

// Invalidate drops the session cache so the next resolve re-fetches
// current prices.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[uuid.UUID]types.ProductSummary)
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
