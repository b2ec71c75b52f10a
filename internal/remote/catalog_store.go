package remote

import (
	"context"
	"net/http"

	"github.com/craftline/cartengine/pkg/types"
	"github.com/google/uuid"
)

// CatalogStore reads product records from the remote catalog.
type CatalogStore struct {
	client *Client
}

func NewCatalogStore(client *Client) *CatalogStore {
	return &CatalogStore{client: client}
}

// ListProducts fetches the full catalog. Catalog reads are public.
func (s *CatalogStore) ListProducts(ctx context.Context) ([]types.ProductSummary, error) {
	var products []types.ProductSummary
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/products",
	}, &products)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product summary. Catalog reads are public.
func (s *CatalogStore) GetProduct(ctx context.Context, productID uuid.UUID) (*types.ProductSummary, error) {
	var product types.ProductSummary
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/products/" + productID.String(),
	}, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
