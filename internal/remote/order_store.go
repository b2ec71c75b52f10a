package remote

import (
	"context"
	"net/http"

	"github.com/craftline/cartengine/pkg/types"
)

// OrderStore submits and lists orders against the remote order endpoints.
type OrderStore struct {
	client *Client
}

func NewOrderStore(client *Client) *OrderStore {
	return &OrderStore{client: client}
}

// CreateOrder submits the assembled order request. The server computes
// its own record, empties the remote cart, and returns the stored order.
func (s *OrderStore) CreateOrder(ctx context.Context, token string, req types.OrderRequest) (*types.Order, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	var order types.Order
	err = s.client.do(ctx, request{
		method:      http.MethodPost,
		path:        "/orders",
		token:       token,
		body:        body,
		contentType: "application/json",
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the caller's order history, newest first.
func (s *OrderStore) ListOrders(ctx context.Context, token string) ([]types.Order, error) {
	var orders []types.Order
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/orders",
		token:  token,
	}, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}
