package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/craftline/cartengine/pkg/types"
	"github.com/google/uuid"
)

// CartStore talks to the remote cart endpoints. The remote store is the
// sole authority for line IDs and merge behavior.
type CartStore struct {
	client *Client
}

func NewCartStore(client *Client) *CartStore {
	return &CartStore{client: client}
}

// ListLines fetches the authoritative cart line list.
func (s *CartStore) ListLines(ctx context.Context, token string) ([]types.CartLine, error) {
	var lines []types.CartLine
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/cart",
		token:  token,
	}, &lines)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// AddLine creates (or merges into) a line for the product. The server
// merges quantity when a line with the same product and size exists.
func (s *CartStore) AddLine(ctx context.Context, token string, productID uuid.UUID, quantity int, size *string) (*types.CartLine, error) {
	form := url.Values{}
	form.Set("product_id", productID.String())
	form.Set("quantity", strconv.Itoa(quantity))
	if size != nil {
		form.Set("size", *size)
	}

	var line types.CartLine
	err := s.client.do(ctx, request{
		method:      http.MethodPost,
		path:        "/cart/items",
		token:       token,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &line)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// UpdateQuantity changes a line's quantity in place. Backends without
// the endpoint answer 405, which surfaces as Unsupported.
func (s *CartStore) UpdateQuantity(ctx context.Context, token string, lineID uuid.UUID, quantity int) (*types.CartLine, error) {
	query := url.Values{}
	query.Set("quantity", strconv.Itoa(quantity))

	var line types.CartLine
	err := s.client.do(ctx, request{
		method: http.MethodPut,
		path:   "/cart/" + lineID.String(),
		query:  query,
		token:  token,
	}, &line)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// DeleteLine removes a line from the remote cart.
func (s *CartStore) DeleteLine(ctx context.Context, token string, lineID uuid.UUID) error {
	return s.client.do(ctx, request{
		method: http.MethodDelete,
		path:   "/cart/" + lineID.String(),
		token:  token,
	}, nil)
}
