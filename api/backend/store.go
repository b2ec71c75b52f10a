package backend

import (
	"sort"
	"sync"
	"time"

	"github.com/craftline/cartengine/pkg/enums"
	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/money"
	"github.com/craftline/cartengine/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the dev backend's in-memory state: a seeded catalog plus
// per-user carts, orders, and uploaded artifacts. It stands in for the
// production storefront API during local development and tests.
type Store struct {
	mu       sync.Mutex
	products map[uuid.UUID]types.ProductSummary
	carts    map[string][]types.CartLine
	orders   map[string][]types.Order
	uploads  map[string][]byte
	now      func() time.Time
}

// NewStore builds an empty store seeded with the given catalog.
func NewStore(products ...types.ProductSummary) *Store {
	s := &Store{
		products: make(map[uuid.UUID]types.ProductSummary),
		carts:    make(map[string][]types.CartLine),
		orders:   make(map[string][]types.Order),
		uploads:  make(map[string][]byte),
		now:      time.Now,
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// SeedProduct adds or replaces a catalog entry.
func (s *Store) SeedProduct(p types.ProductSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// Product returns a catalog entry.
func (s *Store) Product(productID uuid.UUID) (types.ProductSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return types.ProductSummary{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, nil
}

// Products lists the catalog sorted by title.
func (s *Store) Products() []types.ProductSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ProductSummary, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// CartLines returns the user's cart.
func (s *Store) CartLines(userID string) []types.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	out := make([]types.CartLine, len(lines))
	copy(out, lines)
	return out
}

// AddCartLine appends a line, merging quantity into an existing line
// with the same product and size.
func (s *Store) AddCartLine(userID string, productID uuid.UUID, quantity int, size *string) (types.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if quantity < 1 {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID && sameSize(lines[i].Size, size) {
			lines[i].Quantity += quantity
			s.carts[userID] = lines
			return lines[i], nil
		}
	}

	line := types.CartLine{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  quantity,
		Size:      size,
		AddedAt:   s.now(),
	}
	s.carts[userID] = append(lines, line)
	return line, nil
}

// UpdateCartQuantity changes a line's quantity in place.
func (s *Store) UpdateCartQuantity(userID string, lineID uuid.UUID, quantity int) (types.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantity = quantity
			s.carts[userID] = lines
			return lines[i], nil
		}
	}
	return types.CartLine{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

// DeleteCartLine removes a line from the user's cart.
func (s *Store) DeleteCartLine(userID string, lineID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ID == lineID {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

// CreateOrder stores an order computed from the submitted request and
// empties the user's cart.
func (s *Store) CreateOrder(userID string, req types.OrderRequest) (types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(req.Lines) == 0 {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	if !req.ShippingOption.IsValid() {
		return types.Order{}, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid shipping option %q", req.ShippingOption)
	}

	var subtotal decimal.Decimal
	lines := make([]types.OrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		product, ok := s.products[line.ProductID]
		if !ok {
			return types.Order{}, pkgerrors.Newf(pkgerrors.CodeServerRejected, "unknown product %s", line.ProductID)
		}
		amount := money.LineAmount(product.UnitPrice, line.Quantity)
		subtotal = subtotal.Add(amount)
		line.UnitPrice = product.UnitPrice
		line.ProductTitle = product.Title
		line.LineTotal = amount
		lines = append(lines, line)
	}
	totals := money.Compute(subtotal, req.ShippingOption)

	order := types.Order{
		ID:             uuid.New(),
		Status:         enums.OrderStatusPreparing,
		BillingAddress: req.BillingAddress,
		Phone:          req.Phone,
		TotalAmount:    totals.Total,
		Lines:          lines,
		CreatedAt:      s.now(),
	}
	s.orders[userID] = append(s.orders[userID], order)
	s.carts[userID] = nil
	return order, nil
}

// Orders lists the user's orders, newest first.
func (s *Store) Orders(userID string) []types.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := s.orders[userID]
	out := make([]types.Order, len(orders))
	copy(out, orders)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// SaveUpload stores artifact bytes and returns its public path.
func (s *Store) SaveUpload(folder, filename string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := "/uploads/" + folder + "/" + uuid.NewString() + "-" + filename
	s.uploads[path] = data
	return path
}

// Upload returns previously stored artifact bytes.
func (s *Store) Upload(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[path]
	return data, ok
}

func sameSize(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
