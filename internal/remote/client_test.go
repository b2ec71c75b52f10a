package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline/cartengine/api/backend"
	"github.com/craftline/cartengine/api/routes"
	"github.com/craftline/cartengine/pkg/config"
	"github.com/craftline/cartengine/pkg/enums"
	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/types"
)

func newBackend(t *testing.T, products ...types.ProductSummary) (*httptest.Server, *backend.Store) {
	t.Helper()
	store := backend.NewStore(products...)
	cfg := &config.Config{
		App:   config.AppConfig{Env: "dev"},
		Media: config.MediaConfig{MaxUploadBytes: 1 << 20},
	}
	server := httptest.NewServer(routes.NewRouter(cfg, nil, store))
	t.Cleanup(server.Close)
	return server, store
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(config.RemoteConfig{
		BaseURL:        baseURL,
		RequestTimeout: 2 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func mintToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    "customer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("dev-secret"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func sampleProduct(price int64) types.ProductSummary {
	return types.ProductSummary{
		ID:        uuid.New(),
		Title:     "Block Print Tote",
		UnitPrice: decimal.NewFromInt(price),
	}
}

func TestCartStoreRoundTrip(t *testing.T) {
	t.Parallel()

	product := sampleProduct(499)
	server, _ := newBackend(t, product)
	cartStore := NewCartStore(newTestClient(t, server.URL))
	token := mintToken(t, uuid.New())
	ctx := context.Background()

	line, err := cartStore.AddLine(ctx, token, product.ID, 2, nil)
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if line.Quantity != 2 || line.ProductID != product.ID {
		t.Fatalf("unexpected line: %+v", line)
	}

	// Same product and no size merges on the server.
	merged, err := cartStore.AddLine(ctx, token, product.ID, 1, nil)
	if err != nil {
		t.Fatalf("merge add: %v", err)
	}
	if merged.ID != line.ID || merged.Quantity != 3 {
		t.Fatalf("expected merge into %s with quantity 3, got %+v", line.ID, merged)
	}

	lines, err := cartStore.ListLines(ctx, token)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("unexpected cart: %+v", lines)
	}

	updated, err := cartStore.UpdateQuantity(ctx, token, line.ID, 5)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if updated.Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", updated.Quantity)
	}

	if err := cartStore.DeleteLine(ctx, token, line.ID); err != nil {
		t.Fatalf("delete line: %v", err)
	}
	lines, err = cartStore.ListLines(ctx, token)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("cart should be empty, got %+v", lines)
	}
}

func TestCartStoreMapsAuthFailure(t *testing.T) {
	t.Parallel()

	server, _ := newBackend(t)
	cartStore := NewCartStore(newTestClient(t, server.URL))

	_, err := cartStore.ListLines(context.Background(), "")
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestCatalogStoreMapsNotFound(t *testing.T) {
	t.Parallel()

	product := sampleProduct(250)
	server, _ := newBackend(t, product)
	catalogStore := NewCatalogStore(newTestClient(t, server.URL))

	fetched, err := catalogStore.GetProduct(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !fetched.UnitPrice.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("price = %s, want 250", fetched.UnitPrice)
	}

	_, err = catalogStore.GetProduct(context.Background(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOrderStoreCreateAndList(t *testing.T) {
	t.Parallel()

	product := sampleProduct(999)
	server, store := newBackend(t, product)
	orderStore := NewOrderStore(newTestClient(t, server.URL))
	userID := uuid.New()
	token := mintToken(t, userID)

	line, err := store.AddCartLine(userID.String(), product.ID, 1, nil)
	if err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	order, err := orderStore.CreateOrder(context.Background(), token, types.OrderRequest{
		BillingAddress: "14 Lakeview Road, Pune 411001",
		Phone:          "+919876543210",
		ShippingOption: enums.ShippingOptionExpress,
		Lines: []types.OrderLine{
			{CartLineID: line.ID, ProductID: product.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	// 999 + 180 tax + 99 express shipping.
	if !order.TotalAmount.Equal(decimal.NewFromInt(1278)) {
		t.Fatalf("total = %s, want 1278", order.TotalAmount)
	}
	if order.Status != enums.OrderStatusPreparing {
		t.Fatalf("status = %q, want preparing", order.Status)
	}

	orders, err := orderStore.ListOrders(context.Background(), token)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Fatalf("unexpected history: %+v", orders)
	}
}

func TestUploadServiceRoundTrip(t *testing.T) {
	t.Parallel()

	server, _ := newBackend(t)
	uploads := NewUploadService(newTestClient(t, server.URL), "custom")
	token := mintToken(t, uuid.New())
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	url, err := uploads.Upload(context.Background(), token, "design.png", png)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url == "" {
		t.Fatal("expected a stored artifact url")
	}

	_, err = uploads.Upload(context.Background(), token, "notes.txt", []byte("not an image"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeServerRejected) {
		t.Fatalf("expected server rejection for non-image, got %v", err)
	}
}

func TestClientMapsTimeout(t *testing.T) {
	t.Parallel()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(slow.Close)

	client, err := NewClient(config.RemoteConfig{
		BaseURL:        slow.URL,
		RequestTimeout: 50 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	cartStore := NewCartStore(client)
	_, err = cartStore.ListLines(context.Background(), "tok")
	if !pkgerrors.HasCode(err, pkgerrors.CodeNetworkTimeout) {
		t.Fatalf("expected network timeout, got %v", err)
	}
}
