package backend

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftline/cartengine/pkg/enums"
	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/types"
)

func seedStore(t *testing.T) (*Store, types.ProductSummary, types.ProductSummary) {
	t.Helper()
	first := types.ProductSummary{
		ID:        uuid.New(),
		Title:     "Block Print Tote",
		UnitPrice: decimal.NewFromInt(499),
		Sizes:     []string{"Regular", "Large"},
	}
	second := types.ProductSummary{
		ID:        uuid.New(),
		Title:     "Hand Painted Mug",
		UnitPrice: decimal.NewFromInt(250),
	}
	return NewStore(first, second), first, second
}

func TestAddCartLineMergesSameProductAndSize(t *testing.T) {
	t.Parallel()

	store, product, _ := seedStore(t)
	size := "Regular"

	first, err := store.AddCartLine("user-1", product.ID, 1, &size)
	require.NoError(t, err)

	merged, err := store.AddCartLine("user-1", product.ID, 2, &size)
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 3, merged.Quantity)

	other := "Large"
	separate, err := store.AddCartLine("user-1", product.ID, 1, &other)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, separate.ID)
	assert.Len(t, store.CartLines("user-1"), 2)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	t.Parallel()

	store, product, _ := seedStore(t)

	_, err := store.AddCartLine("user-a", product.ID, 1, nil)
	require.NoError(t, err)

	assert.Len(t, store.CartLines("user-a"), 1)
	assert.Empty(t, store.CartLines("user-b"))
}

func TestAddCartLineValidation(t *testing.T) {
	t.Parallel()

	store, product, _ := seedStore(t)

	_, err := store.AddCartLine("user-1", uuid.New(), 1, nil)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = store.AddCartLine("user-1", product.ID, 0, nil)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateOrderComputesTotalsAndClearsCart(t *testing.T) {
	t.Parallel()

	store, first, second := seedStore(t)

	lineA, err := store.AddCartLine("user-1", first.ID, 1, nil)
	require.NoError(t, err)
	lineB, err := store.AddCartLine("user-1", second.ID, 2, nil)
	require.NoError(t, err)

	order, err := store.CreateOrder("user-1", types.OrderRequest{
		BillingAddress: "14 Lakeview Road, Pune 411001",
		Phone:          "+919876543210",
		ShippingOption: enums.ShippingOptionExpress,
		Lines: []types.OrderLine{
			{CartLineID: lineA.ID, ProductID: first.ID, Quantity: 1},
			{CartLineID: lineB.ID, ProductID: second.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	// 999 subtotal + 180 tax + 99 express shipping.
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(1278)), "total = %s", order.TotalAmount)
	assert.Equal(t, enums.OrderStatusPreparing, order.Status)
	assert.Empty(t, store.CartLines("user-1"))

	// Server-side prices win over whatever the client sent.
	require.Len(t, order.Lines, 2)
	assert.True(t, order.Lines[0].UnitPrice.Equal(first.UnitPrice))
	assert.Equal(t, first.Title, order.Lines[0].ProductTitle)

	orders := store.Orders("user-1")
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestCreateOrderRejectsUnknownProductAndEmptyRequest(t *testing.T) {
	t.Parallel()

	store, _, _ := seedStore(t)

	_, err := store.CreateOrder("user-1", types.OrderRequest{ShippingOption: enums.ShippingOptionStandard})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = store.CreateOrder("user-1", types.OrderRequest{
		ShippingOption: enums.ShippingOptionStandard,
		Lines:          []types.OrderLine{{ProductID: uuid.New(), Quantity: 1}},
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeServerRejected))
}

func TestUploadRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore()
	data := []byte("artifact bytes")

	path := store.SaveUpload("custom", "design.png", data)
	assert.Contains(t, path, "/uploads/custom/")

	stored, ok := store.Upload(path)
	require.True(t, ok)
	assert.Equal(t, data, stored)
}
