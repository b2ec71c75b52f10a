package engine

import (
	"context"
	"fmt"

	"github.com/craftline/cartengine/internal/cart"
	"github.com/craftline/cartengine/internal/catalog"
	"github.com/craftline/cartengine/internal/checkout"
	"github.com/craftline/cartengine/internal/customization"
	"github.com/craftline/cartengine/internal/remote"
	"github.com/craftline/cartengine/internal/session"
	"github.com/craftline/cartengine/pkg/config"
	"github.com/craftline/cartengine/pkg/enums"
	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/logger"
	"github.com/craftline/cartengine/pkg/metrics"
	"github.com/craftline/cartengine/pkg/money"
	"github.com/craftline/cartengine/pkg/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Params bundles everything the engine needs at construction.
type Params struct {
	Config  *config.Config
	Logger  *logger.Logger
	Metrics prometheus.Registerer
}

// Engine is the storefront client facade: one composed object holding
// the session credential, the synchronized cart snapshot, the catalog
// cache, pending customizations, and the checkout assembler. It is safe
// for concurrent use.
type Engine struct {
	session   *session.Session
	cart      *cart.Synchronizer
	resolver  *catalog.Resolver
	customs   *customization.Store
	assembler *checkout.Assembler
	catalog   *remote.CatalogStore
	orders    *remote.OrderStore
	logg      *logger.Logger
}

// New wires the engine against the backend named in the config.
func New(params Params) (*Engine, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config required")
	}

	client, err := remote.NewClient(params.Config.Remote, params.Logger)
	if err != nil {
		return nil, err
	}

	engineMetrics := metrics.NewEngineMetrics(params.Metrics)
	sess := session.New()
	customs := customization.NewStore(params.Logger,
		customization.WithMaxBytes(params.Config.Media.MaxUploadBytes))

	synchronizer, err := cart.NewSynchronizer(
		remote.NewCartStore(client), sess, customs, params.Logger, engineMetrics)
	if err != nil {
		return nil, err
	}

	catalogStore := remote.NewCatalogStore(client)
	resolver, err := catalog.NewResolver(catalogStore, params.Logger)
	if err != nil {
		return nil, err
	}

	orders := remote.NewOrderStore(client)
	assembler, err := checkout.NewAssembler(checkout.AssemblerParams{
		Credential:    sess,
		Cart:          synchronizer,
		Resolver:      resolver,
		Customization: customs,
		Uploader:      remote.NewUploadService(client, params.Config.Remote.UploadFolder),
		Orders:        orders,
		Logger:        params.Logger,
		Metrics:       engineMetrics,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		session:   sess,
		cart:      synchronizer,
		resolver:  resolver,
		customs:   customs,
		assembler: assembler,
		catalog:   catalogStore,
		orders:    orders,
		logg:      params.Logger,
	}, nil
}

// Login installs the bearer token for the current user and pulls the
// authoritative cart snapshot. A snapshot failure is soft; the session
// is kept and the cart stays empty until the next refresh.
func (e *Engine) Login(ctx context.Context, token string) error {
	if err := e.session.SetToken(token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthenticated, err, "install credential")
	}
	if err := e.cart.Refresh(ctx); err != nil {
		if e.logg != nil {
			e.logg.Warn(ctx, "engine.login_refresh_failed")
		}
	}
	return nil
}

// Logout drops the credential and all local state tied to it.
func (e *Engine) Logout(ctx context.Context) {
	e.session.Clear()
	e.cart.Reset()
	e.resolver.Invalidate()
	e.assembler.Abandon(ctx)
}

// Authenticated reports whether an unexpired credential is present.
func (e *Engine) Authenticated() bool {
	return e.session.Authenticated()
}

// CurrentUser returns the profile decoded from the credential.
func (e *Engine) CurrentUser() (*types.User, bool) {
	return e.session.User()
}

// RefreshCart re-pulls the cart snapshot from the remote store.
func (e *Engine) RefreshCart(ctx context.Context) error {
	return e.cart.Refresh(ctx)
}

// CartSnapshot returns a copy of the current cart lines.
func (e *Engine) CartSnapshot() []types.CartLine {
	return e.cart.Snapshot()
}

// CartItemCount returns the total quantity across all cart lines.
func (e *Engine) CartItemCount() int {
	return e.cart.ItemCount()
}

// AddToCart adds quantity of a product, optionally with a size. The
// remote store merges into an existing line with the same product and
// size.
func (e *Engine) AddToCart(ctx context.Context, productID uuid.UUID, quantity int, size *string) error {
	return e.cart.Add(ctx, productID, quantity, size)
}

// RemoveFromCart deletes a line and drops any pending customization
// captured for it.
func (e *Engine) RemoveFromCart(ctx context.Context, lineID uuid.UUID) error {
	return e.cart.Remove(ctx, lineID)
}

// SetQuantity changes a line's quantity. When the backend has no
// in-place update it falls back to remove+add, carrying any pending
// customization over to the replacement line.
func (e *Engine) SetQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	err := e.cart.SetQuantity(ctx, lineID, quantity)
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnsupported) {
		return err
	}

	line, ok := e.cart.Line(lineID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return e.replaceLine(ctx, line, quantity, line.Size)
}

// SetSize changes a line's size selection. The backend has no in-place
// size update, so this is always remove+add; the size must belong to
// the product's size set and pending customization carries over.
func (e *Engine) SetSize(ctx context.Context, lineID uuid.UUID, size string) error {
	err := e.cart.SetSize(ctx, lineID, size)
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnsupported) {
		return err
	}

	line, ok := e.cart.Line(lineID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	product, err := e.resolver.Resolve(ctx, line.ProductID)
	if err != nil {
		return err
	}
	if !product.HasSize(size) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "size %q is not offered for %q", size, product.Title)
	}
	return e.replaceLine(ctx, line, line.Quantity, &size)
}

// replaceLine emulates an in-place line update as remove+add. The
// pending customization is captured before the remove drops it and
// re-attached to whichever line the server lands the product on.
func (e *Engine) replaceLine(ctx context.Context, line types.CartLine, quantity int, size *string) error {
	pending := e.pendingData(line.ID)

	if err := e.cart.Remove(ctx, line.ID); err != nil {
		return err
	}
	if err := e.cart.Add(ctx, line.ProductID, quantity, size); err != nil {
		return err
	}

	if pending == nil {
		return nil
	}
	replacement, ok := e.findLine(line.ProductID, size)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeInternal, "replacement cart line missing after add")
	}
	return e.customs.Capture(ctx, replacement.ID, pending)
}

func (e *Engine) pendingData(lineID uuid.UUID) []byte {
	for id, data := range e.customs.Pending() {
		if id == lineID {
			return data
		}
	}
	return nil
}

func (e *Engine) findLine(productID uuid.UUID, size *string) (types.CartLine, bool) {
	for _, line := range e.cart.Snapshot() {
		if line.ProductID != productID {
			continue
		}
		if (line.Size == nil) != (size == nil) {
			continue
		}
		if line.Size != nil && *line.Size != *size {
			continue
		}
		return line, true
	}
	return types.CartLine{}, false
}

// Product resolves one product summary, served from the session cache
// when warm.
func (e *Engine) Product(ctx context.Context, productID uuid.UUID) (*types.ProductSummary, error) {
	return e.resolver.Resolve(ctx, productID)
}

// Products lists the full catalog. Listing always hits the backend; the
// session cache only serves per-product resolution.
func (e *Engine) Products(ctx context.Context) ([]types.ProductSummary, error) {
	return e.catalog.ListProducts(ctx)
}

// CaptureCustomization stores raw image bytes for a cart line, replacing
// any prior capture. The line must exist and its product must be
// customizable.
func (e *Engine) CaptureCustomization(ctx context.Context, lineID uuid.UUID, data []byte) error {
	line, ok := e.cart.Line(lineID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	product, err := e.resolver.Resolve(ctx, line.ProductID)
	if err != nil {
		return err
	}
	if !product.IsCustomizable {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "%q does not accept customization", product.Title)
	}
	return e.customs.Capture(ctx, lineID, data)
}

// ClearCustomization drops the pending capture for a line.
func (e *Engine) ClearCustomization(ctx context.Context, lineID uuid.UUID) {
	e.customs.Release(ctx, lineID)
}

// CustomizationPreview returns the local preview URL for a pending
// capture.
func (e *Engine) CustomizationPreview(lineID uuid.UUID) (string, bool) {
	return e.customs.PreviewURL(lineID)
}

// HasCustomization reports whether a pending capture exists for a line.
func (e *Engine) HasCustomization(lineID uuid.UUID) bool {
	return e.customs.Has(lineID)
}

// EstimateTotals prices the current cart for a shipping option without
// submitting anything.
func (e *Engine) EstimateTotals(ctx context.Context, option enums.ShippingOption) (money.Totals, error) {
	return e.assembler.Totals(ctx, option)
}

// Checkout runs the full submission flow and returns the stored order.
func (e *Engine) Checkout(ctx context.Context, billing checkout.BillingInfo) (*checkout.Result, error) {
	return e.assembler.Submit(ctx, billing)
}

// AbandonCheckout drops pending customizations and retained upload URLs.
// The cart itself is untouched.
func (e *Engine) AbandonCheckout(ctx context.Context) {
	e.assembler.Abandon(ctx)
}

// OrderHistory lists the current user's orders, newest first.
func (e *Engine) OrderHistory(ctx context.Context) ([]types.Order, error) {
	token, ok := e.session.Token()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "login required to view orders")
	}
	return e.orders.ListOrders(ctx, token)
}
