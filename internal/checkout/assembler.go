package checkout

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/craftline/cartengine/pkg/enums"
	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/logger"
	"github.com/craftline/cartengine/pkg/metrics"
	"github.com/craftline/cartengine/pkg/money"
	"github.com/craftline/cartengine/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type credential interface {
	Token() (string, bool)
}

type cartSnapshotter interface {
	Snapshot() []types.CartLine
	Reset()
}

type productResolver interface {
	ResolveAll(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]types.ProductSummary, error)
}

type customizationSource interface {
	Pending() iter.Seq2[uuid.UUID, []byte]
	Release(ctx context.Context, lineID uuid.UUID)
	ReleaseAll(ctx context.Context)
}

type uploader interface {
	Upload(ctx context.Context, token string, filename string, data []byte) (string, error)
}

type orderSubmitter interface {
	CreateOrder(ctx context.Context, token string, req types.OrderRequest) (*types.Order, error)
}

// BillingInfo is what the checkout form collects.
type BillingInfo struct {
	Address        string               `validate:"required,min=10"`
	Phone          string               `validate:"required,min=8,max=20"`
	ShippingOption enums.ShippingOption `validate:"required"`
}

// UploadWarning records a per-line customization upload that failed.
// The line is still submitted, without its artifact.
type UploadWarning struct {
	LineID uuid.UUID
	Err    error
}

// Result reports the outcome of a successful submission.
type Result struct {
	Order    *types.Order
	Totals   money.Totals
	Warnings []UploadWarning
}

// AssemblerParams bundles the assembler's collaborators.
type AssemblerParams struct {
	Credential    credential
	Cart          cartSnapshotter
	Resolver      productResolver
	Customization customizationSource
	Uploader      uploader
	Orders        orderSubmitter
	Logger        *logger.Logger
	Metrics       *metrics.EngineMetrics
}

// Assembler turns the cart snapshot plus pending customizations into a
// single validated OrderRequest and submits it exactly once per
// successful checkout. Already-uploaded artifact URLs survive a failed
// submission so a retry does not re-upload.
type Assembler struct {
	creds    credential
	cart     cartSnapshotter
	resolver productResolver
	customs  customizationSource
	uploads  uploader
	orders   orderSubmitter
	validate *validator.Validate
	logg     *logger.Logger
	metrics  *metrics.EngineMetrics

	mu           sync.Mutex
	uploadedURLs map[uuid.UUID]string
}

// NewAssembler builds the checkout assembler.
func NewAssembler(params AssemblerParams) (*Assembler, error) {
	if params.Credential == nil {
		return nil, fmt.Errorf("credential provider required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart snapshotter required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	if params.Customization == nil {
		return nil, fmt.Errorf("customization source required")
	}
	if params.Uploader == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	return &Assembler{
		creds:        params.Credential,
		cart:         params.Cart,
		resolver:     params.Resolver,
		customs:      params.Customization,
		uploads:      params.Uploader,
		orders:       params.Orders,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logg:         params.Logger,
		metrics:      params.Metrics,
		uploadedURLs: make(map[uuid.UUID]string),
	}, nil
}

// Totals prices the current snapshot for the given shipping option.
// Every line must resolve; unresolved pricing fails CatalogUnavailable.
func (a *Assembler) Totals(ctx context.Context, option enums.ShippingOption) (money.Totals, error) {
	if option == "" {
		option = enums.ShippingOptionStandard
	}
	lines := a.cart.Snapshot()
	if len(lines) == 0 {
		return money.Totals{}, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	resolved, err := a.resolveLines(ctx, lines)
	if err != nil {
		return money.Totals{}, err
	}

	var subtotal decimal.Decimal
	for _, line := range lines {
		product := resolved[line.ProductID]
		subtotal = subtotal.Add(money.LineAmount(product.UnitPrice, line.Quantity))
	}
	return money.Compute(subtotal, option), nil
}

// Submit runs the full checkout: preconditions, catalog resolution,
// concurrent customization uploads, totals, and the single order
// submission. A failed submission leaves the cart, pending
// customizations, and already-uploaded URLs intact for a cheap retry.
func (a *Assembler) Submit(ctx context.Context, billing BillingInfo) (*Result, error) {
	started := time.Now()

	token, ok := a.creds.Token()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "login required to checkout")
	}
	if err := a.validate.Struct(billing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "billing info invalid")
	}
	if !billing.ShippingOption.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid shipping option %q", billing.ShippingOption)
	}

	lines := a.cart.Snapshot()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	resolved, err := a.resolveLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := validateSizes(lines, resolved); err != nil {
		return nil, err
	}

	warnings := a.uploadPending(ctx, token, lines, resolved)

	var subtotal decimal.Decimal
	orderLines := make([]types.OrderLine, 0, len(lines))
	for _, line := range lines {
		product := resolved[line.ProductID]
		amount := money.LineAmount(product.UnitPrice, line.Quantity)
		subtotal = subtotal.Add(amount)
		orderLines = append(orderLines, types.OrderLine{
			CartLineID:     line.ID,
			ProductID:      product.ID,
			ProductTitle:   product.Title,
			Quantity:       line.Quantity,
			UnitPrice:      product.UnitPrice,
			Size:           line.Size,
			CustomImageURL: a.artifactURL(line),
			LineTotal:      amount,
		})
	}
	totals := money.Compute(subtotal, billing.ShippingOption)

	req := types.OrderRequest{
		BillingAddress: billing.Address,
		Phone:          billing.Phone,
		ShippingOption: billing.ShippingOption,
		Lines:          orderLines,
	}

	order, err := a.orders.CreateOrder(ctx, token, req)
	if err != nil {
		a.metrics.IncCheckoutOutcome("rejected")
		return nil, err
	}

	// The remote store emptied the cart; mirror that locally and drop
	// customization state for the submitted lines.
	a.cart.Reset()
	for _, line := range lines {
		a.customs.Release(ctx, line.ID)
	}
	a.mu.Lock()
	a.uploadedURLs = make(map[uuid.UUID]string)
	a.mu.Unlock()

	a.metrics.IncCheckoutOutcome("success")
	a.metrics.ObserveCheckoutDuration(time.Since(started))
	if a.logg != nil {
		ctx := a.logg.WithField(ctx, "order_id", order.ID.String())
		a.logg.Info(ctx, "checkout.submitted")
	}

	return &Result{Order: order, Totals: totals, Warnings: warnings}, nil
}

// Abandon drops all in-memory checkout state: pending customizations and
// retained upload URLs. Completed uploads remain as orphaned artifacts.
func (a *Assembler) Abandon(ctx context.Context) {
	a.customs.ReleaseAll(ctx)
	a.mu.Lock()
	a.uploadedURLs = make(map[uuid.UUID]string)
	a.mu.Unlock()
}

func (a *Assembler) resolveLines(ctx context.Context, lines []types.CartLine) (map[uuid.UUID]types.ProductSummary, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	resolved, err := a.resolver.ResolveAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	var unresolved []string
	for _, line := range lines {
		if _, ok := resolved[line.ProductID]; !ok {
			unresolved = append(unresolved, line.ProductID.String())
		}
	}
	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return nil, pkgerrors.New(pkgerrors.CodeCatalogUnavailable, "pricing could not be resolved for all products").
			WithDetails(map[string]any{"product_ids": unresolved})
	}
	return resolved, nil
}

// uploadPending pushes every pending artifact for a customizable line
// concurrently. Failures are per-line warnings, never checkout blockers.
func (a *Assembler) uploadPending(ctx context.Context, token string, lines []types.CartLine, resolved map[uuid.UUID]types.ProductSummary) []UploadWarning {
	pending := make(map[uuid.UUID][]byte)
	for lineID, data := range a.customs.Pending() {
		pending[lineID] = data
	}
	if len(pending) == 0 {
		return nil
	}

	var mu sync.Mutex
	var warnings []UploadWarning
	group, groupCtx := errgroup.WithContext(ctx)

	for _, line := range lines {
		data, ok := pending[line.ID]
		if !ok {
			continue
		}
		product := resolved[line.ProductID]
		if !product.IsCustomizable {
			// Customization data must never reach a non-customizable
			// product's order line.
			if a.logg != nil {
				a.logg.Warn(a.logg.WithLineID(ctx, line.ID.String()), "checkout.customization_skipped")
			}
			continue
		}
		a.mu.Lock()
		_, alreadyUploaded := a.uploadedURLs[line.ID]
		a.mu.Unlock()
		if alreadyUploaded {
			continue
		}

		group.Go(func() error {
			url, err := a.uploads.Upload(groupCtx, token, line.ID.String()+".jpg", data)
			if err != nil {
				a.metrics.IncUploadFailure()
				mu.Lock()
				warnings = append(warnings, UploadWarning{
					LineID: line.ID,
					Err:    pkgerrors.Wrap(pkgerrors.CodeUploadFailed, err, "upload customization"),
				})
				mu.Unlock()
				return nil
			}
			a.mu.Lock()
			a.uploadedURLs[line.ID] = url
			a.mu.Unlock()
			a.customs.Release(groupCtx, line.ID)
			return nil
		})
	}
	_ = group.Wait()

	if len(warnings) > 0 && a.logg != nil {
		var combined error
		for _, w := range warnings {
			combined = multierr.Append(combined, w.Err)
		}
		a.logg.Error(ctx, "checkout.uploads_failed", combined)
	}
	return warnings
}

func (a *Assembler) artifactURL(line types.CartLine) *string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if url, ok := a.uploadedURLs[line.ID]; ok {
		return &url
	}
	if line.HasCustomImage() {
		return line.CustomImageURL
	}
	return nil
}

func validateSizes(lines []types.CartLine, resolved map[uuid.UUID]types.ProductSummary) error {
	for _, line := range lines {
		if line.Size == nil || *line.Size == "" {
			continue
		}
		product := resolved[line.ProductID]
		if !product.HasSize(*line.Size) {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "size %q is not offered for %q", *line.Size, product.Title)
		}
	}
	return nil
}
