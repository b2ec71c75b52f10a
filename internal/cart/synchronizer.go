package cart

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/logger"
	"github.com/craftline/cartengine/pkg/metrics"
	"github.com/craftline/cartengine/pkg/types"
	"github.com/google/uuid"
)

type remoteStore interface {
	ListLines(ctx context.Context, token string) ([]types.CartLine, error)
	AddLine(ctx context.Context, token string, productID uuid.UUID, quantity int, size *string) (*types.CartLine, error)
	UpdateQuantity(ctx context.Context, token string, lineID uuid.UUID, quantity int) (*types.CartLine, error)
	DeleteLine(ctx context.Context, token string, lineID uuid.UUID) error
}

type credential interface {
	Token() (string, bool)
}

type customizationReleaser interface {
	Release(ctx context.Context, lineID uuid.UUID)
}

// Synchronizer is the single source of truth for the cart snapshot the
// UI reads. Every mutation goes through the remote store and is followed
// by a wholesale refresh, so consumers only ever observe Fresh
// snapshots; mutation plus refresh reads as one atomic step.
type Synchronizer struct {
	mu    sync.RWMutex
	lines []types.CartLine

	store    remoteStore
	creds    credential
	releaser customizationReleaser
	logg     *logger.Logger
	metrics  *metrics.EngineMetrics
}

// NewSynchronizer wires the synchronizer to the remote store and the
// credential provider. The releaser may be nil when customization is
// not in play.
func NewSynchronizer(store remoteStore, creds credential, releaser customizationReleaser, logg *logger.Logger, engineMetrics *metrics.EngineMetrics) (*Synchronizer, error) {
	if store == nil {
		return nil, fmt.Errorf("remote cart store required")
	}
	if creds == nil {
		return nil, fmt.Errorf("credential provider required")
	}
	return &Synchronizer{
		store:    store,
		creds:    creds,
		releaser: releaser,
		logg:     logg,
		metrics:  engineMetrics,
	}, nil
}

// Refresh replaces the snapshot wholesale from the remote store. On
// failure the previous snapshot is retained and a soft error returned;
// the display stays stale and the caller may retry.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	token, ok := s.creds.Token()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthenticated, "no active session")
	}

	lines, err := s.store.ListLines(ctx, token)
	if err != nil {
		s.metrics.IncRefreshFailure()
		if s.logg != nil {
			s.logg.Warn(ctx, "cart.refresh_failed")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh cart snapshot")
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current cart lines.
func (s *Synchronizer) Snapshot() []types.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]types.CartLine, len(s.lines))
	copy(snapshot, s.lines)
	return snapshot
}

// ItemCount returns the total quantity across all lines.
func (s *Synchronizer) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// Add creates a line remotely and refreshes. Without an authenticated
// session it fails with Unauthenticated and performs no network call.
func (s *Synchronizer) Add(ctx context.Context, productID uuid.UUID, quantity int, size *string) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	token, ok := s.creds.Token()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthenticated, "login required to add to cart")
	}

	if _, err := s.store.AddLine(ctx, token, productID, quantity, size); err != nil {
		return err
	}
	s.metrics.IncCartMutation("add")
	return s.Refresh(ctx)
}

// Remove deletes a line remotely, notifies the customization store to
// drop any pending artifact for it, and refreshes.
func (s *Synchronizer) Remove(ctx context.Context, lineID uuid.UUID) error {
	if lineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	token, ok := s.creds.Token()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthenticated, "login required to modify cart")
	}

	if err := s.store.DeleteLine(ctx, token, lineID); err != nil {
		return err
	}
	s.metrics.IncCartMutation("remove")
	if s.releaser != nil {
		s.releaser.Release(ctx, lineID)
	}
	return s.Refresh(ctx)
}

// SetQuantity updates a line's quantity in place and refreshes. Backends
// without the endpoint surface Unsupported; callers fall back to
// remove+add.
func (s *Synchronizer) SetQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	token, ok := s.creds.Token()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthenticated, "login required to modify cart")
	}

	if _, err := s.store.UpdateQuantity(ctx, token, lineID, quantity); err != nil {
		return err
	}
	s.metrics.IncCartMutation("set_quantity")
	return s.Refresh(ctx)
}

// SetSize has no backing remote operation; it always reports
// Unsupported so the caller can fall back to remove+add.
func (s *Synchronizer) SetSize(ctx context.Context, lineID uuid.UUID, size string) error {
	return pkgerrors.New(pkgerrors.CodeUnsupported, "size change is not supported in place")
}

// Line returns the snapshot line with the given id, if present.
func (s *Synchronizer) Line(lineID uuid.UUID) (types.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, line := range s.lines {
		if line.ID == lineID {
			return line, true
		}
	}
	return types.CartLine{}, false
}

// Reset clears the local snapshot. Called after a successful order
// submission, when the remote store has already emptied the cart.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
}
