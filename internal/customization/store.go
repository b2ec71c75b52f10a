package customization

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	pkgerrors "github.com/craftline/cartengine/pkg/errors"
	"github.com/craftline/cartengine/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Preview is a revocable local handle onto a captured image, the analog
// of an object URL in a browser client. Every allocated preview is
// closed exactly once: on release, on replacement, or after the line's
// upload succeeds.
type Preview interface {
	URL() string
	Close() error
}

// PreviewAllocator produces a preview for freshly captured bytes.
type PreviewAllocator func(lineID uuid.UUID, data []byte) (Preview, error)

type entry struct {
	data    []byte
	preview Preview
}

// Store holds locally-captured customization images between the user's
// upload action and checkout submission. It lives independently of the
// cart snapshot so revisiting checkout does not force a re-capture.
type Store struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]*entry
	allocate PreviewAllocator
	maxBytes int64
	logg     *logger.Logger
}

// Option tweaks store construction.
type Option func(*Store)

// WithPreviewAllocator overrides the default in-memory preview handles.
func WithPreviewAllocator(allocate PreviewAllocator) Option {
	return func(s *Store) { s.allocate = allocate }
}

// WithMaxBytes caps the accepted payload size.
func WithMaxBytes(max int64) Option {
	return func(s *Store) { s.maxBytes = max }
}

const defaultMaxBytes = 20 * 1024 * 1024

// NewStore builds an empty customization store.
func NewStore(logg *logger.Logger, opts ...Option) *Store {
	s := &Store{
		entries:  make(map[uuid.UUID]*entry),
		allocate: allocateMemoryPreview,
		maxBytes: defaultMaxBytes,
		logg:     logg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capture validates and stores raw image bytes for a cart line,
// replacing any prior pending entry for that line.
func (s *Store) Capture(ctx context.Context, lineID uuid.UUID, data []byte) error {
	if lineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart line id is required")
	}
	if len(data) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "image payload is empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "image exceeds %d bytes", s.maxBytes)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "payload is %s, not an image", detected.String())
	}

	preview, err := s.allocate(lineID, data)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate preview")
	}

	s.mu.Lock()
	prior := s.entries[lineID]
	s.entries[lineID] = &entry{data: data, preview: preview}
	s.mu.Unlock()

	if prior != nil {
		s.closePreview(ctx, lineID, prior.preview)
	}
	return nil
}

// Release drops the pending entry for a line and frees its preview.
// Releasing an absent line is a no-op.
func (s *Store) Release(ctx context.Context, lineID uuid.UUID) {
	s.mu.Lock()
	prior := s.entries[lineID]
	delete(s.entries, lineID)
	s.mu.Unlock()

	if prior != nil {
		s.closePreview(ctx, lineID, prior.preview)
	}
}

// ReleaseAll clears every pending entry, freeing all previews. Called on
// checkout abandonment and after a successful order submission.
func (s *Store) ReleaseAll(ctx context.Context) {
	s.mu.Lock()
	drained := s.entries
	s.entries = make(map[uuid.UUID]*entry)
	s.mu.Unlock()

	for lineID, e := range drained {
		s.closePreview(ctx, lineID, e.preview)
	}
}

// Pending yields the (lineID, bytes) pairs awaiting upload. The sequence
// is finite and restartable; it iterates a point-in-time copy so callers
// may capture or release concurrently.
func (s *Store) Pending() iter.Seq2[uuid.UUID, []byte] {
	return func(yield func(uuid.UUID, []byte) bool) {
		s.mu.Lock()
		snapshot := make(map[uuid.UUID][]byte, len(s.entries))
		for lineID, e := range s.entries {
			snapshot[lineID] = e.data
		}
		s.mu.Unlock()

		for lineID, data := range snapshot {
			if !yield(lineID, data) {
				return
			}
		}
	}
}

// Has reports whether a pending entry exists for the line.
func (s *Store) Has(lineID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[lineID]
	return ok
}

// PreviewURL returns the local preview URL for a pending entry.
func (s *Store) PreviewURL(lineID uuid.UUID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[lineID]
	if !ok {
		return "", false
	}
	return e.preview.URL(), true
}

// Len returns the number of pending entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) closePreview(ctx context.Context, lineID uuid.UUID, preview Preview) {
	if preview == nil {
		return
	}
	if err := preview.Close(); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithLineID(ctx, lineID.String()), "customization.preview_close", err)
	}
}

type memoryPreview struct {
	url    string
	mu     sync.Mutex
	closed bool
}

func allocateMemoryPreview(lineID uuid.UUID, _ []byte) (Preview, error) {
	return &memoryPreview{url: "mem://" + lineID.String() + "/" + uuid.NewString()}, nil
}

func (p *memoryPreview) URL() string {
	return p.url
}

func (p *memoryPreview) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("preview %s already released", p.url)
	}
	p.closed = true
	return nil
}
