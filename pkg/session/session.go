// Package session holds the state of one configurator editing session.
//
// A [Session] owns the print region, the artwork tracker and two load
// slots, one for the artwork image and one for the product background.
// Loading is asynchronous relative to editing, so each slot admits one
// pending load at a time:
//
//	t := sess.Begin(session.SlotArtwork) // clears the current artwork
//	img, err := fetch(url)               // may take a while
//	sess.Complete(t, session.Load{Image: img, URL: url, Err: err})
//
// A load that was superseded by a later Begin on the same slot is
// discarded by Complete. A failed product background load is recorded as a
// warning and leaves the session usable.
//
// When an existing product is edited, its saved placement is parked with
// [Session.SetPendingConfig] until the catalog product (and with it the
// print region) arrives; [Session.AttachProduct] hands it back exactly once.
//
// Sessions are persisted as [Record] values by a [Store]: [MemoryStore]
// for a single process, [RedisStore] for deployments with several server
// instances and [FileStore] for the CLI. A [Manager] ties the live sessions
// to a store and refreshes a live session whenever the store holds a newer
// version of it.
package session

import (
	"context"
	"image"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/assist"
	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/tracker"
)

// Slot names an asynchronously loaded image.
type Slot int

const (
	SlotArtwork Slot = iota
	SlotProduct
	numSlots
)

func (s Slot) String() string {
	if s == SlotProduct {
		return "product"
	}
	return "artwork"
}

// Ticket identifies one load started by Begin.
type Ticket struct {
	slot Slot
	seq  uint64
	cfg  *artwork.Config
}

// Slot returns the slot the ticket loads into.
func (t Ticket) Slot() Slot { return t.slot }

// Load is the outcome of loading an image.
type Load struct {
	Image image.Image
	URL   string
	Err   error
}

// Session is one editing session. All methods are safe for concurrent use;
// mutations of one session are serialized.
type Session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	expiresAt time.Time
	mode      bounds.Mode
	logger    *log.Logger

	view       string
	productID  region.ID
	artworkURL string
	tr         *tracker.Tracker

	art image.Image
	bg  image.Image

	seq     [numSlots]uint64
	loading [numSlots]bool

	pending   *artwork.Config
	warnings  []string
	version   uint64
	listeners []tracker.Listener
}

// New creates a session with no region. Placement operations report
// NO_PRINT_REGION until SetRegion or AttachProduct supplies one.
func New(id string, mode bounds.Mode, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	now := time.Now()
	return &Session{id: id, createdAt: now, expiresAt: now, mode: mode, logger: logger}
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// View returns the selected print area name.
func (s *Session) View() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// ProductID returns the attached catalog product, if any.
func (s *Session) ProductID() region.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productID
}

// ExpiresAt returns when the session lapses unless saved again.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// IsExpired reports whether the session has lapsed.
func (s *Session) IsExpired() bool { return time.Now().After(s.ExpiresAt()) }

// SetRegion selects the print region. The artwork keeps its canvas position.
func (s *Session) SetRegion(r region.Region, view string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setRegion(r, view)
}

func (s *Session) setRegion(r region.Region, view string) error {
	if s.tr == nil {
		tr, err := tracker.New(r, s.mode)
		if err != nil {
			return err
		}
		for _, fn := range s.listeners {
			tr.Subscribe(fn)
		}
		s.tr = tr
	} else if err := s.tr.SetRegion(r); err != nil {
		return err
	}
	if view != "" {
		s.view = view
	} else if r.Name != "" {
		s.view = r.Name
	}
	return nil
}

// Subscribe registers fn to receive the snapshot of every bounds check,
// including checks on trackers created by later SetRegion calls. fn runs
// with the session locked and must not call back into it.
func (s *Session) Subscribe(fn tracker.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
	if s.tr != nil {
		s.tr.Subscribe(fn)
	}
}

func (s *Session) requireTracker() (*tracker.Tracker, error) {
	if s.tr == nil {
		return nil, errors.New(errors.ErrCodeNoPrintRegion, "session %s has no print region", s.id)
	}
	return s.tr, nil
}

// SetPendingConfig parks a saved placement until product data arrives.
func (s *Session) SetPendingConfig(c *artwork.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = c
}

// TakePendingConfig returns the parked placement and clears it.
func (s *Session) TakePendingConfig() *artwork.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.takePending()
}

func (s *Session) takePending() *artwork.Config {
	c := s.pending
	s.pending = nil
	return c
}

// AttachProduct selects p's print area for view (its default view when
// empty) and returns the parked placement, if any, which the caller
// should load with BeginRestore. The placement is consumed even when the
// view has no usable region.
func (s *Session) AttachProduct(p *podapi.Product, view string) (*artwork.Config, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no product")
	}
	if view == "" {
		view = p.DefaultView()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.takePending()
	r, err := p.Region(view)
	if err != nil {
		return cfg, err
	}
	if err := s.setRegion(r, view); err != nil {
		return cfg, err
	}
	s.productID = p.ID
	return cfg, nil
}

// Begin starts a load into slot, dropping whatever the slot held and
// superseding any load still in flight.
func (s *Session) Begin(slot Slot) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begin(slot, nil)
}

// BeginRestore starts an artwork load that will be placed as cfg says
// rather than centered.
func (s *Session) BeginRestore(cfg *artwork.Config) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begin(SlotArtwork, cfg)
}

func (s *Session) begin(slot Slot, cfg *artwork.Config) Ticket {
	s.seq[slot]++
	s.loading[slot] = true
	switch slot {
	case SlotArtwork:
		s.art = nil
		s.artworkURL = ""
		if s.tr != nil {
			s.tr.RemoveArtwork()
		}
	case SlotProduct:
		s.bg = nil
		if s.tr != nil {
			s.tr.RemoveProductLayer()
		}
	}
	return Ticket{slot: slot, seq: s.seq[slot], cfg: cfg}
}

// Loading reports whether slot has a load in flight.
func (s *Session) Loading(slot Slot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading[slot]
}

// Complete delivers the result of the load t. It reports false when t was
// superseded, in which case l is discarded. A failed artwork load returns
// LOAD_FAILED; a failed product load is only recorded as a warning.
func (s *Session) Complete(t Ticket, l Load) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.seq != s.seq[t.slot] || !s.loading[t.slot] {
		s.logger.Debug("discarding superseded load", "session", s.id, "slot", t.slot, "url", l.URL)
		return false, nil
	}
	s.loading[t.slot] = false

	if l.Err == nil && l.Image == nil {
		l.Err = errors.New(errors.ErrCodeLoadFailed, "no image")
	}
	if l.Err != nil {
		if t.slot == SlotProduct {
			s.logger.Warn("product image failed to load", "session", s.id, "url", l.URL, "err", l.Err)
			s.warnings = append(s.warnings, "product image unavailable: "+errors.UserMessage(l.Err))
			return true, nil
		}
		return true, errors.Wrap(errors.ErrCodeLoadFailed, l.Err, "load artwork %s", l.URL)
	}

	switch t.slot {
	case SlotProduct:
		s.bg = l.Image
		if s.tr != nil {
			s.tr.SetProductLayer()
		}
		return true, nil
	default:
		if err := s.placeArtwork(l, t.cfg); err != nil {
			return true, err
		}
		return true, nil
	}
}

func (s *Session) placeArtwork(l Load, cfg *artwork.Config) error {
	tr, err := s.requireTracker()
	if err != nil {
		return err
	}
	b := l.Image.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var t artwork.Transform
	if cfg != nil {
		t, err = artwork.Rehydrate(*cfg, tr.Region(), w, h)
	} else {
		t, err = artwork.New(tr.Region(), w, h)
	}
	if err != nil {
		return err
	}
	if _, err := tr.SetArtwork(t); err != nil {
		return err
	}
	s.art = l.Image
	s.artworkURL = l.URL
	if s.artworkURL == "" && cfg != nil {
		s.artworkURL = cfg.ArtworkURL
	}
	return nil
}

// PlaceArtwork places an artwork of the given native size centered in the
// region without an image, for clients that render it themselves.
func (s *Session) PlaceArtwork(width, height float64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, err := s.requireTracker()
	if err != nil {
		return err
	}
	t, err := artwork.New(tr.Region(), width, height)
	if err != nil {
		return err
	}
	if _, err := tr.SetArtwork(t); err != nil {
		return err
	}
	s.seq[SlotArtwork]++
	s.loading[SlotArtwork] = false
	s.art = nil
	s.artworkURL = url
	return nil
}

// Manipulate applies a move, scale or rotate event.
func (s *Session) Manipulate(kind tracker.Kind, g tracker.Geometry) (bounds.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, err := s.requireTracker()
	if err != nil {
		return bounds.State{}, err
	}
	return tr.OnUserManipulate(kind, g)
}

// Apply runs a placement assist.
func (s *Session) Apply(op assist.Op) (bounds.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, err := s.requireTracker()
	if err != nil {
		return bounds.State{}, err
	}
	return tr.Apply(op)
}

// Snapshot returns the tracker state. Without a region it is empty.
func (s *Session) Snapshot() tracker.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tr == nil {
		return tracker.Snapshot{}
	}
	return s.tr.Snapshot()
}

// Layers returns the snapshot together with the loaded images, either of
// which may be nil.
func (s *Session) Layers() (snap tracker.Snapshot, art, bg image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tr != nil {
		snap = s.tr.Snapshot()
	}
	return snap, s.art, s.bg
}

// Config captures the placement, including the artwork URL.
func (s *Session) Config() (artwork.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, err := s.requireTracker()
	if err != nil {
		return artwork.Config{}, err
	}
	c, err := tr.Config()
	if err != nil {
		return c, err
	}
	c.ArtworkURL = s.artworkURL
	return c, nil
}

// Warnings returns the non-fatal problems seen so far.
func (s *Session) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.warnings)
}

// Export renders the print file. img overrides the loaded artwork image
// when non-nil. The placement is copied under the lock and rendered
// without it, so editing may continue during a slow export.
func (s *Session) Export(ctx context.Context, img image.Image, opts export.Options) (*export.Result, error) {
	s.mu.Lock()
	tr, err := s.requireTracker()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	r := tr.Region()
	var t *artwork.Transform
	if cur, ok := tr.Transform(); ok {
		t = &cur
	}
	if img == nil {
		img = s.art
	}
	s.mu.Unlock()

	return export.Export(ctx, r, t, img, opts)
}

// Record returns the persistable state.
func (s *Session) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := Record{
		ID:         s.id,
		View:       s.view,
		ProductID:  s.productID,
		Mode:       s.mode.String(),
		ArtworkURL: s.artworkURL,
		Pending:    s.pending,
		Warnings:   slices.Clone(s.warnings),
		Version:    s.version,
		CreatedAt:  s.createdAt,
		ExpiresAt:  s.expiresAt,
	}
	if s.tr != nil {
		r := s.tr.Region()
		rec.Region = &r
		if t, ok := s.tr.Transform(); ok {
			rec.Transform = &t
		}
	}
	return rec
}

// stamp extends the session's lifetime, bumps its version and returns the
// record to save.
func (s *Session) stamp(ttl time.Duration) Record {
	s.mu.Lock()
	s.expiresAt = time.Now().Add(ttl)
	s.version++
	s.mu.Unlock()
	return s.Record()
}
