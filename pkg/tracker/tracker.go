// Package tracker owns the artwork transform while it is being edited.
//
// All mutation goes through a [Tracker]: user manipulation events and
// placement operations. After every accepted mutation the tracker runs
// exactly one bounds check and notifies each listener exactly once with
// the new [Snapshot]. Events are applied in the order they arrive and are
// never coalesced.
//
// A Tracker is not safe for concurrent use; callers serialize access (see
// the session package).
package tracker

import (
	"fmt"
	"strings"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/assist"
	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/region"
)

// LayerID identifies a canvas layer. The zero value means no layer.
type LayerID uint64

// Kind is the type of a manipulation event.
type Kind int

const (
	Move Kind = iota
	Scale
	Rotate
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Scale:
		return "scale"
	case Rotate:
		return "rotate"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps "move", "scale" or "rotate" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "move":
		return Move, nil
	case "scale":
		return Scale, nil
	case "rotate":
		return Rotate, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown manipulation %q", s)
}

// Geometry carries the values a manipulation event reports. Only the fields
// belonging to the event's Kind are read.
type Geometry struct {
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	Rotation float64 `json:"rotation"`
}

// Snapshot is the tracker state handed to listeners and presenters.
type Snapshot struct {
	Region       region.Region      `json:"region"`
	ArtworkLayer LayerID            `json:"artworkLayer,omitempty"`
	ProductLayer LayerID            `json:"productLayer,omitempty"`
	Transform    *artwork.Transform `json:"transform,omitempty"`
	RelativeX    float64            `json:"relativeX"`
	RelativeY    float64            `json:"relativeY"`
	Scale        float64            `json:"scale"`
	Bounds       bounds.State       `json:"bounds"`
}

// Listener receives the snapshot produced by each bounds check.
type Listener func(Snapshot)

// Tracker holds the artwork transform for one print region.
type Tracker struct {
	region region.Region
	mode   bounds.Mode

	nextID       LayerID
	artworkLayer LayerID
	productLayer LayerID
	transform    artwork.Transform

	state     bounds.State
	checks    uint64
	listeners []Listener
}

// New returns a tracker for r with no layers. r must be usable.
func New(r region.Region, mode bounds.Mode) (*Tracker, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{region: r, mode: mode}, nil
}

// Subscribe registers fn to be called after every bounds check.
func (tr *Tracker) Subscribe(fn Listener) {
	tr.listeners = append(tr.listeners, fn)
}

// Region returns the region the tracker measures against.
func (tr *Tracker) Region() region.Region { return tr.region }

// Mode returns the bounds mode.
func (tr *Tracker) Mode() bounds.Mode { return tr.mode }

// ArtworkLayer returns the handle of the current artwork layer, or zero.
func (tr *Tracker) ArtworkLayer() LayerID { return tr.artworkLayer }

// ProductLayer returns the handle of the current product background, or zero.
func (tr *Tracker) ProductLayer() LayerID { return tr.productLayer }

// HasArtwork reports whether an artwork layer is present.
func (tr *Tracker) HasArtwork() bool { return tr.artworkLayer != 0 }

// Transform returns the current artwork transform.
func (tr *Tracker) Transform() (artwork.Transform, bool) {
	return tr.transform, tr.HasArtwork()
}

// Checks returns how many bounds checks have run.
func (tr *Tracker) Checks() uint64 { return tr.checks }

// State returns the result of the latest bounds check.
func (tr *Tracker) State() bounds.State { return tr.state }

// SetArtwork replaces the artwork layer wholesale and returns its new handle.
func (tr *Tracker) SetArtwork(t artwork.Transform) (LayerID, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	tr.nextID++
	tr.artworkLayer = tr.nextID
	tr.transform = t
	tr.recheck()
	return tr.artworkLayer, nil
}

// RemoveArtwork drops the artwork layer.
func (tr *Tracker) RemoveArtwork() {
	tr.artworkLayer = 0
	tr.transform = artwork.Transform{}
	tr.state = bounds.State{}
}

// SetProductLayer registers a new product background and returns its handle.
// It replaces any previous background.
func (tr *Tracker) SetProductLayer() LayerID {
	tr.nextID++
	tr.productLayer = tr.nextID
	return tr.productLayer
}

// RemoveProductLayer drops the product background.
func (tr *Tracker) RemoveProductLayer() { tr.productLayer = 0 }

// SetRegion switches to a newly resolved region, keeping the artwork where
// it is on the canvas.
func (tr *Tracker) SetRegion(r region.Region) error {
	if err := r.Validate(); err != nil {
		return err
	}
	tr.region = r
	if tr.HasArtwork() {
		tr.recheck()
	}
	return nil
}

// OnUserManipulate applies one manipulation event. Move overwrites Left
// and Top, Scale overwrites ScaleX and ScaleY, Rotate overwrites Rotation.
// Events with non-finite or non-positive values are rejected without
// touching the transform.
func (tr *Tracker) OnUserManipulate(kind Kind, g Geometry) (bounds.State, error) {
	if !tr.HasArtwork() {
		return bounds.State{}, errors.New(errors.ErrCodeNoArtwork, "no artwork to %s", kind)
	}
	next := tr.transform
	switch kind {
	case Move:
		next.Left, next.Top = g.Left, g.Top
	case Scale:
		next.ScaleX, next.ScaleY = g.ScaleX, g.ScaleY
	case Rotate:
		next.Rotation = g.Rotation
	default:
		return tr.state, errors.New(errors.ErrCodeInvalidInput, "unknown manipulation %s", kind)
	}
	if err := next.Validate(); err != nil {
		return tr.state, err
	}
	tr.transform = next
	return tr.recheck(), nil
}

// Apply runs a placement operation on the artwork.
func (tr *Tracker) Apply(op assist.Op) (bounds.State, error) {
	if !tr.HasArtwork() {
		return bounds.State{}, errors.New(errors.ErrCodeNoArtwork, "no artwork to %s", op)
	}
	next := op.Apply(tr.transform, tr.region)
	if err := next.Validate(); err != nil {
		return tr.state, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s produced an invalid placement", op)
	}
	tr.transform = next
	return tr.recheck(), nil
}

// RelativePosition returns the artwork origin relative to the region.
func (tr *Tracker) RelativePosition() (x, y float64) {
	return tr.transform.RelativePosition(tr.region)
}

// CurrentScale returns the artwork's ScaleX.
func (tr *Tracker) CurrentScale() float64 { return tr.transform.CurrentScale() }

// Config captures the artwork placement for persistence.
func (tr *Tracker) Config() (artwork.Config, error) {
	if !tr.HasArtwork() {
		return artwork.Config{}, errors.New(errors.ErrCodeNoArtwork, "no artwork placed")
	}
	return artwork.ConfigOf(tr.transform, tr.region), nil
}

// Snapshot returns the current state.
func (tr *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Region:       tr.region,
		ArtworkLayer: tr.artworkLayer,
		ProductLayer: tr.productLayer,
		Bounds:       tr.state,
	}
	if tr.HasArtwork() {
		t := tr.transform
		s.Transform = &t
		s.RelativeX, s.RelativeY = tr.RelativePosition()
		s.Scale = tr.CurrentScale()
	}
	return s
}

func (tr *Tracker) recheck() bounds.State {
	tr.state = bounds.Check(tr.transform, tr.region, tr.mode)
	tr.checks++
	snap := tr.Snapshot()
	for _, fn := range tr.listeners {
		fn(snap)
	}
	return tr.state
}
