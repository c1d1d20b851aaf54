// Package artwork models the placement of an artwork layer on the canvas.
//
// A [Transform] records where the artwork's top-left origin sits in canvas
// pixels, how its native pixels are scaled and how far it is rotated about
// its center. Region-relative coordinates are derived on demand and never
// stored, so a transform stays valid while the user drags it around.
package artwork

import (
	"math"

	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/region"
)

// Transform is the placement state of one artwork layer.
type Transform struct {
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
	Rotation float64 `json:"rotation"` // degrees, clockwise, about the center

	OriginalWidth  float64 `json:"originalWidth"`
	OriginalHeight float64 `json:"originalHeight"`
	DisplayWidth   float64 `json:"displayWidth"`
	DisplayHeight  float64 `json:"displayHeight"`
}

// ScaledWidth is the on-canvas width before rotation.
func (t Transform) ScaledWidth() float64 { return t.OriginalWidth * t.ScaleX }

// ScaledHeight is the on-canvas height before rotation.
func (t Transform) ScaledHeight() float64 { return t.OriginalHeight * t.ScaleY }

// CurrentScale returns ScaleX. Placement treats scaling as uniform; when
// ScaleX and ScaleY differ the vertical factor is not reflected here.
func (t Transform) CurrentScale() float64 { return t.ScaleX }

// Box returns the unrotated bounding box in canvas space.
func (t Transform) Box() region.Rect {
	return region.Rect{
		Left:   t.Left,
		Top:    t.Top,
		Right:  t.Left + t.ScaledWidth(),
		Bottom: t.Top + t.ScaledHeight(),
	}
}

// Center returns the canvas-space point the artwork rotates about.
func (t Transform) Center() (x, y float64) {
	return t.Left + t.ScaledWidth()/2, t.Top + t.ScaledHeight()/2
}

// Corners returns the four corners of the rotated artwork in canvas space,
// clockwise from the top-left of the unrotated image.
func (t Transform) Corners() [4][2]float64 {
	cx, cy := t.Center()
	hw, hh := t.ScaledWidth()/2, t.ScaledHeight()/2
	sin, cos := math.Sincos(t.Rotation * math.Pi / 180)

	var out [4][2]float64
	for i, p := range [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}} {
		out[i] = [2]float64{
			cx + p[0]*cos - p[1]*sin,
			cy + p[0]*sin + p[1]*cos,
		}
	}
	return out
}

// RotatedBox returns the axis-aligned box enclosing the rotated artwork.
func (t Transform) RotatedBox() region.Rect {
	c := t.Corners()
	b := region.Rect{Left: c[0][0], Top: c[0][1], Right: c[0][0], Bottom: c[0][1]}
	for _, p := range c[1:] {
		b.Left = math.Min(b.Left, p[0])
		b.Right = math.Max(b.Right, p[0])
		b.Top = math.Min(b.Top, p[1])
		b.Bottom = math.Max(b.Bottom, p[1])
	}
	return b
}

// RelativePosition returns the artwork origin relative to the region origin.
func (t Transform) RelativePosition(r region.Region) (x, y float64) {
	return t.Left - r.X, t.Top - r.Y
}

// AtRelative returns a copy of t with its origin placed at (x, y) relative
// to the region origin. It is the inverse of RelativePosition.
func (t Transform) AtRelative(r region.Region, x, y float64) Transform {
	t.Left = r.X + x
	t.Top = r.Y + y
	return t
}

// WithScale returns a copy of t scaled uniformly to s, keeping the
// ScaleY/ScaleX ratio.
func (t Transform) WithScale(s float64) Transform {
	ratio := 1.0
	if t.ScaleX != 0 {
		ratio = t.ScaleY / t.ScaleX
	}
	t.ScaleX = s
	t.ScaleY = s * ratio
	return t
}

// Validate reports whether every field is a usable number.
func (t Transform) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"left", t.Left}, {"top", t.Top}, {"rotation", t.Rotation}} {
		if err := errors.ValidateFinite(f.name, f.v); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"scaleX", t.ScaleX}, {"scaleY", t.ScaleY},
		{"originalWidth", t.OriginalWidth}, {"originalHeight", t.OriginalHeight},
	} {
		if err := errors.ValidatePositive(f.name, f.v); err != nil {
			return err
		}
	}
	if err := errors.ValidateMeasure("displayWidth", t.DisplayWidth); err != nil {
		return err
	}
	return errors.ValidateMeasure("displayHeight", t.DisplayHeight)
}
