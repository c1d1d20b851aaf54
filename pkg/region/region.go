package region

import (
	"fmt"
	"math"

	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/units"
)

// Physical size assumed for display sizing when a region carries no inch
// data. Export never uses these.
const (
	FallbackWidthInches  = 12.0
	FallbackHeightInches = 16.0
)

// Raw is a print area as the catalog delivers it. Every field is optional;
// several quantities have more than one spelling. A nil pointer means the
// field was absent (or null).
type Raw struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`

	XPosition *float64 `json:"x_position,omitempty"`
	YPosition *float64 `json:"y_position,omitempty"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`

	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	MaxWidth             *float64 `json:"maxWidth,omitempty"`
	MaxHeight            *float64 `json:"maxHeight,omitempty"`
	MaxWidthInches       *float64 `json:"maxWidthInches,omitempty"`
	MaxHeightInches      *float64 `json:"maxHeightInches,omitempty"`
	MaxWidthInchesSnake  *float64 `json:"max_width_inches,omitempty"`
	MaxHeightInchesSnake *float64 `json:"max_height_inches,omitempty"`

	MaxDPI      *float64 `json:"maxDpi,omitempty"`
	MaxDPISnake *float64 `json:"max_dpi,omitempty"`
}

// Region is a resolved print area in canvas pixel space.
type Region struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Physical size in inches. Zero when the catalog did not provide it.
	MaxWidthInches  float64 `json:"maxWidthInches,omitempty"`
	MaxHeightInches float64 `json:"maxHeightInches,omitempty"`
	// MaxDPI is the resolution used to convert inches to canvas pixels.
	MaxDPI float64 `json:"maxDpi"`
}

// Resolve derives a Region from raw catalog data.
//
// Position uses x_position, then x, then 0. A zero value counts as absent,
// so an explicit x_position of 0 falls through to x. Extent uses the pixel
// field when present (even if zero), then inches*dpi, then 0. Each axis
// resolves independently.
//
// An extent of zero on either axis yields an ErrCodeNoPrintRegion error.
func Resolve(raw Raw) (Region, error) {
	r := Region{ID: raw.ID, Name: raw.Name}

	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"x_position", raw.XPosition}, {"y_position", raw.YPosition},
		{"x", raw.X}, {"y", raw.Y},
	} {
		if f.v != nil {
			if err := errors.ValidateFinite(f.name, *f.v); err != nil {
				return Region{}, err
			}
		}
	}
	r.X = firstNonZero(raw.XPosition, raw.X)
	r.Y = firstNonZero(raw.YPosition, raw.Y)

	dpi := units.DefaultDPI
	if v := firstSet(raw.MaxDPI, raw.MaxDPISnake); v != nil {
		if err := errors.ValidatePositive("maxDpi", *v); err != nil {
			return Region{}, err
		}
		dpi = *v
	}
	r.MaxDPI = dpi

	inW := firstSet(raw.MaxWidth, raw.MaxWidthInches, raw.MaxWidthInchesSnake)
	inH := firstSet(raw.MaxHeight, raw.MaxHeightInches, raw.MaxHeightInchesSnake)

	var err error
	if r.MaxWidthInches, err = measure("maxWidth", inW); err != nil {
		return Region{}, err
	}
	if r.MaxHeightInches, err = measure("maxHeight", inH); err != nil {
		return Region{}, err
	}

	if r.Width, err = extent("width", raw.Width, r.MaxWidthInches, dpi); err != nil {
		return Region{}, err
	}
	if r.Height, err = extent("height", raw.Height, r.MaxHeightInches, dpi); err != nil {
		return Region{}, err
	}

	if !r.Usable() {
		return Region{}, errors.New(errors.ErrCodeNoPrintRegion,
			"print area %s has no printable extent (%gx%g)", r.label(), r.Width, r.Height)
	}
	return r, nil
}

// ResolveView resolves the named view from a product's print areas.
func ResolveView(areas map[string]Raw, view string) (Region, error) {
	raw, ok := areas[view]
	if !ok {
		return Region{}, errors.New(errors.ErrCodeNoPrintRegion, "product has no print area %q", view)
	}
	if raw.Name == "" {
		raw.Name = view
	}
	return Resolve(raw)
}

// Validate checks a Region that was built directly rather than through
// Resolve, e.g. when decoded from a request.
func (r Region) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"x", r.X}, {"y", r.Y}} {
		if err := errors.ValidateFinite(f.name, f.v); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"width", r.Width}, {"height", r.Height},
		{"maxWidthInches", r.MaxWidthInches}, {"maxHeightInches", r.MaxHeightInches},
		{"maxDpi", r.MaxDPI},
	} {
		if err := errors.ValidateMeasure(f.name, f.v); err != nil {
			return err
		}
	}
	if !r.Usable() {
		return errors.New(errors.ErrCodeNoPrintRegion, "print area %s has no printable extent", r.label())
	}
	return nil
}

// Usable reports whether the region has a positive extent on both axes.
func (r Region) Usable() bool {
	return r.Width > 0 && r.Height > 0 && units.Valid(r.Width) && units.Valid(r.Height)
}

// Bounds returns the region rectangle in canvas space.
func (r Region) Bounds() Rect {
	return Rect{Left: r.X, Top: r.Y, Right: r.X + r.Width, Bottom: r.Y + r.Height}
}

// Center returns the canvas-space center of the region.
func (r Region) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// HasPhysicalSize reports whether the catalog provided the region's width
// in inches, which export requires.
func (r Region) HasPhysicalSize() bool {
	return r.MaxWidthInches > 0
}

// PhysicalSize returns the region's size in inches and the DPI used for
// display sizing, substituting 12x16 inches when the catalog omitted them.
func (r Region) PhysicalSize() (w, h, dpi float64) {
	w, h, dpi = r.MaxWidthInches, r.MaxHeightInches, r.MaxDPI
	if w <= 0 {
		w = FallbackWidthInches
	}
	if h <= 0 {
		h = FallbackHeightInches
	}
	if dpi <= 0 {
		dpi = units.DefaultDPI
	}
	return w, h, dpi
}

// String implements fmt.Stringer.
func (r Region) String() string {
	return fmt.Sprintf("%s (%g,%g %gx%g)", r.label(), r.X, r.Y, r.Width, r.Height)
}

func (r Region) label() string {
	switch {
	case r.Name != "":
		return fmt.Sprintf("%q", r.Name)
	case r.ID != "":
		return "#" + string(r.ID)
	}
	return "(unnamed)"
}

func firstSet(vs ...*float64) *float64 {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonZero(vs ...*float64) float64 {
	for _, v := range vs {
		if v != nil && *v != 0 {
			return *v
		}
	}
	return 0
}

func measure(name string, v *float64) (float64, error) {
	if v == nil {
		return 0, nil
	}
	if err := errors.ValidateMeasure(name, *v); err != nil {
		return 0, err
	}
	return *v, nil
}

func extent(name string, px *float64, inches, dpi float64) (float64, error) {
	if px != nil {
		if err := errors.ValidateMeasure(name, *px); err != nil {
			return 0, err
		}
		return *px, nil
	}
	v := units.ToPixels(inches, dpi)
	if math.IsNaN(v) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s could not be derived", name)
	}
	return v, nil
}
