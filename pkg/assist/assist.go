// Package assist implements the one-click placement adjustments offered
// next to the canvas.
//
// Each operation is a pure function of the current transform and the
// region: it returns a new transform and leaves bounds re-checking to the
// caller. Applying an operation twice in a row gives the same result as
// applying it once, except SmartResize, which keeps shrinking while the
// artwork is still out of bounds until it reaches [MinScale].
package assist

import (
	"math"
	"strings"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/region"
)

const (
	// Margin is the share of the region a fitted artwork may fill.
	Margin = 0.95
	// MinScale is the smallest scale SmartResize will shrink to.
	MinScale = 0.1
)

// Op names a placement operation.
type Op int

const (
	OpReset Op = iota
	OpAutoFit
	OpCenter
	OpSmartResize
)

var opNames = map[Op]string{
	OpReset:       "reset",
	OpAutoFit:     "fit",
	OpCenter:      "center",
	OpSmartResize: "smart-resize",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// ParseOp maps a command or route name to an operation.
func ParseOp(name string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "reset", "original":
		return OpReset, nil
	case "fit", "autofit", "auto-fit":
		return OpAutoFit, nil
	case "center", "centre":
		return OpCenter, nil
	case "smart-resize", "smartresize", "smart", "shrink":
		return OpSmartResize, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput,
		"unknown placement operation %q (want reset, fit, center or smart-resize)", name)
}

// Ops lists every operation in display order.
func Ops() []Op { return []Op{OpReset, OpAutoFit, OpCenter, OpSmartResize} }

// Apply runs o.
func (o Op) Apply(t artwork.Transform, r region.Region) artwork.Transform {
	switch o {
	case OpReset:
		return Reset(t, r)
	case OpAutoFit:
		return AutoFit(t, r)
	case OpCenter:
		return Center(t, r)
	case OpSmartResize:
		return SmartResize(t, r)
	}
	return t
}

// Reset restores the as-uploaded placement: display size, centered.
// Rotation is left alone.
func Reset(t artwork.Transform, r region.Region) artwork.Transform {
	t.ScaleX = t.DisplayWidth / t.OriginalWidth
	t.ScaleY = t.DisplayHeight / t.OriginalHeight
	return centerBox(t, r, t.DisplayWidth, t.DisplayHeight)
}

// AutoFit scales the artwork uniformly to the largest size that fills at
// most 95% of the region on both axes, then centers it.
func AutoFit(t artwork.Transform, r region.Region) artwork.Transform {
	s := math.Min(Margin*r.Width/t.OriginalWidth, Margin*r.Height/t.OriginalHeight)
	t.ScaleX, t.ScaleY = s, s
	return Center(t, r)
}

// Center keeps the current scale and centers the scaled box. An artwork
// larger than the region stays out of bounds.
func Center(t artwork.Transform, r region.Region) artwork.Transform {
	return centerBox(t, r, t.ScaledWidth(), t.ScaledHeight())
}

// SmartResize shrinks an out-of-bounds artwork until it fits without
// moving it away from where the user put it.
//
// The artwork's offset from the centered position is kept. On each axis
// that crosses the region, the scale is limited to what fits in the region
// minus twice that offset. The result gets a 5% margin and is never below
// MinScale, nor above the current scale. Artwork already inside is
// returned unchanged.
func SmartResize(t artwork.Transform, r region.Region) artwork.Transform {
	st := bounds.Check(t, r, bounds.ModeAxisAligned)
	if !st.Outside {
		return t
	}

	cur := t.CurrentScale()
	offX := t.Left - (r.X + (r.Width-t.ScaledWidth())/2)
	offY := t.Top - (r.Y + (r.Height-t.ScaledHeight())/2)

	ratio := 1.0
	if t.ScaleX != 0 {
		ratio = t.ScaleY / t.ScaleX
	}

	s := cur
	if st.Horizontal() {
		s = math.Min(s, (r.Width-2*math.Abs(offX))/t.OriginalWidth)
	}
	if st.Vertical() {
		s = math.Min(s, (r.Height-2*math.Abs(offY))/(t.OriginalHeight*ratio))
	}
	s = math.Min(cur, math.Max(MinScale, s*Margin))

	t = t.WithScale(s)
	t.Left = r.X + (r.Width-t.ScaledWidth())/2 + offX
	t.Top = r.Y + (r.Height-t.ScaledHeight())/2 + offY
	return t
}

func centerBox(t artwork.Transform, r region.Region, w, h float64) artwork.Transform {
	t.Left = r.X + (r.Width-w)/2
	t.Top = r.Y + (r.Height-h)/2
	return t
}
