package artwork

import (
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/region"
)

const (
	// FitMargin is the share of the region an initially placed artwork may occupy.
	FitMargin = 0.95
	// unplacedScale sizes artwork when no print area is known.
	unplacedScale = 0.3
)

// DisplaySize returns the size an image of ow x oh native pixels is first
// shown at. The image keeps its physical size: a pixel of artwork maps to
// one print pixel at the region's DPI, then the result is shrunk, keeping
// its aspect ratio, to at most 95% of the region on each axis.
//
// Without a usable region the image is shown at 30% of its native size.
func DisplaySize(r region.Region, ow, oh float64) (w, h float64) {
	if !r.Usable() {
		return ow * unplacedScale, oh * unplacedScale
	}
	inW, inH, dpi := r.PhysicalSize()
	w = ow * r.Width / (inW * dpi)
	h = oh * r.Height / (inH * dpi)

	maxW, maxH := r.Width*FitMargin, r.Height*FitMargin
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	return w, h
}

// New places a freshly loaded image of ow x oh pixels: sized by DisplaySize
// and centered in the region.
func New(r region.Region, ow, oh float64) (Transform, error) {
	if err := r.Validate(); err != nil {
		return Transform{}, err
	}
	if err := errors.ValidatePositive("image width", ow); err != nil {
		return Transform{}, err
	}
	if err := errors.ValidatePositive("image height", oh); err != nil {
		return Transform{}, err
	}
	dw, dh := DisplaySize(r, ow, oh)
	return Placed(r, ow, oh, dw, dh), nil
}

// Placed returns a transform that shows an ow x oh image at dw x dh,
// centered in r.
func Placed(r region.Region, ow, oh, dw, dh float64) Transform {
	return Transform{
		Left:           r.X + (r.Width-dw)/2,
		Top:            r.Y + (r.Height-dh)/2,
		ScaleX:         dw / ow,
		ScaleY:         dh / oh,
		OriginalWidth:  ow,
		OriginalHeight: oh,
		DisplayWidth:   dw,
		DisplayHeight:  dh,
	}
}
