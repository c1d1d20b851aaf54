// Package preview renders the editing canvas: product photo, placed
// artwork and the print region outline. A placement without a loaded
// image is drawn as its rotated box.
//
// Composition uses gogpu/gg. The artwork is resized and rotated with
// disintegration/imaging before it is drawn, since gg draws images into
// axis-aligned rectangles only.
package preview

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/region"
)

// Canvas defaults.
const (
	DefaultWidth      = 500
	DefaultHeight     = 500
	DefaultBackground = "#f8f9fa"
)

const (
	outlineColor  = "#007bff"
	outsideColor  = "#dc3545"
	boxColor      = "#6c757d"
	boxFillA      = 0.35
	outlineWidth  = 2
	outlineDash   = 8
	outlineGap    = 4
	regionFillA   = 0.1
	maxCanvasSide = 8192
)

// Scene is what gets drawn. Every field but Region is optional.
type Scene struct {
	Region    region.Region
	Transform *artwork.Transform
	Bounds    bounds.State
	Artwork   image.Image
	Product   image.Image
}

// Options configures Render.
type Options struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Background string `toml:"background"`
	// MaxSize, when positive, shrinks the result so neither side exceeds it.
	MaxSize int `toml:"max_size"`
	// HideRegion omits the region outline.
	HideRegion bool `toml:"hide_region"`
}

func (o *Options) setDefaults() error {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Width < 0 || o.Height < 0 || o.Width > maxCanvasSide || o.Height > maxCanvasSide {
		return errors.New(errors.ErrCodeInvalidInput, "canvas size %dx%d out of range", o.Width, o.Height)
	}
	if o.MaxSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max size must not be negative")
	}
	return nil
}

// Render draws s onto a fresh canvas.
func Render(s Scene, opts Options) (image.Image, error) {
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	defer dc.Close()
	dc.ClearWithColor(gg.Hex(opts.Background))

	if s.Product != nil {
		drawProduct(dc, s.Product)
	}
	if !opts.HideRegion && s.Region.Usable() {
		if err := drawRegion(dc, s.Region, s.Bounds.Outside); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "draw print region")
		}
	}
	switch {
	case s.Transform == nil:
	case s.Artwork != nil:
		drawArtwork(dc, s.Artwork, *s.Transform)
	default:
		if err := drawPlacement(dc, *s.Transform); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "draw placement")
		}
	}

	img := dc.Image()
	if opts.MaxSize > 0 && (opts.Width > opts.MaxSize || opts.Height > opts.MaxSize) {
		img = imaging.Fit(img, opts.MaxSize, opts.MaxSize, imaging.Lanczos)
	}
	return img, nil
}

// RenderPNG renders s and writes it as PNG.
func RenderPNG(w io.Writer, s Scene, opts Options) error {
	img, err := Render(s, opts)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "encode preview")
	}
	return nil
}

// drawProduct scales the photo to fit the canvas and centers it.
func drawProduct(dc *gg.Context, img image.Image) {
	b := img.Bounds()
	cw, ch := float64(dc.Width()), float64(dc.Height())
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw == 0 || ih == 0 {
		return
	}
	scale := math.Min(cw/iw, ch/ih)
	w, h := iw*scale, ih*scale
	dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             (cw - w) / 2,
		Y:             (ch - h) / 2,
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpBilinear,
	})
}

func drawRegion(dc *gg.Context, r region.Region, outside bool) error {
	stroke := outlineColor
	if outside {
		stroke = outsideColor
	}
	c := gg.Hex(stroke)

	dc.Push()
	defer dc.Pop()

	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.SetRGBA(c.R, c.G, c.B, regionFillA)
	if err := dc.Fill(); err != nil {
		return err
	}

	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.SetRGB(c.R, c.G, c.B)
	dc.SetLineWidth(outlineWidth)
	dc.SetLineCap(gg.LineCapSquare)
	dc.SetDash(outlineDash, outlineGap)
	err := dc.Stroke()
	dc.ClearDash()
	return err
}

// drawArtwork draws img with the full transform: scaled, then rotated
// about the artwork center.
func drawArtwork(dc *gg.Context, img image.Image, t artwork.Transform) {
	w, h := int(math.Round(t.ScaledWidth())), int(math.Round(t.ScaledHeight()))
	if w <= 0 || h <= 0 {
		return
	}
	var out image.Image = imaging.Resize(img, w, h, imaging.Lanczos)
	if t.Rotation != 0 {
		out = imaging.Rotate(out, -t.Rotation, color.Transparent)
	}

	cx, cy := t.Center()
	b := out.Bounds()
	dc.DrawImageEx(gg.ImageBufFromImage(out), gg.DrawImageOptions{
		X:             cx - float64(b.Dx())/2,
		Y:             cy - float64(b.Dy())/2,
		Interpolation: gg.InterpBilinear,
	})
}

// drawPlacement draws the rotated artwork box for a placement whose image
// is held by the client.
func drawPlacement(dc *gg.Context, t artwork.Transform) error {
	if t.ScaledWidth() <= 0 || t.ScaledHeight() <= 0 {
		return nil
	}
	c := gg.Hex(boxColor)
	corners := t.Corners()
	path := func() {
		dc.MoveTo(corners[0][0], corners[0][1])
		for _, p := range corners[1:] {
			dc.LineTo(p[0], p[1])
		}
		dc.ClosePath()
	}

	dc.Push()
	defer dc.Pop()

	path()
	dc.SetRGBA(c.R, c.G, c.B, boxFillA)
	if err := dc.Fill(); err != nil {
		return err
	}
	path()
	dc.SetRGB(c.R, c.G, c.B)
	dc.SetLineWidth(outlineWidth)
	return dc.Stroke()
}
