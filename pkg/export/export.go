// Package export renders the print file for a placed artwork.
//
// The print file contains only the artwork, drawn at true print resolution
// into a transparent surface covering the print region. The canvas shows
// the region at some on-screen size; export multiplies every canvas
// coordinate by
//
//	multiplier = round(maxWidthInches * DPI) / region.Width
//
// so the artwork keeps exactly the placement, scale and rotation the user
// saw, just with more pixels. Export DPI is fixed at 300 and is unrelated
// to the region's own DPI, which only governs display sizing.
//
// # Usage
//
//	img, _, err := export.DecodeImage(data)
//	res, err := export.Export(ctx, region, &transform, img, export.Options{})
//	os.WriteFile(res.Filename(time.Now()), res.Data, 0o644)
package export

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/units"
)

// MaxPixels bounds the print surface. A 24x36 inch region at 300 DPI is
// under 78 million pixels.
const MaxPixels = 256 << 20

// Result is a rendered print file.
type Result struct {
	Data   []byte
	Format Format

	// PrintWidth and PrintHeight are the region's physical size at the
	// export DPI. PrintHeight is zero when the region has no inch height.
	PrintWidth  int
	PrintHeight int

	// Width and Height are the encoded image size.
	Width  int
	Height int

	Multiplier float64
}

// Filename returns the upload name for the print file.
func (r *Result) Filename(now time.Time) string {
	return fmt.Sprintf("print_file_%d.%s", now.UnixMilli(), r.Format.Ext())
}

// ContentType returns the MIME type of Data.
func (r *Result) ContentType() string { return r.Format.ContentType() }

// Geometry is the size computation of an export, without rendering.
type Geometry struct {
	PrintWidth  int
	PrintHeight int
	Multiplier  float64
	Width       int
	Height      int
}

// Plan computes the print size and multiplier for r at dpi.
func Plan(r region.Region, dpi float64) (Geometry, error) {
	if err := r.Validate(); err != nil {
		return Geometry{}, err
	}
	if !r.HasPhysicalSize() {
		return Geometry{}, errors.New(errors.ErrCodeNoPrintRegion,
			"print area %s has no physical width; cannot derive print resolution", r)
	}
	var g Geometry
	g.PrintWidth = units.Round(units.ToPixels(r.MaxWidthInches, dpi))
	g.PrintHeight = units.Round(units.ToPixels(r.MaxHeightInches, dpi))
	g.Multiplier = float64(g.PrintWidth) / r.Width
	g.Width = units.Round(r.Width * g.Multiplier)
	g.Height = units.Round(r.Height * g.Multiplier)

	if g.Width <= 0 || g.Height <= 0 {
		return Geometry{}, errors.New(errors.ErrCodeExportFailed, "print surface is empty (%dx%d)", g.Width, g.Height)
	}
	if int64(g.Width)*int64(g.Height) > MaxPixels {
		return Geometry{}, errors.New(errors.ErrCodeExportFailed, "print surface %dx%d is too large", g.Width, g.Height)
	}
	return g, nil
}

// Export renders img, placed by t, into the print file for r.
func Export(ctx context.Context, r region.Region, t *artwork.Transform, img image.Image, opts Options) (*Result, error) {
	if t == nil || img == nil {
		return nil, errors.New(errors.ErrCodeNoArtwork, "no artwork present")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	g, err := Plan(r, opts.DPI)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "invalid artwork placement")
	}
	sb := img.Bounds()
	if sb.Empty() {
		return nil, errors.New(errors.ErrCodeExportFailed, "artwork image is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "export cancelled")
	}

	dst := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	opts.interpolator().Transform(dst, Affine(r, *t, sb, g.Multiplier), img, sb, draw.Over, nil)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "export cancelled")
	}
	data, err := encode(dst, opts.Format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "encode %s", opts.Format)
	}

	opts.Logger.Debug("rendered print file",
		"size", fmt.Sprintf("%dx%d", g.Width, g.Height),
		"multiplier", g.Multiplier,
		"format", opts.Format,
		"bytes", len(data))

	return &Result{
		Data:        data,
		Format:      opts.Format,
		PrintWidth:  g.PrintWidth,
		PrintHeight: g.PrintHeight,
		Width:       g.Width,
		Height:      g.Height,
		Multiplier:  g.Multiplier,
	}, nil
}

// Affine returns the source-to-print matrix for an image with bounds sb
// placed by t in r, at multiplier m.
//
// The image is scaled to the transform's on-canvas size, rotated about its
// center, moved to its region-local position and finally scaled by m.
// The image may have a different pixel size than the transform's recorded
// original size (e.g. a re-downloaded print file); scale is taken relative
// to the actual pixels.
func Affine(r region.Region, t artwork.Transform, sb image.Rectangle, m float64) f64.Aff3 {
	sw, sh := t.ScaledWidth(), t.ScaledHeight()
	ex := sw / float64(sb.Dx())
	ey := sh / float64(sb.Dy())

	cx := t.Left - r.X + sw/2
	cy := t.Top - r.Y + sh/2
	sin, cos := math.Sincos(t.Rotation * math.Pi / 180)

	a, b := m*cos*ex, -m*sin*ey
	d, e := m*sin*ex, m*cos*ey
	c := m * (cx - cos*sw/2 + sin*sh/2)
	f := m * (cy - sin*sw/2 - cos*sh/2)

	// Source coordinates are absolute; shift so sb.Min maps like (0,0).
	x0, y0 := float64(sb.Min.X), float64(sb.Min.Y)
	c -= a*x0 + b*y0
	f -= d*x0 + e*y0

	return f64.Aff3{a, b, c, d, e, f}
}
