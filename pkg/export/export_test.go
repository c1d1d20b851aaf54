package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/webp"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/region"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	return img
}

func alphaAt(img image.Image, x, y int) uint32 {
	_, _, _, a := img.At(x, y).RGBA()
	return a >> 8
}

func TestPlanMultiplier(t *testing.T) {
	g, err := Plan(region.Region{Width: 300, Height: 400, MaxWidthInches: 3, MaxHeightInches: 4}, 300)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if g.PrintWidth != 900 || g.Multiplier != 3.0 {
		t.Errorf("print width = %d, multiplier = %g; want 900, 3", g.PrintWidth, g.Multiplier)
	}
	if g.Width != 900 || g.Height != 1200 || g.PrintHeight != 1200 {
		t.Errorf("surface = %dx%d (print height %d), want 900x1200", g.Width, g.Height, g.PrintHeight)
	}
}

func TestPlanIgnoresRegionDPI(t *testing.T) {
	g, err := Plan(region.Region{Width: 150, Height: 150, MaxWidthInches: 2, MaxHeightInches: 2, MaxDPI: 75}, 300)
	if err != nil {
		t.Fatal(err)
	}
	if g.PrintWidth != 600 || g.Multiplier != 4 {
		t.Errorf("print width = %d, multiplier = %g; want 600, 4", g.PrintWidth, g.Multiplier)
	}
}

func TestPlanErrors(t *testing.T) {
	tests := []struct {
		name string
		r    region.Region
		code errors.Code
	}{
		{"unusable", region.Region{Width: 300}, errors.ErrCodeNoPrintRegion},
		{"no inches", region.Region{Width: 300, Height: 300}, errors.ErrCodeNoPrintRegion},
		{"too large", region.Region{Width: 1, Height: 100000, MaxWidthInches: 100}, errors.ErrCodeExportFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Plan(tt.r, 300); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExportPlacement(t *testing.T) {
	r := region.Region{X: 50, Y: 20, Width: 300, Height: 400, MaxWidthInches: 3, MaxHeightInches: 4}
	tr := artwork.Transform{
		Left: 150, Top: 220, ScaleX: 2, ScaleY: 2,
		OriginalWidth: 10, OriginalHeight: 10, DisplayWidth: 20, DisplayHeight: 20,
	}
	red := color.NRGBA{R: 255, A: 255}

	res, err := Export(context.Background(), r, &tr, solid(10, 10, red), Options{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Format != FormatPNG || res.ContentType() != "image/png" {
		t.Errorf("format = %s", res.Format)
	}
	if res.Multiplier != 3 || res.Width != 900 || res.Height != 1200 {
		t.Errorf("result = %dx%d x%g", res.Width, res.Height, res.Multiplier)
	}

	img := decodePNG(t, res.Data)
	if b := img.Bounds(); b.Dx() != 900 || b.Dy() != 1200 {
		t.Fatalf("decoded size = %v", b)
	}
	// Region-local (100,200) at 3x is (300,600); the 20px artwork spans 60px.
	if a := alphaAt(img, 330, 630); a < 250 {
		t.Errorf("alpha inside artwork = %d, want opaque", a)
	}
	if rr, _, _, _ := img.At(330, 630).RGBA(); rr>>8 < 250 {
		t.Errorf("red inside artwork = %d", rr>>8)
	}
	for _, p := range []image.Point{{10, 10}, {290, 630}, {370, 630}, {330, 590}, {330, 670}, {899, 1199}} {
		if a := alphaAt(img, p.X, p.Y); a != 0 {
			t.Errorf("alpha at %v = %d, want transparent", p, a)
		}
	}
}

func TestExportRotation(t *testing.T) {
	r := region.Region{Width: 300, Height: 300, MaxWidthInches: 1, MaxHeightInches: 1}
	tr := artwork.Transform{
		Left: 100, Top: 100, ScaleX: 1, ScaleY: 1, Rotation: 90,
		OriginalWidth: 20, OriginalHeight: 10,
	}

	res, err := Export(context.Background(), r, &tr, solid(20, 10, color.NRGBA{B: 255, A: 255}), Options{Interpolation: InterpNearest})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Multiplier != 1 {
		t.Fatalf("multiplier = %g, want 1", res.Multiplier)
	}
	img := decodePNG(t, res.Data)

	// Rotated about (110,105): spans x 105..115, y 95..115.
	if a := alphaAt(img, 110, 97); a != 255 {
		t.Errorf("alpha at rotated-only pixel = %d, want 255", a)
	}
	if a := alphaAt(img, 101, 105); a != 0 {
		t.Errorf("alpha at unrotated-only pixel = %d, want 0", a)
	}
}

func TestExportWebP(t *testing.T) {
	r := region.Region{Width: 100, Height: 50, MaxWidthInches: 1, MaxHeightInches: 0.5}
	tr := artwork.Transform{Left: 10, Top: 10, ScaleX: 1, ScaleY: 1, OriginalWidth: 8, OriginalHeight: 8}

	res, err := Export(context.Background(), r, &tr, solid(8, 8, color.White), Options{Format: FormatWebP})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.ContentType() != "image/webp" {
		t.Errorf("content type = %s", res.ContentType())
	}
	cfg, err := webp.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("webp.DecodeConfig: %v", err)
	}
	if cfg.Width != 300 || cfg.Height != 150 {
		t.Errorf("webp size = %dx%d, want 300x150", cfg.Width, cfg.Height)
	}
}

func TestExportErrors(t *testing.T) {
	r := region.Region{Width: 100, Height: 100, MaxWidthInches: 1, MaxHeightInches: 1}
	tr := artwork.Transform{ScaleX: 1, ScaleY: 1, OriginalWidth: 4, OriginalHeight: 4}
	img := solid(4, 4, color.Black)
	ctx := context.Background()

	if _, err := Export(ctx, r, nil, img, Options{}); !errors.Is(err, errors.ErrCodeNoArtwork) {
		t.Errorf("nil transform: %v", err)
	}
	if _, err := Export(ctx, r, &tr, nil, Options{}); !errors.Is(err, errors.ErrCodeNoArtwork) {
		t.Errorf("nil image: %v", err)
	}
	if _, err := Export(ctx, region.Region{Width: 100}, &tr, img, Options{}); !errors.Is(err, errors.ErrCodeNoPrintRegion) {
		t.Errorf("unusable region: %v", err)
	}
	if _, err := Export(ctx, r, &tr, img, Options{Format: "jpeg"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad format: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := Export(cancelled, r, &tr, img, Options{})
	if !errors.Is(err, errors.ErrCodeExportFailed) {
		t.Errorf("cancelled: %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("cancelled error should carry the context error: %v", err)
	}
}

func TestResultFilename(t *testing.T) {
	res := &Result{Format: FormatPNG}
	got := res.Filename(time.UnixMilli(1700000000123))
	if got != "print_file_1700000000123.png" {
		t.Errorf("Filename = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{"webp", FormatWebP, false},
		{"jpeg", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(3, 2, color.White)); err != nil {
		t.Fatal(err)
	}
	img, format, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if format != "png" || img.Bounds().Dx() != 3 {
		t.Errorf("format = %s, bounds = %v", format, img.Bounds())
	}

	if _, _, err := DecodeImage([]byte("not an image")); !errors.Is(err, errors.ErrCodeLoadFailed) {
		t.Errorf("garbage: err = %v, want LOAD_FAILED", err)
	}
}

func TestAffineHonorsSourceOrigin(t *testing.T) {
	r := region.Region{Width: 100, Height: 100}
	tr := artwork.Transform{Left: 10, Top: 20, ScaleX: 1, ScaleY: 1, OriginalWidth: 10, OriginalHeight: 10}
	m := Affine(r, tr, image.Rect(5, 5, 15, 15), 1)

	// Source (5,5) is the image's top-left and must land at (10,20).
	x := m[0]*5 + m[1]*5 + m[2]
	y := m[3]*5 + m[4]*5 + m[5]
	if x != 10 || y != 20 {
		t.Errorf("origin maps to (%g,%g), want (10,20)", x, y)
	}
}
