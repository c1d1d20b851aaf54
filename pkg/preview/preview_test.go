package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/region"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func rgb(img image.Image, x, y int) (r, g, b uint32) {
	r, g, b, _ = img.At(x, y).RGBA()
	return r >> 8, g >> 8, b >> 8
}

func testScene() Scene {
	r := region.Region{X: 50, Y: 20, Width: 300, Height: 400, MaxWidthInches: 3, MaxHeightInches: 4, MaxDPI: 100}
	t, _ := artwork.New(r, 200, 100)
	return Scene{
		Region:    r,
		Transform: &t,
		Bounds:    bounds.Check(t, r, bounds.ModeAxisAligned),
		Artwork:   solid(200, 100, color.NRGBA{R: 255, A: 255}),
		Product:   solid(100, 50, color.NRGBA{G: 255, A: 255}),
	}
}

func TestRenderLayers(t *testing.T) {
	img, err := Render(testScene(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != DefaultWidth || b.Dy() != DefaultHeight {
		t.Fatalf("size = %v", b)
	}

	tests := []struct {
		name    string
		x, y    int
		r, g, b uint32
	}{
		{"background", 10, 10, 248, 249, 250},
		{"product", 10, 250, 0, 255, 0},
		{"artwork", 200, 220, 255, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := rgb(img, tt.x, tt.y)
			if diff(r, tt.r) > 8 || diff(g, tt.g) > 8 || diff(b, tt.b) > 8 {
				t.Errorf("pixel (%d,%d) = %d,%d,%d want %d,%d,%d", tt.x, tt.y, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestRenderWithoutArtwork(t *testing.T) {
	s := testScene()
	s.Artwork, s.Transform = nil, nil
	img, err := Render(s, Options{Width: 400, Height: 300})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("size = %v", b)
	}
}

func TestRenderPlacementWithoutImage(t *testing.T) {
	s := testScene()
	s.Artwork, s.Product = nil, nil
	img, err := Render(s, Options{HideRegion: true})
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b := rgb(img, 200, 220); r > 230 || diff(r, g) > 8 || diff(g, b) > 8 {
		t.Errorf("placement center = %d,%d,%d, want a gray box", r, g, b)
	}
	if r, _, _ := rgb(img, 200, 300); r < 240 {
		t.Errorf("pixel below the 100px tall box should be background, r = %d", r)
	}

	s.Transform = nil
	empty, err := Render(s, Options{HideRegion: true})
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _ := rgb(empty, 200, 220); r < 240 {
		t.Errorf("no placement should leave the center clear, r = %d", r)
	}
}

func TestRenderRotated(t *testing.T) {
	s := testScene()
	tr := *s.Transform
	tr.Rotation = 90
	s.Transform = &tr
	img, err := Render(s, Options{HideRegion: true})
	if err != nil {
		t.Fatal(err)
	}
	// Rotated a quarter turn the 200x100 artwork is 100 wide and 200 tall
	// about its center (200, 220).
	if r, _, _ := rgb(img, 200, 140); r < 200 {
		t.Errorf("pixel above center should be artwork after rotation, r = %d", r)
	}
	if r, _, _ := rgb(img, 130, 220); r > 100 {
		t.Errorf("pixel left of center should be clear after rotation, r = %d", r)
	}
}

func TestRenderMaxSize(t *testing.T) {
	img, err := Render(testScene(), Options{MaxSize: 250})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 250 || b.Dy() != 250 {
		t.Errorf("size = %v, want 250x250", b)
	}
}

func TestRenderInvalidOptions(t *testing.T) {
	for _, o := range []Options{{Width: -1}, {Width: 100000}, {MaxSize: -5}} {
		if _, err := Render(testScene(), o); err == nil {
			t.Errorf("Render(%+v) should fail", o)
		}
	}
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPNG(&buf, testScene(), Options{Width: 120, Height: 80}); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 120 || cfg.Height != 80 {
		t.Errorf("png = %dx%d", cfg.Width, cfg.Height)
	}
}

func diff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
