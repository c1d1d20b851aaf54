package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/assist"
	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/cache"
	errs "github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/tracker"
)

// maxArtworkBytes caps artwork read from disk or downloaded.
const maxArtworkBytes = 100 << 20

// backend is the cache and catalog client a command works against.
type backend struct {
	cache cache.Cache
	api   *podapi.Client
}

func (c *CLI) openBackend(ctx context.Context, noCache bool) (*backend, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	api, err := c.newAPI(cc)
	if err != nil {
		cc.Close()
		return nil, err
	}
	return &backend{cache: cc, api: api}, nil
}

func (b *backend) Close() error { return b.cache.Close() }

// regionFlags selects a print region: a catalog product and view, or a
// JSON file holding either a single print area or a whole product.
type regionFlags struct {
	product string
	view    string
	file    string
	refresh bool
}

func (f *regionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.product, "product", "p", "", "catalog product ID")
	cmd.Flags().StringVar(&f.view, "view", "", "print area view (default: front, or the first view)")
	cmd.Flags().StringVarP(&f.file, "region", "r", "", "print area or product JSON file")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached catalog data and print files")
	cmd.MarkFlagsMutuallyExclusive("product", "region")
}

// resolve returns the selected region and, when one was involved, the
// product it belongs to.
func (f *regionFlags) resolve(ctx context.Context, b *backend) (region.Region, *podapi.Product, string, error) {
	switch {
	case f.product != "":
		p, err := b.api.GetProduct(ctx, region.ID(f.product), f.refresh)
		if err != nil {
			return region.Region{}, nil, "", err
		}
		view := f.viewOf(p)
		r, err := p.Region(view)
		return r, p, view, err
	case f.file != "":
		data, err := os.ReadFile(f.file)
		if err != nil {
			return region.Region{}, nil, "", errs.Wrap(errs.ErrCodeLoadFailed, err, "read region file")
		}
		return f.parse(data)
	}
	return region.Region{}, nil, "", errs.New(errs.ErrCodeInvalidInput, "either --product or --region is required")
}

func (f *regionFlags) viewOf(p *podapi.Product) string {
	if f.view != "" {
		return f.view
	}
	return p.DefaultView()
}

// parse accepts a product document (anything with printAreas) or a bare
// print area.
func (f *regionFlags) parse(data []byte) (region.Region, *podapi.Product, string, error) {
	var shape struct {
		PrintAreas json.RawMessage `json:"printAreas"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return region.Region{}, nil, "", errs.Wrap(errs.ErrCodeInvalidFormat, err, "region file")
	}
	if len(shape.PrintAreas) > 0 {
		var p podapi.Product
		if err := json.Unmarshal(data, &p); err != nil {
			return region.Region{}, nil, "", errs.Wrap(errs.ErrCodeInvalidFormat, err, "product file")
		}
		view := f.viewOf(&p)
		r, err := p.Region(view)
		return r, &p, view, err
	}
	var raw region.Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return region.Region{}, nil, "", errs.Wrap(errs.ErrCodeInvalidFormat, err, "print area file")
	}
	r, err := region.Resolve(raw)
	return r, nil, raw.Name, err
}

// artworkSource is a decoded artwork with its raw bytes. URL is set when
// the artwork came from http(s).
type artworkSource struct {
	Image  image.Image
	Data   []byte
	Format string
	URL    string
}

func (a *artworkSource) size() (w, h float64) {
	b := a.Image.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// loadArtwork reads src, a file path or an http(s) URL.
func loadArtwork(ctx context.Context, b *backend, src string) (*artworkSource, error) {
	var (
		data []byte
		url  string
		err  error
	)
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		url = src
		data, _, err = b.api.Fetch(ctx, src, maxArtworkBytes)
	} else {
		data, err = readLimited(src, maxArtworkBytes)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeLoadFailed, err, "load artwork %s", src)
	}
	img, format, err := export.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return &artworkSource{Image: img, Data: data, Format: format, URL: url}, nil
}

func readLimited(path string, limit int64) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.Size() > limit {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, limit)
	}
	return os.ReadFile(path)
}

// placementFlags adjust a placement after the artwork is centered (or
// restored from a saved config). Moves use region-relative coordinates.
// saved is set by commands that restore a placement themselves; --placement
// takes precedence.
type placementFlags struct {
	from   string
	saved  *artwork.Config
	assist []string
	x, y   float64
	scale  float64
	rotate float64
	mode   string
}

func (f *placementFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.from, "placement", "", "restore a saved artwork config JSON file")
	fs.StringSliceVarP(&f.assist, "assist", "a", nil, "placement operations to apply in order (reset, fit, center, smart-resize)")
	fs.Float64Var(&f.x, "x", 0, "move the artwork to x, relative to the print area")
	fs.Float64Var(&f.y, "y", 0, "move the artwork to y, relative to the print area")
	fs.Float64Var(&f.scale, "scale", 0, "set the artwork scale")
	fs.Float64Var(&f.rotate, "rotate", 0, "set the rotation in degrees")
	fs.StringVar(&f.mode, "bounds", "", "bounds check mode: axis-aligned or rotated (default from config)")
}

func (c *CLI) boundsMode(override string) (bounds.Mode, error) {
	if override != "" {
		return bounds.ParseMode(override)
	}
	cfg, err := c.config()
	if err != nil {
		return 0, err
	}
	return cfg.BoundsMode()
}

// place builds a tracker for r, places an artwork of size w x h and
// applies the placement flags as manipulation events.
func (c *CLI) place(cmd *cobra.Command, f *placementFlags, r region.Region, w, h float64) (*tracker.Tracker, error) {
	mode, err := c.boundsMode(f.mode)
	if err != nil {
		return nil, err
	}
	tr, err := tracker.New(r, mode)
	if err != nil {
		return nil, err
	}

	saved := f.saved
	if f.from != "" {
		if saved, err = readConfig(f.from); err != nil {
			return nil, err
		}
	}
	var t artwork.Transform
	if saved != nil {
		t, err = artwork.Rehydrate(*saved, r, w, h)
	} else {
		t, err = artwork.New(r, w, h)
	}
	if err != nil {
		return nil, err
	}
	if _, err := tr.SetArtwork(t); err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("x") || fs.Changed("y") {
		x, y := tr.RelativePosition()
		if fs.Changed("x") {
			x = f.x
		}
		if fs.Changed("y") {
			y = f.y
		}
		cur, _ := tr.Transform()
		moved := cur.AtRelative(r, x, y)
		if _, err := tr.OnUserManipulate(tracker.Move, tracker.Geometry{Left: moved.Left, Top: moved.Top}); err != nil {
			return nil, err
		}
	}
	if fs.Changed("scale") {
		if _, err := tr.OnUserManipulate(tracker.Scale, tracker.Geometry{ScaleX: f.scale, ScaleY: f.scale}); err != nil {
			return nil, err
		}
	}
	if fs.Changed("rotate") {
		if _, err := tr.OnUserManipulate(tracker.Rotate, tracker.Geometry{Rotation: f.rotate}); err != nil {
			return nil, err
		}
	}
	for _, name := range f.assist {
		op, err := assist.ParseOp(name)
		if err != nil {
			return nil, err
		}
		if _, err := tr.Apply(op); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

func readConfig(path string) (*artwork.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeLoadFailed, err, "read placement")
	}
	cfg, err := artwork.DecodeConfig(data)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%s holds no placement", path)
	}
	return cfg, nil
}

// writeJSON prints v indented to stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
