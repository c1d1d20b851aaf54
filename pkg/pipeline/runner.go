package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/cache"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/integrations"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/observability"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/variants"
)

// API is the part of the backend a submission talks to.
// *podapi.Client implements it.
type API interface {
	UploadArtwork(ctx context.Context, filename, contentType string, data []byte) (*podapi.UploadResult, error)
	GenerateMockup(ctx context.Context, req podapi.MockupRequest) (*podapi.MockupResult, error)
	CreateProduct(ctx context.Context, req podapi.ProductRequest) (*podapi.ProductResult, error)
	UpdateProduct(ctx context.Context, id region.ID, req podapi.ProductRequest) (*podapi.ProductResult, error)
}

// Runner executes submissions with print-file caching.
//
// The Runner holds no per-submission state; one Runner can serve
// concurrent submissions.
type Runner struct {
	API    API
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	now func() time.Time
}

// NewRunner creates a runner. A nil cache disables print-file caching, a
// nil keyer uses the DefaultKeyer and a nil logger uses log.Default.
func NewRunner(api API, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		API:    api,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		now:    time.Now,
	}
}

// Submit runs print file, upload, mockups and product stages.
func (r *Runner) Submit(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	start := time.Now()
	res := &Result{Mode: opts.Mode(), Mockups: make(map[string]string)}

	cfg := artwork.ConfigOf(*opts.Transform, opts.Region)
	cfg.ArtworkURL = opts.ArtworkURL

	// Stage 1+2: print file
	if !opts.SkipPrintFile {
		r.printFileStage(ctx, opts, res)
	}
	if res.PrintFileURL != "" {
		cfg.PrintFileURL = res.PrintFileURL
	}

	// Stage 3: mockups
	if !opts.SkipMockups {
		mockStart := time.Now()
		r.mockupStage(ctx, opts, cfg, res)
		res.Stats.MockupTime = time.Since(mockStart)
		opts.Logger.Info("generated mockups",
			"ok", len(res.Mockups),
			"failed", len(res.Failed),
			"unavailable", len(res.Unavailable),
			"duration", res.Stats.MockupTime)
	}

	// Stage 4: product
	res.Request = buildRequest(opts, cfg, res)
	submitStart := time.Now()
	var (
		out *podapi.ProductResult
		err error
	)
	if opts.EditProductID != "" {
		out, err = r.API.UpdateProduct(ctx, opts.EditProductID, res.Request)
	} else {
		out, err = r.API.CreateProduct(ctx, res.Request)
	}
	res.Stats.SubmitTime = time.Since(submitStart)
	observability.Submit().OnSubmitComplete(ctx, res.Mode, len(opts.Variants), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(integrations.ErrorCode(err), err, "%s product", res.Mode)
	}
	res.Product = out

	opts.Logger.Info("submitted product",
		"mode", res.Mode,
		"id", out.ShopProduct.ID,
		"variants", len(opts.Variants),
		"duration", time.Since(start))
	return res, nil
}

func (r *Runner) printFileStage(ctx context.Context, opts Options, res *Result) {
	if opts.Artwork == nil {
		res.warn(opts.Logger, "print file skipped", errors.New(errors.ErrCodeNoArtwork, "artwork image not loaded"))
		return
	}
	label := opts.Region.String()
	observability.Submit().OnExportStart(ctx, label)

	exportStart := time.Now()
	pf, hit, err := r.PrintFileWithCacheInfo(ctx, opts)
	res.Stats.ExportTime = time.Since(exportStart)
	size := 0
	if pf != nil {
		size = len(pf.Data)
	}
	observability.Submit().OnExportComplete(ctx, label, size, res.Stats.ExportTime, err)
	if err != nil {
		res.warn(opts.Logger, "print file export failed", err)
		return
	}
	res.PrintFile = pf
	res.CacheInfo.PrintFileHit = hit
	opts.Logger.Info("rendered print file",
		"size", size,
		"pixels", [2]int{pf.Width, pf.Height},
		"cached", hit,
		"duration", res.Stats.ExportTime)

	uploadStart := time.Now()
	up, err := r.API.UploadArtwork(ctx, pf.Filename(r.clock()), pf.ContentType(), pf.Data)
	res.Stats.UploadTime = time.Since(uploadStart)
	if err != nil {
		res.warn(opts.Logger, "print file upload failed", err)
		return
	}
	res.PrintFileURL = up.Location()
}

// PrintFileWithCacheInfo renders the print file, consulting the cache
// first unless opts.Refresh is set. Only Region, Transform, Artwork and
// Export are required. The cache is keyed by ArtworkData, or ArtworkURL
// when there is no data; with neither the print file is never cached.
func (r *Runner) PrintFileWithCacheInfo(ctx context.Context, opts Options) (*export.Result, bool, error) {
	if err := opts.validatePlacement(); err != nil {
		return nil, false, err
	}
	if opts.Artwork == nil {
		return nil, false, errors.New(errors.ErrCodeNoArtwork, "artwork image not loaded")
	}
	r.applyLogger(&opts)

	src := opts.ArtworkData
	if len(src) == 0 {
		src = []byte(opts.ArtworkURL)
	}
	var key string
	if len(src) > 0 {
		key = r.Keyer.PrintFileKey(cache.Hash(src), cache.PrintFileKeyOpts{
			Region:        opts.Region,
			Placement:     opts.Transform,
			Format:        string(opts.Export.Format),
			Interpolation: opts.Export.Interpolation,
			DPI:           opts.Export.DPI,
		})
	} else {
		opts.Logger.Debug("print file not cached: artwork has no data or URL")
	}

	if key != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached export.Result
			if err := json.Unmarshal(data, &cached); err == nil && len(cached.Data) > 0 {
				return &cached, true, nil
			}
		}
	}

	eopts := opts.Export
	eopts.Logger = opts.Logger
	pf, err := export.Export(ctx, opts.Region, opts.Transform, opts.Artwork, eopts)
	if err != nil {
		return nil, false, err
	}
	if key == "" {
		return pf, false, nil
	}
	if data, err := json.Marshal(pf); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLPrintFile)
	}
	return pf, false, nil
}

// PrintFile is PrintFileWithCacheInfo without the hit flag.
func (r *Runner) PrintFile(ctx context.Context, opts Options) (*export.Result, error) {
	pf, _, err := r.PrintFileWithCacheInfo(ctx, opts)
	return pf, err
}

func (r *Runner) mockupStage(ctx context.Context, opts Options, cfg artwork.Config, res *Result) {
	for _, color := range variants.Colors(opts.Variants) {
		if err := ctx.Err(); err != nil {
			res.warn(opts.Logger, "mockups cancelled", err)
			return
		}
		if !opts.Availability.Available(color) {
			res.Unavailable = append(res.Unavailable, color)
			continue
		}
		v := variants.FirstOfColor(opts.Variants, color)
		start := time.Now()
		out, err := r.API.GenerateMockup(ctx, podapi.MockupRequest{
			ProductID:     opts.Product.ID,
			VariantID:     v.ID,
			PrintAreaID:   opts.Region.ID,
			ArtworkURL:    opts.ArtworkURL,
			ArtworkConfig: cfg,
		})
		if err == nil && out.MockupURL == "" {
			err = errors.New(errors.ErrCodeMockupFailed, "no mockup URL returned")
		}
		observability.Submit().OnMockupComplete(ctx, color, time.Since(start), err)
		if err != nil {
			opts.Logger.Warn("mockup failed", "color", color, "err", err)
			res.Failed = append(res.Failed, color)
			continue
		}
		res.Mockups[color] = out.MockupURL
	}
}

func buildRequest(opts Options, cfg artwork.Config, res *Result) podapi.ProductRequest {
	req := podapi.ProductRequest{
		Title:            opts.Title,
		Description:      opts.Description,
		BaseProductID:    opts.Product.ID,
		SelectedVariants: opts.Variants,
		ColorMockups:     res.Mockups,
		ArtworkConfig:    cfg,
		BasePrice:        opts.Product.BasePrice,
	}
	if opts.PrimaryColor != "" {
		primary := opts.PrimaryColor
		req.PrimaryColor = &primary
	}
	if res.PrintFileURL != "" {
		url := res.PrintFileURL
		req.PrintFileURL = &url
	}
	return req
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
