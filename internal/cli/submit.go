package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/pipeline"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/variants"
)

type submitOpts struct {
	region      regionFlags
	placement   placementFlags
	title       string
	description string
	colors      []string
	sizes       []string
	primary     string
	editID      string
	artworkURL  string
	format      string
	skipPrint   bool
	skipMockups bool
	noCache     bool
	asJSON      bool
}

func (c *CLI) submitCommand() *cobra.Command {
	var o submitOpts
	cmd := &cobra.Command{
		Use:   "submit [artwork]",
		Short: "Create or update a shop product from a placement",
		Long: `Render and upload the print file, generate one mockup per selected color and
create the shop product. With --edit the existing product is updated
instead, and its saved placement and artwork are reused unless overridden.

Print file and mockup failures are reported as warnings; the product is
still submitted.`,
		Example: `  artfit submit logo.png --product 42 --title "Sunset Tee" --colors Black,White --primary White
  artfit submit --edit 1001 --title "Sunset Tee v2" --assist smart-resize`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := ""
			if len(args) == 1 {
				src = args[0]
			}
			return c.runSubmit(cmd, src, &o)
		},
	}
	o.region.register(cmd)
	o.placement.register(cmd)
	fs := cmd.Flags()
	fs.StringVarP(&o.title, "title", "t", "", "product title")
	fs.StringVar(&o.description, "description", "", "product description")
	fs.StringSliceVar(&o.colors, "colors", nil, `colors to offer, or "all" (default: first available)`)
	fs.StringSliceVar(&o.sizes, "sizes", nil, "sizes to offer (default: all)")
	fs.StringVar(&o.primary, "primary", "", "primary color (default: first selected)")
	fs.StringVar(&o.editID, "edit", "", "update this shop product instead of creating one")
	fs.StringVar(&o.artworkURL, "artwork-url", "", "already uploaded artwork URL (skips the upload)")
	fs.StringVarP(&o.format, "format", "f", "", "print file format: png or webp (default from config)")
	fs.BoolVar(&o.skipPrint, "skip-print-file", false, "do not render a print file")
	fs.BoolVar(&o.skipMockups, "skip-mockups", false, "do not generate mockups")
	fs.BoolVar(&o.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&o.asJSON, "json", false, "print the product request and result as JSON")
	return cmd
}

func (c *CLI) runSubmit(cmd *cobra.Command, src string, o *submitOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}
	b, err := c.openBackend(ctx, o.noCache)
	if err != nil {
		return err
	}
	defer b.Close()

	if o.editID != "" {
		cp, err := b.api.GetClientProduct(ctx, region.ID(o.editID))
		if err != nil {
			return err
		}
		saved, err := cp.Config()
		if err != nil {
			return err
		}
		o.placement.saved = saved
		if o.region.product == "" && o.region.file == "" {
			o.region.product = cp.BaseProductID.String()
		}
		if o.title == "" {
			o.title = cp.Title
		}
		if o.description == "" {
			o.description = cp.Description
		}
		if src == "" && saved != nil {
			src = saved.ArtworkURL
		}
	}
	if src == "" {
		return errs.New(errs.ErrCodeNoArtwork, "an artwork file or URL is required")
	}

	r, p, _, err := o.region.resolve(ctx, b)
	if err != nil {
		return err
	}
	if p == nil {
		return errs.New(errs.ErrCodeInvalidInput, "submitting needs a product (--product, or --region with a product file)")
	}
	art, err := loadArtwork(ctx, b, src)
	if err != nil {
		return err
	}
	w, h := art.size()
	tr, err := c.place(cmd, &o.placement, r, w, h)
	if err != nil {
		return err
	}
	snap := tr.Snapshot()
	if snap.Bounds.Outside {
		printWarning("Artwork extends outside the print area (%s)", snap.Bounds.Edges)
	}

	avail, err := b.api.GetColorAvailability(ctx, p.ID, o.region.refresh)
	if err != nil {
		logger.Warn("color availability unavailable, treating every color as available", "err", err)
		avail = nil
	}
	sel, notes, err := selectVariants(p.Variants, avail, o.colors, o.sizes, o.primary)
	if err != nil {
		return err
	}
	for _, n := range notes {
		printWarning("%s", n)
	}

	artURL := o.artworkURL
	if artURL == "" {
		artURL = art.URL
	}
	if artURL == "" {
		if artURL, err = uploadArtwork(ctx, b.api, filepath.Base(src), art); err != nil {
			return err
		}
	}

	eopts := cfg.Export
	if o.format != "" {
		eopts.Format = export.Format(o.format)
	}
	spin := newSpinner(ctx, fmt.Sprintf("Submitting %s (%d variants)...", o.title, len(sel.Variants())))
	spin.Start()
	res, err := c.newRunner(b.api, b.cache).Submit(ctx, pipeline.Options{
		Title:         o.title,
		Description:   o.description,
		Product:       p,
		Region:        r,
		Transform:     snap.Transform,
		Artwork:       art.Image,
		ArtworkData:   art.Data,
		ArtworkURL:    artURL,
		Variants:      sel.Variants(),
		Availability:  avail,
		PrimaryColor:  sel.Primary(),
		EditProductID: region.ID(o.editID),
		Export:        eopts,
		SkipPrintFile: o.skipPrint,
		SkipMockups:   o.skipMockups,
		Refresh:       o.region.refresh,
		Logger:        logger,
	})
	if err != nil {
		spin.StopWithError("Submit failed")
		return err
	}
	spin.Stop()

	if o.asJSON {
		return writeJSON(cmd, struct {
			Request podapi.ProductRequest `json:"request"`
			Result  *podapi.ProductResult `json:"result"`
		}{res.Request, res.Product})
	}
	printSubmitResult(res)
	return nil
}

func uploadArtwork(ctx context.Context, api *podapi.Client, name string, art *artworkSource) (string, error) {
	spin := newSpinner(ctx, "Uploading artwork...")
	spin.Start()
	up, err := api.UploadArtwork(ctx, name, "image/"+art.Format, art.Data)
	spin.Stop()
	if err != nil {
		return "", err
	}
	return up.Location(), nil
}

// selectVariants builds the variant selection from flag values. Unknown
// colors, sizes and primaries are errors; unavailable colors only produce
// notes.
func selectVariants(all []podapi.Variant, avail podapi.Availability, colors, sizes []string, primary string) (*variants.Selection, []string, error) {
	sel := variants.NewSelection(all, avail)
	var notes []string

	switch {
	case len(colors) == 1 && strings.EqualFold(colors[0], "all"):
		sel.SelectAllColors()
	case len(colors) > 0:
		known := variants.Colors(all)
		sel.ClearColors()
		for _, c := range colors {
			if !slices.Contains(known, c) {
				return nil, nil, errs.New(errs.ErrCodeInvalidInput, "unknown color %q (have %s)", c, strings.Join(known, ", "))
			}
			if slices.Contains(sel.Colors(), c) {
				continue
			}
			if !sel.ToggleColor(c) {
				notes = append(notes, fmt.Sprintf("%s is out of stock and was skipped", c))
			}
		}
	}

	if len(sizes) > 0 {
		known := variants.Sizes(all)
		for _, s := range sizes {
			if !slices.Contains(known, s) {
				return nil, nil, errs.New(errs.ErrCodeInvalidInput, "unknown size %q (have %s)", s, strings.Join(known, ", "))
			}
		}
		for _, s := range known {
			if !slices.Contains(sizes, s) {
				sel.ToggleSize(s)
			}
		}
	}

	if primary != "" && !sel.SetPrimary(primary) {
		return nil, nil, errs.New(errs.ErrCodeInvalidInput, "primary color %q is not a selected, available color", primary)
	}
	if len(sel.Variants()) == 0 {
		return nil, nil, errs.New(errs.ErrCodeInvalidInput, "no variants selected")
	}
	return sel, notes, nil
}

func printSubmitResult(res *pipeline.Result) {
	verb := "Created"
	if res.Mode == pipeline.ModeUpdate {
		verb = "Updated"
	}
	id := ""
	if res.Product != nil {
		id = res.Product.ShopProduct.ID.String()
	}
	printSuccess("%s product %s", verb, StyleValue.Render(id))
	if res.PrintFileURL != "" {
		printKeyValue("Print file", StyleLink.Render(res.PrintFileURL))
	}
	colors := make([]string, 0, len(res.Mockups))
	for c := range res.Mockups {
		colors = append(colors, c)
	}
	slices.Sort(colors)
	for _, c := range colors {
		printKeyValue("Mockup "+c, StyleLink.Render(res.Mockups[c]))
	}
	if len(res.Unavailable) > 0 {
		printDetail("Skipped unavailable colors: %s", strings.Join(res.Unavailable, ", "))
	}
	for _, w := range res.Warnings {
		printWarning("%s", w)
	}
	printStats([]string{
		fmt.Sprintf("export %s", res.Stats.ExportTime.Round(time.Millisecond)),
		fmt.Sprintf("upload %s", res.Stats.UploadTime.Round(time.Millisecond)),
		fmt.Sprintf("mockups %s", res.Stats.MockupTime.Round(time.Millisecond)),
		fmt.Sprintf("submit %s", res.Stats.SubmitTime.Round(time.Millisecond)),
	}, res.CacheInfo.PrintFileHit)
}
