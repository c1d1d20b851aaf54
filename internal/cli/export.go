package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/pipeline"
)

type exportOpts struct {
	region     regionFlags
	placement  placementFlags
	format     string
	interp     string
	output     string
	upload     bool
	noCache    bool
	showPlaced bool
}

func (c *CLI) exportCommand() *cobra.Command {
	var o exportOpts
	cmd := &cobra.Command{
		Use:   "export <artwork>",
		Short: "Render the 300 DPI print file for a placement",
		Long: `Render the print file for an artwork placed in a print area. The file covers
the print area's physical size at 300 DPI, with the artwork drawn where it
sits on the canvas and everything else transparent.`,
		Example: `  artfit export logo.png --product 42 --placement placement.json
  artfit export logo.png --region front.json --assist fit --format webp -o front.webp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], &o)
		},
	}
	o.region.register(cmd)
	o.placement.register(cmd)
	fs := cmd.Flags()
	fs.StringVarP(&o.format, "format", "f", "", "print file format: png or webp (default from config)")
	fs.StringVar(&o.interp, "interpolation", "", "resampling: catmull-rom, bilinear or nearest")
	fs.StringVarP(&o.output, "output", "o", "", "output file (default print_file_<ms>.<ext>)")
	fs.BoolVar(&o.upload, "upload", false, "upload the print file to the backend")
	fs.BoolVar(&o.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&o.showPlaced, "show-placement", false, "print the placement before rendering")
	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, src string, o *exportOpts) error {
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

	r, _, _, err := o.region.resolve(ctx, b)
	if err != nil {
		return err
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
	if o.showPlaced {
		printPlacement(snap)
	}
	if snap.Bounds.Outside {
		printWarning("Artwork extends outside the print area (%s); the excess is cropped", snap.Bounds.Edges)
	}

	eopts := cfg.Export
	if o.format != "" {
		eopts.Format = export.Format(o.format)
	}
	if o.interp != "" {
		eopts.Interpolation = o.interp
	}

	prog := newProgress(logger)
	spin := newSpinner(ctx, "Rendering print file...")
	spin.Start()
	pf, hit, err := c.newRunner(b.api, b.cache).PrintFileWithCacheInfo(ctx, pipeline.Options{
		Region:      r,
		Transform:   snap.Transform,
		Artwork:     art.Image,
		ArtworkData: art.Data,
		ArtworkURL:  art.URL,
		Export:      eopts,
		Refresh:     o.region.refresh,
		Logger:      logger,
	})
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done("Rendered print file")

	out := o.output
	if out == "" {
		out = pf.Filename(time.Now())
	}
	if err := os.WriteFile(out, pf.Data, 0o644); err != nil {
		return fmt.Errorf("write print file: %w", err)
	}
	printSuccess("Print file %dx%d px", pf.Width, pf.Height)
	printFile(out)
	printStats([]string{
		fmt.Sprintf("print area %dx%d px", pf.PrintWidth, pf.PrintHeight),
		fmt.Sprintf("x%.4g", pf.Multiplier),
		string(pf.Format),
	}, hit)

	if o.upload {
		spin := newSpinner(ctx, "Uploading print file...")
		spin.Start()
		up, err := b.api.UploadArtwork(ctx, filepath.Base(out), pf.ContentType(), pf.Data)
		if err != nil {
			spin.StopWithError("Upload failed")
			return err
		}
		spin.StopWithSuccess("Uploaded print file")
		fmt.Println("  " + StyleLink.Render(up.Location()))
	}
	return nil
}
