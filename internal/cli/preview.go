package cli

import (
	"context"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/preview"
	"github.com/artfit/artfit/pkg/tracker"
)

func (c *CLI) previewCommand() *cobra.Command {
	var (
		rf     regionFlags
		pf     placementFlags
		color  string
		output string
		width  int
		height int
		hide   bool
	)
	cmd := &cobra.Command{
		Use:   "preview [artwork]",
		Short: "Render the configurator canvas as a PNG",
		Long: `Render the canvas the way the configurator shows it: the product photo, the
print area outline (red when the artwork crosses it) and the placed
artwork. Without an artwork only the product and print area are drawn.`,
		Example: `  artfit preview logo.png --product 42 --color Black
  artfit preview --region front.json -o region.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := c.config()
			if err != nil {
				return err
			}
			b, err := c.openBackend(ctx, false)
			if err != nil {
				return err
			}
			defer b.Close()

			r, p, view, err := rf.resolve(ctx, b)
			if err != nil {
				return err
			}
			scene := preview.Scene{Region: r}
			if p != nil && color != "" {
				bg, err := productImage(ctx, b, p, color, view)
				if err != nil {
					logger.Warn("product image unavailable", "color", color, "view", view, "err", err)
				}
				scene.Product = bg
			}
			if len(args) == 1 {
				art, err := loadArtwork(ctx, b, args[0])
				if err != nil {
					return err
				}
				w, h := art.size()
				tr, err := c.place(cmd, &pf, r, w, h)
				if err != nil {
					return err
				}
				scene = sceneOf(tr.Snapshot(), art.Image, scene.Product)
				printPlacement(tr.Snapshot())
			}

			opts := cfg.Canvas
			if width > 0 {
				opts.Width = width
			}
			if height > 0 {
				opts.Height = height
			}
			opts.HideRegion = opts.HideRegion || hide

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := preview.RenderPNG(f, scene, opts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Preview rendered")
			printFile(output)
			return nil
		},
	}
	rf.register(cmd)
	pf.register(cmd)
	fs := cmd.Flags()
	fs.StringVar(&color, "color", "", "draw the product photo for this color")
	fs.StringVarP(&output, "output", "o", "preview.png", "output PNG file")
	fs.IntVar(&width, "width", 0, "canvas width (default from config)")
	fs.IntVar(&height, "height", 0, "canvas height (default from config)")
	fs.BoolVar(&hide, "hide-region", false, "do not outline the print area")
	return cmd
}

func sceneOf(s tracker.Snapshot, art, product image.Image) preview.Scene {
	return preview.Scene{
		Region:    s.Region,
		Transform: s.Transform,
		Bounds:    s.Bounds,
		Artwork:   art,
		Product:   product,
	}
}

// productImage downloads the product photo for color and view.
func productImage(ctx context.Context, b *backend, p *podapi.Product, color, view string) (image.Image, error) {
	url := p.ImageURL(color, view)
	if url == "" {
		return nil, nil
	}
	data, _, err := b.api.Fetch(ctx, url, maxArtworkBytes)
	if err != nil {
		return nil, err
	}
	img, _, err := export.DecodeImage(data)
	return img, err
}
