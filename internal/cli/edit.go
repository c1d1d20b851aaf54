package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/artfit/artfit/pkg/artwork"
	errs "github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/session"
)

type editOpts struct {
	region   regionFlags
	editID   string
	save     string
	output   string
	boundsBy string
}

func (c *CLI) editCommand() *cobra.Command {
	var o editOpts
	cmd := &cobra.Command{
		Use:   "edit [artwork]",
		Short: "Place an artwork interactively in the terminal",
		Long: `Open the placement editor. Without --product or --region a catalog product
is picked from a list. With --edit the placement of an existing shop product
is restored and its print file (or artwork) is loaded.`,
		Example: `  artfit edit logo.png --product 42
  artfit edit --edit 1001`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := ""
			if len(args) == 1 {
				src = args[0]
			}
			return c.runEdit(cmd.Context(), src, &o)
		},
	}
	o.region.register(cmd)
	fs := cmd.Flags()
	fs.StringVar(&o.editID, "edit", "", "restore the placement of this shop product")
	fs.StringVar(&o.save, "save", "placement.json", "file the w key writes the placement to")
	fs.StringVarP(&o.output, "output", "o", "", "directory the e key writes print files to (default: current)")
	fs.StringVar(&o.boundsBy, "bounds", "", "bounds check mode: axis-aligned or rotated (default from config)")
	return cmd
}

func (c *CLI) runEdit(ctx context.Context, src string, o *editOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}
	mode, err := c.boundsMode(o.boundsBy)
	if err != nil {
		return err
	}
	b, err := c.openBackend(ctx, false)
	if err != nil {
		return err
	}
	defer b.Close()

	var restore *artwork.Config
	if o.editID != "" {
		cp, err := b.api.GetClientProduct(ctx, region.ID(o.editID))
		if err != nil {
			return err
		}
		if restore, err = cp.Config(); err != nil {
			return err
		}
		if o.region.product == "" && o.region.file == "" {
			o.region.product = cp.BaseProductID.String()
		}
		printInfo("Editing %s", StyleValue.Render(cp.Title))
	}

	if o.region.product == "" && o.region.file == "" {
		p, err := pickProduct(ctx, b)
		if err != nil || p == nil {
			return err
		}
		o.region.product = p.ID.String()
	}

	r, p, view, err := o.region.resolve(ctx, b)
	if err != nil && p == nil {
		return err
	}

	sess := session.New(uuid.NewString(), mode, logger)
	if p != nil {
		sess.SetPendingConfig(restore)
		if restore, err = sess.AttachProduct(p, view); err != nil {
			return err
		}
	} else if err := sess.SetRegion(r, view); err != nil {
		return err
	}

	if src == "" && restore != nil {
		src = restore.ImageURL()
	}
	if src == "" {
		return errs.New(errs.ErrCodeNoArtwork, "no artwork given and the product has none to restore")
	}

	eopts := cfg.Export
	deps := editorDeps{
		LoadImage: func(ctx context.Context, src string) (image.Image, error) {
			art, err := loadArtwork(ctx, b, src)
			if err != nil {
				return nil, err
			}
			return art.Image, nil
		},
		Export: func(ctx context.Context, s *session.Session) (string, error) {
			return exportSession(ctx, s, eopts, o.output)
		},
		Save: func(ac artwork.Config) (string, error) {
			data, err := json.MarshalIndent(ac, "", "  ")
			if err != nil {
				return "", err
			}
			if err := os.WriteFile(o.save, append(data, '\n'), 0o644); err != nil {
				return "", err
			}
			return "Saved placement to " + o.save, nil
		},
	}

	m := NewEditorModel(ctx, sess, p, src, restore, deps).
		WithCanvas(float64(cfg.Canvas.Width), float64(cfg.Canvas.Height))
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	em, ok := final.(EditorModel)
	if !ok {
		return nil
	}
	snap, _, err := em.Result()
	if err != nil {
		printDetail("No placement made")
		return nil
	}
	printPlacement(snap)
	for _, w := range sess.Warnings() {
		printWarning("%s", w)
	}
	return nil
}

// pickProduct lists the catalog and lets the user choose. It returns nil
// when nothing was chosen.
func pickProduct(ctx context.Context, b *backend) (*podapi.Product, error) {
	spin := newSpinner(ctx, "Loading catalog...")
	spin.Start()
	products, err := b.api.GetProducts(ctx, false)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errs.New(errs.ErrCodeNotFound, "the catalog is empty")
	}
	final, err := tea.NewProgram(NewProductListModel(products)).Run()
	if err != nil {
		return nil, err
	}
	pm, ok := final.(ProductListModel)
	if !ok || pm.Selected == nil {
		printDetail("No product selected")
		return nil, nil
	}
	return pm.Selected, nil
}

// exportSession writes the session's print file into dir.
func exportSession(ctx context.Context, s *session.Session, opts export.Options, dir string) (string, error) {
	pf, err := s.Export(ctx, nil, opts)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, pf.Filename(time.Now()))
	if err := os.WriteFile(path, pf.Data, 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("Wrote %dx%d print file %s", pf.Width, pf.Height, path), nil
}
