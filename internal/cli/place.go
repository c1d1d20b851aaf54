package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/tracker"
)

// placement is the machine-readable output of place.
type placement struct {
	Snapshot      tracker.Snapshot `json:"snapshot"`
	ArtworkConfig artwork.Config   `json:"artworkConfig"`
}

func (c *CLI) placeCommand() *cobra.Command {
	var (
		rf     regionFlags
		pf     placementFlags
		save   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "place <artwork>",
		Short: "Place an artwork in a print area and report its placement",
		Long: `Place an artwork (file or http(s) URL) centered in a print area, then apply
any moves, scaling, rotation and assist operations given as flags. The
resulting placement can be saved and passed to export, preview or submit
with --placement.`,
		Example: `  artfit place logo.png --product 42 --assist fit
  artfit place logo.png --region front.json --x 10 --y 20 --scale 0.5 --save placement.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := c.openBackend(ctx, false)
			if err != nil {
				return err
			}
			defer b.Close()

			r, _, _, err := rf.resolve(ctx, b)
			if err != nil {
				return err
			}
			art, err := loadArtwork(ctx, b, args[0])
			if err != nil {
				return err
			}
			w, h := art.size()
			tr, err := c.place(cmd, &pf, r, w, h)
			if err != nil {
				return err
			}
			out, err := placementOf(tr, art.URL)
			if err != nil {
				return err
			}

			if save != "" {
				data, err := json.MarshalIndent(out.ArtworkConfig, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(save, append(data, '\n'), 0o644); err != nil {
					return err
				}
			}
			if asJSON {
				return writeJSON(cmd, out)
			}

			printRegion(r)
			printPlacement(out.Snapshot)
			if save != "" {
				printFile(save)
				printNextStep("Render the print file", "artfit export "+args[0]+" --placement "+save)
			}
			return nil
		},
	}
	rf.register(cmd)
	pf.register(cmd)
	cmd.Flags().StringVarP(&save, "save", "o", "", "write the artwork config JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot and artwork config as JSON")
	return cmd
}

func placementOf(tr *tracker.Tracker, url string) (placement, error) {
	cfg, err := tr.Config()
	if err != nil {
		return placement{}, err
	}
	cfg.ArtworkURL = url
	return placement{Snapshot: tr.Snapshot(), ArtworkConfig: cfg}, nil
}
