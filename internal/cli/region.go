package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func (c *CLI) regionCommand() *cobra.Command {
	var (
		rf     regionFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "region",
		Short: "Resolve a print area and show its print file geometry",
		Example: `  artfit region --product 42 --view back
  artfit region --region testdata/front.json --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := c.openBackend(ctx, false)
			if err != nil {
				return err
			}
			defer b.Close()

			r, p, view, err := rf.resolve(ctx, b)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, r)
			}
			if p != nil {
				printKeyValue("Product", p.Title+" ("+p.ID.String()+")")
				printKeyValue("Views", viewList(p.Views(), view))
			}
			printRegion(r)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the resolved region as JSON")
	return cmd
}

// viewList joins views, marking the selected one.
func viewList(views []string, selected string) string {
	out := make([]string, len(views))
	for i, v := range views {
		if v == selected {
			v = StyleTitle.Render(v)
		}
		out[i] = v
	}
	return strings.Join(out, ", ")
}

