package cli

import (
	"bytes"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/artfit/artfit/pkg/config"
)

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Long: `Manage the artfit configuration file.

The file is TOML and lives at $XDG_CONFIG_HOME/artfit/config.toml unless
--config says otherwise. Values may reference environment variables as
${NAME}; ARTFIT_API_URL, ARTFIT_SHOP_TOKEN and ARTFIT_REDIS_ADDR override
the file.`,
	}
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.loader()
			if err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if l.Exists() {
				fmt.Fprintf(out, "# %s\n\n", l.Path())
			} else {
				fmt.Fprintf(out, "# defaults (no file at %s)\n\n", l.Path())
			}

			shown := *cfg
			shown.API.ShopToken = maskSecret(shown.API.ShopToken)
			shown.Redis.Password = maskSecret(shown.Redis.Password)
			var buf bytes.Buffer
			if err := toml.NewEncoder(&buf).Encode(shown); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			out.Write(buf.Bytes())

			fmt.Fprintln(out, "\n# environment")
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, ev := range []struct {
				key, value string
			}{
				{config.EnvAPIURL, os.Getenv(config.EnvAPIURL)},
				{config.EnvShopToken, maskSecret(os.Getenv(config.EnvShopToken))},
				{config.EnvRedisAddr, os.Getenv(config.EnvRedisAddr)},
			} {
				value := ev.value
				if value == "" {
					value = "(unset)"
				}
				fmt.Fprintf(w, "# %s\t%s\n", ev.key, value)
			}
			return w.Flush()
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.loader()
			if err != nil {
				return err
			}
			if err := l.Init(force); err != nil {
				return err
			}
			printSuccess("Wrote default configuration")
			printFile(l.Path())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.loader()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), l.Path())
			return nil
		},
	}
}

// maskSecret keeps the first four characters of a secret.
func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	}
	return s[:4] + "****"
}
