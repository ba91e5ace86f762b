package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configCommand creates the config command that prints the effective
// simulation configuration.
func (c *CLI) configCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective simulation configuration as TOML",
		Long: `Print the effective simulation configuration as TOML.

Without --config the built-in defaults are printed, which makes a good
starting point for a config file:

  mosaic config > mosaic.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			data, err := cfg.EncodeTOML()
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file to overlay on the defaults")

	return cmd
}
