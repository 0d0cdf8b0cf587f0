package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/burrow/pkg/config"
	errs "github.com/matzehuels/burrow/pkg/errors"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the configuration file",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return encodeConfig(cmd.OutOrStdout(), cfg, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "toml", "output format: toml, yaml")

	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			switch {
			case len(args) == 1:
				path = args[0]
			case c.configPath != "":
				path = c.configPath
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errs.New(errs.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().Save(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			p := newPrinter(cmd)
			p.success("Wrote default configuration")
			p.file(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// encodeConfig writes cfg to w as TOML or YAML.
func encodeConfig(w io.Writer, cfg config.Config, format string) error {
	switch format {
	case "toml":
		return toml.NewEncoder(w).Encode(cfg)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unsupported config format %q (want toml or yaml)", format)
	}
}
