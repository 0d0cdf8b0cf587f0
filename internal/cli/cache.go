package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/cache"
	"github.com/matzehuels/burrow/pkg/config"
	errs "github.com/matzehuels/burrow/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the solution cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached solutions and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := newPrinter(cmd)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend == config.BackendNone {
				p.info("Cache is disabled")
				return nil
			}
			ch, err := newCache(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				return errs.New(errs.ErrCodeUnsupported, "%s cache cannot be cleared", cfg.Cache.Backend)
			}
			count, err := clearer.Clear(ctx)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			p.success("Cleared %d cached entries", count)
			switch cfg.Cache.Backend {
			case config.BackendRedis:
				p.detail("Redis: %s (prefix %s)", cfg.Cache.RedisAddr, cfg.Cache.Prefix)
			default:
				if fc, ok := ch.(*cache.FileCache); ok {
					p.detail("Directory: %s", fc.Dir())
				}
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := cfg.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
