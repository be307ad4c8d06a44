package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagegraph/pkg/cache"
	"github.com/matzehuels/stagegraph/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached graph state, route and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			count, err := clearCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Backend: %s", describeCache(cfg))
			return nil
		},
	}
}

// clearCache opens the configured backend and clears it.
func clearCache(ctx context.Context, cfg config.Config) (int, error) {
	if cfg.Cache.Backend == config.BackendNone {
		return 0, nil
	}
	store, err := cfg.OpenCache(ctx)
	if err != nil {
		return 0, fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	cl, ok := store.(cache.Clearer)
	if !ok {
		return 0, fmt.Errorf("cache backend %q cannot be cleared", cfg.Cache.Backend)
	}
	return cl.Clear(ctx)
}

// describeCache names the cache location for display.
func describeCache(cfg config.Config) string {
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		return fmt.Sprintf("redis://%s/%d (prefix %q)", cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
	case config.BackendNone:
		return "none"
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return "file (unknown directory)"
	}
	return dir
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory or redis location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, describeCache(cfg))
			return nil
		},
	}
}
