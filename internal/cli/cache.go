package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpress/internal/config"
	"github.com/matzehuels/blockpress/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached render output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Cache
			if cfg.Backend != config.BackendFile {
				printInfo("The %s backend has no local entries to clear", cfg.Backend)
				if cfg.Backend == config.BackendRedis {
					printDetail("Entries expire after their TTL; keys start with %q", cfg.Redis.Prefix)
				}
				return nil
			}
			if cfg.Dir == "" {
				return fmt.Errorf("cache directory unknown")
			}

			fc, err := cache.NewFileCache(cfg.Dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			count, err := fc.Entries()
			if err != nil {
				return fmt.Errorf("count entries: %w", err)
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Dir == "" {
				return fmt.Errorf("cache directory unknown")
			}
			fmt.Println(c.Config.Cache.Dir)
			return nil
		},
	}
}
