package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schedsvg/pkg/cache"
	"github.com/matzehuels/schedsvg/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the sheet and schedule cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached sheets and schedule bodies",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, where, err := clearCache(cmd.Context(), cacheFlags{url: url})
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Location: %s", where)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "cache-url", "", "redis URL of a shared cache (env "+envCacheURL+")")
	return cmd
}

// clearCache empties the cache selected by flags and reports where it lives.
func clearCache(ctx context.Context, flags cacheFlags) (int, string, error) {
	store, err := newCache(ctx, flags)
	if err != nil {
		return 0, "", err
	}
	defer store.Close()

	where := envOr(flags.url, envCacheURL)
	if fc, ok := store.(*cache.FileCache); ok {
		where = fc.Dir()
	}

	clearer, ok := store.(cache.Clearer)
	if !ok {
		return 0, where, errors.New(errors.ErrCodeUnsupported, "cache %T cannot be cleared", store)
	}
	n, err := clearer.Clear(ctx)
	if stderrors.Is(err, cache.ErrDisabled) {
		return 0, where, errors.New(errors.ErrCodeUnsupported, "caching is disabled, nothing to clear")
	}
	if err != nil {
		return n, where, fmt.Errorf("clear cache: %w", err)
	}
	return n, where, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the local cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(uiOut, dir)
			return nil
		},
	}
}
