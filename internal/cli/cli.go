package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schedsvg/pkg/buildinfo"
	"github.com/matzehuels/schedsvg/pkg/cache"
	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "schedsvg"

	// defaultOutput is where build writes and serve reads.
	defaultOutput = "dist"
)

// Environment variables consulted when the matching flag is empty.
const (
	envSchedule = "SCHEDSVG_SCHEDULE"
	envStyle    = "SCHEDSVG_STYLE"
	envCacheURL = "SCHEDSVG_CACHE_URL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          appName,
		Short:        "schedsvg renders a conference schedule as SVG sheets",
		Long:         `schedsvg groups conference sessions by date and room and renders every group as an SVG sheet, laid out by a declarative style file.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(levelFor(verbose))
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.groupsCommand())
	root.AddCommand(c.styleCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the artifact cache backend.
type cacheFlags struct {
	noCache bool
	url     string // redis://... ; empty means the local file cache
	scope   string // key prefix, for several schedules sharing one cache
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.url, "cache-url", "", "redis URL for a shared cache (env "+envCacheURL+")")
	cmd.Flags().StringVar(&f.scope, "cache-scope", "", "prefix for cache keys, e.g. the conference name")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, flags cacheFlags) (*pipeline.Runner, error) {
	store, err := newCache(ctx, flags)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, newKeyer(flags), loggerFromContext(ctx)), nil
}

// newKeyer prefixes keys with the user's scope and the build version.
func newKeyer(flags cacheFlags) cache.Keyer {
	prefix := buildinfo.CacheScope() + ":"
	if flags.scope != "" {
		prefix = flags.scope + ":" + prefix
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), prefix)
}

func newCache(ctx context.Context, flags cacheFlags) (cache.Cache, error) {
	if flags.noCache {
		return cache.NewNullCache(), nil
	}
	if url := envOr(flags.url, envCacheURL); url != "" {
		if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
			return nil, errors.New(errors.ErrCodeUnsupported, "cache url %q: only redis:// and rediss:// are supported", url)
		}
		return cache.NewRedisCache(ctx, url)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/schedsvg/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// envOr returns v, or the named environment variable when v is empty.
func envOr(v, env string) string {
	if v != "" {
		return v
	}
	return os.Getenv(env)
}
