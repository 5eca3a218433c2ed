package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schedsvg/pkg/cache"
	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/pipeline"
	"github.com/matzehuels/schedsvg/pkg/source"
	"github.com/matzehuels/schedsvg/pkg/style"
)

// buildOpts holds the flags shared by build and serve --rebuild.
type buildOpts struct {
	schedule    string // path or URL of the normalized schedule
	style       string // style file (.json, .toml, .yaml)
	output      string // output directory
	zone        string // IANA zone for dates and times
	formats     string // comma-separated: svg, json
	workers     int    // concurrent groups
	refresh     bool   // ignore cached schedule bodies and sheets
	warnMissing bool   // log every unresolved speaker id
	cache       cacheFlags
}

func defaultBuildOpts() buildOpts {
	return buildOpts{
		output:  defaultOutput,
		zone:    pipeline.DefaultZone,
		formats: pipeline.FormatSVG,
		workers: pipeline.DefaultWorkers,
	}
}

func (o *buildOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.schedule, "schedule", "s", o.schedule, "schedule file or URL (env "+envSchedule+")")
	cmd.Flags().StringVar(&o.style, "style", o.style, "style file: .json, .toml or .yaml (env "+envStyle+")")
	cmd.Flags().StringVarP(&o.output, "output", "o", o.output, "output directory")
	cmd.Flags().StringVar(&o.zone, "zone", o.zone, "time zone for dates and times")
	cmd.Flags().StringVarP(&o.formats, "format", "f", o.formats, "output formats: svg, json (comma-separated)")
	cmd.Flags().IntVar(&o.workers, "workers", o.workers, "groups rendered concurrently")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "bypass cached schedule and sheets")
	cmd.Flags().BoolVar(&o.warnMissing, "warn-missing", false, "log each speaker id that does not resolve")
	o.cache.register(cmd)
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	opts := defaultBuildOpts()

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every (date, room) group as an SVG sheet",
		Long: `Render every (date, room) group of a schedule as an SVG sheet.

The schedule is read from a local file or fetched from a URL. Sessions are
grouped by date and room in the configured time zone, each group is laid out
with the style file and written to <output>/data/svg/<date>-<room>.svg. The
loaded schedule and a meta.json index for the viewer are written alongside.

Sheets are cached locally; unchanged groups are not re-rendered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), opts)
		},
	}

	opts.register(cmd)
	return cmd
}

// runBuild builds with a spinner and prints a summary.
func (c *CLI) runBuild(ctx context.Context, opts buildOpts) error {
	spinner := newSpinnerWithContext(ctx, "Rendering sheets...")
	spinner.Start()

	res, files, err := c.build(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	logger := loggerFromContext(ctx)
	for _, f := range files {
		logger.Debug("wrote", "file", f)
	}

	printSuccess("Built %d sheets", len(res.Sheets))
	printFile(filepath.Join(opts.output, pipeline.DataDir, pipeline.MetaFile))
	printStats(res.Stats.Groups, res.Stats.Sessions, res.CacheInfo.Hits)
	if n := res.Stats.MissingSpeaker; n > 0 && !opts.warnMissing {
		printWarning("%d speaker references did not resolve (--warn-missing lists them)", n)
	}
	printNewline()
	printNextStep("Preview", appName+" serve --output "+opts.output)
	return nil
}

// build loads the inputs, runs the pipeline and writes the output directory.
func (c *CLI) build(ctx context.Context, opts buildOpts) (*pipeline.Result, []string, error) {
	logger := loggerFromContext(ctx)

	ref := envOr(opts.schedule, envSchedule)
	if ref == "" {
		return nil, nil, errors.New(errors.ErrCodeMalformedInput, "no schedule given (use --schedule or %s)", envSchedule)
	}
	stylePath := envOr(opts.style, envStyle)
	if stylePath == "" {
		return nil, nil, errors.New(errors.ErrCodeMalformedInput, "no style given (use --style or %s)", envStyle)
	}

	cfg, err := style.Load(stylePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load style %s: %w", stylePath, err)
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	loaded, err := loadSchedule(ctx, ref, runner.Cache, runner.Keyer, opts.refresh)
	if err != nil {
		return nil, nil, err
	}

	popts := pipeline.Options{
		Zone:    opts.zone,
		Formats: parseFormats(opts.formats),
		Workers: opts.workers,
		Refresh: opts.refresh,
	}
	if opts.warnMissing {
		popts.OnMissingSpeaker = func(sessionID, speakerID string) {
			logger.Warn("unresolved speaker", "session", sessionID, "speaker", speakerID)
		}
	}

	res, err := runner.Execute(ctx, loaded.Document, cfg, popts)
	if err != nil {
		return nil, nil, fmt.Errorf("build: %w", err)
	}
	res.Schedule = loaded.Raw

	prog := newProgress(logger)
	files, err := pipeline.Write(ctx, res, opts.output)
	if err != nil {
		return res, files, fmt.Errorf("write output %s: %w", opts.output, err)
	}
	prog.done("wrote output", "dir", opts.output, "files", len(files))
	return res, files, nil
}

// loadSchedule reads ref through the provider matching its kind.
func loadSchedule(ctx context.Context, ref string, store cache.Cache, keyer cache.Keyer, refresh bool) (*source.Result, error) {
	prog := newProgress(loggerFromContext(ctx))

	res, err := source.Open(ref, source.Options{Cache: store, Keyer: keyer, Refresh: refresh}).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schedule %s: %w", ref, err)
	}
	prog.done("loaded schedule", "sessions", len(res.Document.Sessions), "origin", res.Origin, "cached", res.Cached)
	return res, nil
}
