package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/schedsvg/pkg/cache"
	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/observability"
	"github.com/matzehuels/schedsvg/pkg/render"
	"github.com/matzehuels/schedsvg/pkg/schedule"
	"github.com/matzehuels/schedsvg/pkg/style"
	"github.com/matzehuels/schedsvg/pkg/timefmt"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, nothing is logged.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute groups doc's sessions and produces one sheet per group.
// Invalid input (style, zone, timestamps) fails before any sheet is built.
func (r *Runner) Execute(ctx context.Context, doc *schedule.Document, cfg *style.Config, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidSchedule, "schedule is nil")
	}

	f, err := timefmt.New(opts.Zone)
	if err != nil {
		return nil, err
	}

	// Unresolved speakers are reported per group before the cache lookup,
	// so warm and cold runs report the same ids.
	var (
		missingMu sync.Mutex
		missing   int
	)
	report := func(sessionID, speakerID string) {
		missingMu.Lock()
		defer missingMu.Unlock()
		missing++
		observability.Pipeline().OnMissingSpeaker(ctx, sessionID, speakerID)
		if opts.OnMissingSpeaker != nil {
			opts.OnMissingSpeaker(sessionID, speakerID)
		}
	}
	composer, err := render.NewComposer(cfg, f)
	if err != nil {
		return nil, fmt.Errorf("style: %w", err)
	}

	result := &Result{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Zone:        f.Zone(),
		Document:    doc,
		Sheets:      make(map[string]*Sheet),
	}

	// Stage 1: Group
	groupStart := time.Now()
	groups, err := r.Group(ctx, doc.Sessions, f)
	if err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}
	result.Dates, err = schedule.CollectDates(doc.Sessions, f)
	if err != nil {
		return nil, fmt.Errorf("collect dates: %w", err)
	}
	result.Rooms = schedule.CollectRooms(doc.Sessions)
	result.Names = schedule.GroupNames(groups)
	result.Stats.Sessions = len(doc.Sessions)
	result.Stats.Groups = len(groups)
	result.Stats.GroupTime = time.Since(groupStart)

	r.Logger.Info("grouped sessions",
		"sessions", len(doc.Sessions),
		"groups", len(groups),
		"dates", len(result.Dates),
		"rooms", len(result.Rooms))

	if err := uniqueFiles(result.Names); err != nil {
		return nil, err
	}

	// Stage 2: Sheets
	styleHash, err := cache.HashJSON(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash style: %w", err)
	}
	roster := doc.Roster()

	sheetStart := time.Now()
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, name := range result.Names {
		sessions := groups[name]
		g.Go(func() error {
			sheet, err := r.sheet(gctx, composer, name, sessions, roster, styleHash, opts, report)
			if err != nil {
				return fmt.Errorf("sheet %s: %w", name, err)
			}
			mu.Lock()
			defer mu.Unlock()
			result.Sheets[name] = sheet
			if sheet.Cached {
				result.CacheInfo.Hits++
			} else {
				result.CacheInfo.Misses++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.Stats.SheetTime = time.Since(sheetStart)
	result.Stats.MissingSpeaker = missing

	r.Logger.Info("rendered sheets",
		"groups", len(result.Sheets),
		"formats", opts.Formats,
		"cached", result.CacheInfo.Hits,
		"cache", cache.Enabled(r.Cache),
		"duration", result.Stats.SheetTime)
	if missing > 0 {
		r.Logger.Debug("dropped unresolved speakers", "count", missing)
	}

	return result, nil
}

// Group partitions sessions and reports the outcome to the pipeline hooks.
func (r *Runner) Group(ctx context.Context, sessions []schedule.Session, f *timefmt.Formatter) (map[string][]schedule.Session, error) {
	start := time.Now()
	groups, err := schedule.GroupSessions(sessions, f)
	observability.Pipeline().OnGroupComplete(ctx, len(sessions), len(groups), time.Since(start), err)
	return groups, err
}

// sheet returns one group's artifacts, from cache when every requested
// format is cached. Unresolved speaker ids go to report either way.
func (r *Runner) sheet(ctx context.Context, c *render.Composer, name string, sessions []schedule.Session,
	roster schedule.Roster, styleHash string, opts Options, report func(sessionID, speakerID string)) (sheet *Sheet, err error) {
	start := time.Now()
	sheet = &Sheet{
		Name:     name,
		File:     errors.SafeFilename(name),
		Sessions: len(sessions),
	}
	defer func() {
		observability.Pipeline().OnSheetComplete(ctx, name, len(sessions), sheet != nil && sheet.Cached, time.Since(start), err)
	}()

	reportMissing(roster, sessions, report)

	groupHash, err := cache.HashJSON(struct {
		Sessions []schedule.Session `json:"sessions"`
		Speakers schedule.Roster    `json:"speakers"`
	}{sessions, roster.Subset(sessions)})
	if err != nil {
		return nil, fmt.Errorf("hash group: %w", err)
	}

	keys := make(map[string]string, len(opts.Formats))
	for _, format := range opts.Formats {
		keys[format] = r.Keyer.ArtifactKey(groupHash, opts.ArtifactKeyOpts(format, styleHash))
	}

	if !opts.Refresh && cache.Enabled(r.Cache) {
		if artifacts, ok := r.cached(ctx, keys); ok {
			observability.Cache().OnCacheHit(ctx, "artifact")
			sheet.Artifacts = artifacts
			sheet.Cached = true
			return sheet, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, err := c.Sheet(roster, sessions)
	if err != nil {
		return nil, err
	}
	artifacts, err := Serialize(tree, opts.Formats)
	if err != nil {
		return nil, err
	}
	for format, data := range artifacts {
		if err := r.Cache.Set(ctx, keys[format], data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "group", name, "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	sheet.Artifacts = artifacts

	opts.Logger.Debug("composed sheet", "group", name, "rows", len(sessions), "duration", time.Since(start))
	return sheet, nil
}

// reportMissing passes every speaker id of sessions that the roster does not
// resolve to report, in row order.
func reportMissing(roster schedule.Roster, sessions []schedule.Session, report func(sessionID, speakerID string)) {
	for _, s := range sessions {
		_, missing := roster.Resolve(s.Speakers)
		for _, id := range missing {
			report(s.ID, id)
		}
	}
}

func (r *Runner) cached(ctx context.Context, keys map[string]string) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(keys))
	for format, key := range keys {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			return nil, false
		}
		artifacts[format] = data
	}
	return artifacts, true
}

// uniqueFiles rejects group names that map to the same file name.
func uniqueFiles(names []string) error {
	seen := make(map[string]string, len(names))
	for _, name := range names {
		file := errors.SafeFilename(name)
		if other, ok := seen[file]; ok {
			return errors.New(errors.ErrCodeInvalidPath, "groups %q and %q both map to file %q", other, name, file)
		}
		seen[file] = name
	}
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
