// Package pipeline turns a schedule document into per-group sheets.
//
// This package implements the group → compose → serialize → write pipeline
// used by the build, serve and groups commands. By centralizing this logic,
// a periodic rebuild in the dev server behaves exactly like a CLI build.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Group: partition sessions by (date, room) in a fixed zone
//  2. Sheets: compose and serialize each group, concurrently, with caching
//  3. Write: store sheets, the schedule and a meta.json under an output dir
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, doc, cfg, pipeline.Options{
//	    Zone:    "Asia/Taipei",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	files, err := pipeline.Write(ctx, result, "dist")
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schedsvg/pkg/cache"
	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/schedule"
	"github.com/matzehuels/schedsvg/pkg/timefmt"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWorkers bounds how many groups are serialized at once.
	DefaultWorkers = 4

	// DefaultZone is the zone dates and times are formatted in.
	DefaultZone = timefmt.DefaultZone
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the run configuration. The style is passed separately
// because it is a validated document of its own.
type Options struct {
	Zone    string   `json:"zone,omitempty"`
	Formats []string `json:"formats,omitempty"`
	Workers int      `json:"workers,omitempty"`
	Refresh bool     `json:"refresh,omitempty"` // recompute cached sheets

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	// OnMissingSpeaker is called for each speaker id that does not resolve.
	// Calls are serialized.
	OnMissingSpeaker func(sessionID, speakerID string) `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	RunID       string
	GeneratedAt time.Time
	Zone        string

	// Dates are ascending; Rooms are in first-seen order.
	Dates []string
	Rooms []string

	// Names lists group names sorted; Sheets is keyed by name.
	Names  []string
	Sheets map[string]*Sheet

	// Document is the schedule the run was built from. Schedule, when set,
	// holds its bytes as loaded and is written through for the viewer.
	Document *schedule.Document
	Schedule []byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Sheet is one group's serialized output.
type Sheet struct {
	Name      string
	File      string // file name stem, safe for any filesystem
	Sessions  int
	Artifacts map[string][]byte // keyed by format
	Cached    bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Sessions       int
	Groups         int
	MissingSpeaker int
	GroupTime      time.Duration
	SheetTime      time.Duration
}

// CacheInfo counts sheet cache hits.
type CacheInfo struct {
	Hits   int
	Misses int
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	seen := make(map[string]bool, len(o.Formats))
	for _, f := range o.Formats {
		if seen[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "format %q listed twice", f)
		}
		seen[f] = true
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	o.validated = true
	return nil
}

// SetDefaults sets default values for unset fields.
func (o *Options) SetDefaults() {
	if o.Zone == "" {
		o.Zone = DefaultZone
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format, styleHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		StyleHash: styleHash,
		Zone:      o.Zone,
	}
}
