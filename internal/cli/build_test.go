package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/pipeline"
	"github.com/matzehuels/schedsvg/pkg/style"
)

const testSchedule = `{
  "sessions": [
    {"id": "a2", "room": "R1", "start": "2025-08-01T10:00+08:00", "speakers": ["p1"],
     "zh": {"title": "第二場"}, "en": {"title": "Second"}},
    {"id": "a1", "room": "R1", "start": "2025-08-01T09:00+08:00", "speakers": ["p1", "ghost"],
     "zh": {"title": "開場"}, "en": {"title": "Opening"}},
    {"id": "b1", "room": "R2", "start": "2025-08-02T13:30+08:00", "speakers": [],
     "zh": {"title": "閉幕"}, "en": {"title": "Closing"}}
  ],
  "speakers": [
    {"id": "p1", "zh": {"name": "王小明"}, "en": {"name": "Ming"}}
  ]
}`

// testInputs writes a schedule and a style into a temp dir.
func testInputs(t *testing.T) (schedulePath, stylePath string) {
	t.Helper()
	dir := t.TempDir()
	schedulePath = filepath.Join(dir, "schedule.json")
	if err := os.WriteFile(schedulePath, []byte(testSchedule), 0o644); err != nil {
		t.Fatal(err)
	}
	stylePath = filepath.Join(dir, "style.toml")
	if err := style.Save(stylePath, style.Example()); err != nil {
		t.Fatal(err)
	}
	return schedulePath, stylePath
}

func testContext() context.Context {
	return withLogger(context.Background(), newLogger(io.Discard, log.DebugLevel))
}

// captureUI redirects user-facing output for the duration of the test.
func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldUI, oldSpinner := uiOut, spinnerOut
	uiOut, spinnerOut = &buf, io.Discard
	t.Cleanup(func() { uiOut, spinnerOut = oldUI, oldSpinner })
	return &buf
}

func TestBuild(t *testing.T) {
	schedulePath, stylePath := testInputs(t)
	out := t.TempDir()

	opts := defaultBuildOpts()
	opts.schedule = schedulePath
	opts.style = stylePath
	opts.output = out
	opts.formats = "svg,json"
	opts.cache = cacheFlags{noCache: true}

	c := New(io.Discard, LogInfo)
	res, files, err := c.build(testContext(), opts)
	if err != nil {
		t.Fatalf("build() error: %v", err)
	}

	if res.Stats.Groups != 2 || res.Stats.MissingSpeaker != 1 {
		t.Errorf("stats = %+v, want 2 groups and 1 missing speaker", res.Stats)
	}
	// schedule.json, 2 groups x 2 formats, meta.json
	if len(files) != 6 {
		t.Errorf("wrote %d files, want 6: %v", len(files), files)
	}

	for _, rel := range []string{
		"data/schedule.json",
		"data/meta.json",
		"data/svg/2025-08-01-R1.svg",
		"data/svg/2025-08-01-R1.json",
		"data/svg/2025-08-02-R2.svg",
	} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(out, "data", "schedule.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != testSchedule {
		t.Error("schedule.json should hold the loaded bytes unchanged")
	}

	var meta pipeline.Meta
	data, err := os.ReadFile(filepath.Join(out, "data", "meta.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("meta.json: %v", err)
	}
	if len(meta.Dates) != 2 || len(meta.Rooms) != 2 || len(meta.Groups) != 2 {
		t.Errorf("meta = %+v", meta)
	}

	svg, err := os.ReadFile(filepath.Join(out, "data", "svg", "2025-08-01-R1.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "王小明") || strings.Contains(string(svg), "ghost") {
		t.Error("svg should list resolved speakers only")
	}
}

func TestBuildEnvFallback(t *testing.T) {
	schedulePath, stylePath := testInputs(t)
	t.Setenv(envSchedule, schedulePath)
	t.Setenv(envStyle, stylePath)

	opts := defaultBuildOpts()
	opts.output = t.TempDir()
	opts.cache = cacheFlags{noCache: true}

	c := New(io.Discard, LogInfo)
	if _, _, err := c.build(testContext(), opts); err != nil {
		t.Fatalf("build() with env inputs error: %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	schedulePath, stylePath := testInputs(t)
	t.Setenv(envSchedule, "")
	t.Setenv(envStyle, "")

	badStyle := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(badStyle, []byte(`{"width": 100}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		schedule string
		style    string
		zone     string
		formats  string
		code     errors.Code
	}{
		{"no schedule", "", stylePath, "", "svg", errors.ErrCodeMalformedInput},
		{"no style", schedulePath, "", "", "svg", errors.ErrCodeMalformedInput},
		{"missing schedule file", filepath.Join(t.TempDir(), "nope.json"), stylePath, "", "svg", errors.ErrCodeFileNotFound},
		{"invalid style", schedulePath, badStyle, "", "svg", errors.ErrCodeInvalidStyle},
		{"bad zone", schedulePath, stylePath, "Mars/Olympus", "svg", errors.ErrCodeInvalidZone},
		{"bad format", schedulePath, stylePath, "", "png", errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			opts := defaultBuildOpts()
			opts.schedule = tt.schedule
			opts.style = tt.style
			opts.zone = tt.zone
			opts.formats = tt.formats
			opts.output = out
			opts.cache = cacheFlags{noCache: true}

			c := New(io.Discard, LogInfo)
			_, _, err := c.build(testContext(), opts)
			if !errors.Is(err, tt.code) {
				t.Fatalf("build() error = %v, want code %s", err, tt.code)
			}
			if _, err := os.Stat(filepath.Join(out, "data", "meta.json")); err == nil {
				t.Error("a failed build should not write meta.json")
			}
		})
	}
}

func TestRunBuildSummary(t *testing.T) {
	buf := captureUI(t)
	schedulePath, stylePath := testInputs(t)

	opts := defaultBuildOpts()
	opts.schedule = schedulePath
	opts.style = stylePath
	opts.output = t.TempDir()
	opts.cache = cacheFlags{noCache: true}

	c := New(io.Discard, LogInfo)
	if err := c.runBuild(testContext(), opts); err != nil {
		t.Fatalf("runBuild() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Built 2 sheets", "meta.json", "1 speaker references did not resolve", "serve --output"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestBuildCommandFlags(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cmd := c.buildCommand()
	for _, name := range []string{"schedule", "style", "output", "zone", "format", "workers", "refresh", "warn-missing", "no-cache", "cache-url"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("build is missing --%s", name)
		}
	}
	if got := cmd.Flags().Lookup("output").DefValue; got != defaultOutput {
		t.Errorf("--output default = %q, want %q", got, defaultOutput)
	}
}
