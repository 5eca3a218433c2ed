package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/schedsvg/pkg/cache"
	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/schedule"
	"github.com/matzehuels/schedsvg/pkg/style"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Zone != DefaultZone || opts.Workers != DefaultWorkers || opts.Logger == nil {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if !reflect.DeepEqual(opts.Formats, []string{FormatSVG}) {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}

	for _, bad := range []Options{
		{Formats: []string{"pdf"}},
		{Formats: []string{"svg", "svg"}},
		{Workers: -1},
	} {
		if err := bad.ValidateAndSetDefaults(); err == nil {
			t.Errorf("ValidateAndSetDefaults(%+v) should fail", bad)
		}
	}
}

func testDocument() *schedule.Document {
	return &schedule.Document{
		Sessions: []schedule.Session{
			{ID: "a2", Room: "A", Start: "2025-08-01T10:00+08:00", Speakers: []string{"p2"},
				Zh: schedule.Locale{Title: "第二場"}, En: schedule.Locale{Title: "Second"}},
			{ID: "b1", Room: "B", Start: "2025-08-01T09:30+08:00", Speakers: []string{"p1", "ghost"},
				Zh: schedule.Locale{Title: "B 廳"}, En: schedule.Locale{Title: "Room B"}},
			{ID: "a1", Room: "A", Start: "2025-08-01T09:00+08:00", Speakers: []string{"p1"},
				Zh: schedule.Locale{Title: "開場 & 介紹"}, En: schedule.Locale{Title: "Opening <keynote>"}},
			{ID: "c1", Room: "A", Start: "2025-08-02T09:00+08:00",
				Zh: schedule.Locale{Title: "第二天"}, En: schedule.Locale{Title: "Day two"}},
		},
		Speakers: []schedule.Speaker{
			{ID: "p1", Zh: schedule.Locale{Name: "王小明"}, En: schedule.Locale{Name: "Ming"}},
			{ID: "p2", Zh: schedule.Locale{Name: "陳大文"}, En: schedule.Locale{Name: "David"}},
		},
	}
}

func TestExecute(t *testing.T) {
	var missing []string
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), testDocument(), style.Example(), Options{
		Formats: []string{FormatSVG, FormatJSON},
		OnMissingSpeaker: func(sessionID, speakerID string) {
			missing = append(missing, sessionID+"/"+speakerID)
		},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	wantNames := []string{"2025-08-01-A", "2025-08-01-B", "2025-08-02-A"}
	if !reflect.DeepEqual(res.Names, wantNames) {
		t.Errorf("Names = %v, want %v", res.Names, wantNames)
	}
	if !reflect.DeepEqual(res.Dates, []string{"2025-08-01", "2025-08-02"}) {
		t.Errorf("Dates = %v", res.Dates)
	}
	if !reflect.DeepEqual(res.Rooms, []string{"A", "B"}) {
		t.Errorf("Rooms = %v", res.Rooms)
	}
	if res.Zone != "Asia/Taipei" || res.RunID == "" {
		t.Errorf("Zone/RunID = %q/%q", res.Zone, res.RunID)
	}
	if !reflect.DeepEqual(missing, []string{"b1/ghost"}) || res.Stats.MissingSpeaker != 1 {
		t.Errorf("missing = %v (count %d), want [b1/ghost]", missing, res.Stats.MissingSpeaker)
	}

	sheet := res.Sheets["2025-08-01-A"]
	if sheet == nil || sheet.Sessions != 2 {
		t.Fatalf("sheet A = %+v", sheet)
	}
	svg := string(sheet.Artifacts[FormatSVG])
	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" width="1080" height="248"`) {
		t.Errorf("svg header = %.120s", svg)
	}
	if strings.Index(svg, "09:00") > strings.Index(svg, "10:00") {
		t.Error("rows should be in start order")
	}
	if !strings.Contains(svg, "開場 &amp; 介紹") || !strings.Contains(svg, "Opening &lt;keynote&gt;") {
		t.Error("titles should be escaped in svg output")
	}

	var tree map[string]any
	if err := json.Unmarshal(sheet.Artifacts[FormatJSON], &tree); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if tree["name"] != "svg" {
		t.Errorf("json root name = %v", tree["name"])
	}
}

func TestExecuteFailsFast(t *testing.T) {
	badStart := testDocument()
	badStart.Sessions[3].Start = "someday"

	badStyle := style.Example()
	badStyle.RowHeight = 0

	tests := []struct {
		name string
		doc  *schedule.Document
		cfg  *style.Config
		opts Options
		code errors.Code
	}{
		{"timestamp", badStart, style.Example(), Options{}, errors.ErrCodeInvalidTimestamp},
		{"style", testDocument(), badStyle, Options{}, errors.ErrCodeInvalidStyle},
		{"zone", testDocument(), style.Example(), Options{Zone: "Mars/Olympus"}, errors.ErrCodeInvalidZone},
		{"nil document", nil, style.Example(), Options{}, errors.ErrCodeInvalidSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewRunner(nil, nil, nil).Execute(context.Background(), tt.doc, tt.cfg, tt.opts)
			if res != nil {
				t.Error("Execute() should not return a result on failure")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteEmptySchedule(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), &schedule.Document{}, style.Example(), Options{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Names) != 0 || len(res.Sheets) != 0 {
		t.Errorf("empty schedule produced %d sheets", len(res.Sheets))
	}
}

// countingCache records Set calls so tests can tell hits from recomputes.
type countingCache struct {
	cache.Cache
	mu   sync.Mutex
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Cache.Set(ctx, key, data, ttl)
}

func TestExecuteCachesSheets(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cc := &countingCache{Cache: fc}
	runner := NewRunner(cc, nil, nil)
	ctx := context.Background()

	var missing []string
	opts := Options{OnMissingSpeaker: func(sessionID, speakerID string) {
		missing = append(missing, sessionID+"/"+speakerID)
	}}

	first, err := runner.Execute(ctx, testDocument(), style.Example(), opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	if first.CacheInfo.Hits != 0 || first.CacheInfo.Misses != 3 || cc.sets != 3 {
		t.Errorf("first run cache = %+v, sets %d", first.CacheInfo, cc.sets)
	}
	if first.Stats.MissingSpeaker != 1 || !reflect.DeepEqual(missing, []string{"b1/ghost"}) {
		t.Errorf("first run missing = %v (count %d)", missing, first.Stats.MissingSpeaker)
	}

	missing = nil
	second, err := runner.Execute(ctx, testDocument(), style.Example(), opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if second.CacheInfo.Hits != 3 || cc.sets != 3 {
		t.Errorf("second run cache = %+v, sets %d", second.CacheInfo, cc.sets)
	}
	if second.Stats.MissingSpeaker != 1 || !reflect.DeepEqual(missing, []string{"b1/ghost"}) {
		t.Errorf("cached run missing = %v (count %d), want [b1/ghost]", missing, second.Stats.MissingSpeaker)
	}
	for _, name := range first.Names {
		if !bytes.Equal(first.Sheets[name].Artifacts[FormatSVG], second.Sheets[name].Artifacts[FormatSVG]) {
			t.Errorf("cached sheet %s differs from computed one", name)
		}
	}

	// Changing one group's session invalidates only that group.
	doc := testDocument()
	doc.Sessions[1].En.Title = "Room B, revised"
	third, err := runner.Execute(ctx, doc, style.Example(), Options{})
	if err != nil {
		t.Fatalf("third Execute() error: %v", err)
	}
	if third.CacheInfo.Hits != 2 || third.CacheInfo.Misses != 1 {
		t.Errorf("third run cache = %+v, want 2 hits 1 miss", third.CacheInfo)
	}

	// A different style invalidates every group.
	cfg := style.Example()
	cfg.Width = 1200
	fourth, err := runner.Execute(ctx, testDocument(), cfg, Options{})
	if err != nil {
		t.Fatalf("fourth Execute() error: %v", err)
	}
	if fourth.CacheInfo.Hits != 0 {
		t.Errorf("style change should miss every sheet: %+v", fourth.CacheInfo)
	}

	refreshed, err := runner.Execute(ctx, testDocument(), style.Example(), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute() error: %v", err)
	}
	if refreshed.CacheInfo.Hits != 0 {
		t.Errorf("refresh should bypass the cache: %+v", refreshed.CacheInfo)
	}
}

func TestExecuteDeterministic(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	a, err := runner.Execute(context.Background(), testDocument(), style.Example(), Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := runner.Execute(context.Background(), testDocument(), style.Example(), Options{Workers: 8})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range a.Names {
		if !bytes.Equal(a.Sheets[name].Artifacts[FormatSVG], b.Sheets[name].Artifacts[FormatSVG]) {
			t.Errorf("sheet %s differs between runs", name)
		}
	}
}

func TestUniqueFiles(t *testing.T) {
	if err := uniqueFiles([]string{"2025-08-01-A", "2025-08-01-B"}); err != nil {
		t.Errorf("distinct names should pass: %v", err)
	}
	err := uniqueFiles([]string{"2025-08-01-R/1", "2025-08-01-R:1"})
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("colliding names = %v, want %s", err, errors.ErrCodeInvalidPath)
	}
}

func TestWrite(t *testing.T) {
	raw := []byte(`{"sessions": []}`)
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), testDocument(), style.Example(), Options{
		Formats: []string{FormatSVG, FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}
	res.Schedule = raw

	dir := t.TempDir()
	files, err := Write(context.Background(), res, dir)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	// schedule + 3 groups x 2 formats + meta
	if len(files) != 8 {
		t.Errorf("wrote %d files, want 8: %v", len(files), files)
	}
	if files[len(files)-1] != filepath.Join(dir, DataDir, MetaFile) {
		t.Errorf("meta.json should be written last, got %s", files[len(files)-1])
	}

	got, err := os.ReadFile(filepath.Join(dir, "data", "schedule.json"))
	if err != nil || !bytes.Equal(got, raw) {
		t.Errorf("schedule.json = %q, %v", got, err)
	}

	svg, err := os.ReadFile(filepath.Join(dir, "data", "svg", "2025-08-01-A.svg"))
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if !bytes.Equal(svg, res.Sheets["2025-08-01-A"].Artifacts[FormatSVG]) {
		t.Error("written sheet differs from artifact")
	}

	data, err := os.ReadFile(filepath.Join(dir, "data", "meta.json"))
	if err != nil {
		t.Fatal(err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("meta.json: %v", err)
	}
	if meta.RunID != res.RunID || meta.Zone != "Asia/Taipei" {
		t.Errorf("meta run/zone = %q/%q", meta.RunID, meta.Zone)
	}
	if len(meta.Groups) != 3 || meta.Groups[0].Name != "2025-08-01-A" || meta.Groups[0].Sessions != 2 {
		t.Errorf("meta groups = %+v", meta.Groups)
	}
	if got := meta.Groups[1].Files[FormatSVG]; got != "svg/2025-08-01-B.svg" {
		t.Errorf("meta file = %q", got)
	}
}

func TestWriteEncodesDocumentWhenRawMissing(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), testDocument(), style.Example(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if _, err := Write(context.Background(), res, dir); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	doc, err := schedule.ReadFile(filepath.Join(dir, "data", "schedule.json"))
	if err != nil {
		t.Fatalf("schedule.json should be a readable schedule: %v", err)
	}
	if len(doc.Sessions) != 4 {
		t.Errorf("sessions = %d, want 4", len(doc.Sessions))
	}
}

func TestWriteEmptyMeta(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), &schedule.Document{}, style.Example(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if _, err := Write(context.Background(), res, dir); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "data", "meta.json"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"dates": []`, `"rooms": []`, `"groups": []`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("meta.json missing %s: %s", want, data)
		}
	}
}
