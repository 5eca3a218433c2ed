package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/matzehuels/schedsvg/pkg/observability"
)

// Output layout under the output directory.
const (
	DataDir      = "data"
	SheetDir     = "svg"
	ScheduleFile = "schedule.json"
	MetaFile     = "meta.json"
)

// Meta is the index the viewer reads to find sheets.
type Meta struct {
	RunID       string      `json:"run_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Zone        string      `json:"zone"`
	Dates       []string    `json:"dates"`
	Rooms       []string    `json:"rooms"`
	Groups      []MetaGroup `json:"groups"`
}

// MetaGroup describes one sheet. Files are relative to the data directory.
type MetaGroup struct {
	Name     string            `json:"name"`
	Sessions int               `json:"sessions"`
	Files    map[string]string `json:"files"`
}

// Meta builds the index for res.
func (res *Result) Meta() Meta {
	m := Meta{
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt,
		Zone:        res.Zone,
		Dates:       nonNil(res.Dates),
		Rooms:       nonNil(res.Rooms),
		Groups:      make([]MetaGroup, 0, len(res.Names)),
	}
	for _, name := range res.Names {
		sheet := res.Sheets[name]
		if sheet == nil {
			continue
		}
		files := make(map[string]string, len(sheet.Artifacts))
		for format := range sheet.Artifacts {
			files[format] = SheetDir + "/" + sheet.File + Ext(format)
		}
		m.Groups = append(m.Groups, MetaGroup{Name: name, Sessions: sheet.Sessions, Files: files})
	}
	return m
}

// Write stores res under dir and returns the written paths. Every file is
// replaced atomically so a server reading dir never sees partial output.
// meta.json is written last.
func Write(ctx context.Context, res *Result, dir string) (files []string, err error) {
	start := time.Now()
	defer func() {
		observability.Pipeline().OnWriteComplete(ctx, dir, len(files), time.Since(start), err)
	}()

	dataDir := filepath.Join(dir, DataDir)
	sheetDir := filepath.Join(dataDir, SheetDir)
	if err := os.MkdirAll(sheetDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	write := func(path string, data []byte) error {
		if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, path)
		return nil
	}

	schedule := res.Schedule
	if schedule == nil && res.Document != nil {
		if schedule, err = json.MarshalIndent(res.Document, "", "  "); err != nil {
			return files, fmt.Errorf("encode schedule: %w", err)
		}
	}
	if schedule != nil {
		if err := write(filepath.Join(dataDir, ScheduleFile), schedule); err != nil {
			return files, err
		}
	}

	for _, name := range res.Names {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		sheet := res.Sheets[name]
		if sheet == nil {
			continue
		}
		for _, format := range sortedFormats(sheet.Artifacts) {
			if err := write(filepath.Join(sheetDir, sheet.File+Ext(format)), sheet.Artifacts[format]); err != nil {
				return files, err
			}
		}
	}

	meta, err := json.MarshalIndent(res.Meta(), "", "  ")
	if err != nil {
		return files, fmt.Errorf("encode meta: %w", err)
	}
	if err := write(filepath.Join(dataDir, MetaFile), meta); err != nil {
		return files, err
	}
	return files, nil
}

func sortedFormats(artifacts map[string][]byte) []string {
	var out []string
	for _, f := range []string{FormatSVG, FormatJSON} {
		if _, ok := artifacts[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
