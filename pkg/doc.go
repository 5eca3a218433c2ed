// Package pkg provides the libraries behind schedsvg, which renders a
// conference schedule as one SVG sheet per (date, room) group.
//
// # Overview
//
// A schedule is a normalized document of sessions and speakers. Sessions are
// grouped by the date of their start in a fixed time zone and by room. Each
// group becomes a sheet: one row per session, laid out by a declarative
// style file. The pkg directory is organized into four areas:
//
//  1. Domain: [schedule], [timefmt], [style]
//  2. Layout and output: [render], [markup]
//  3. Infrastructure: [cache], [source], [errors], [observability]
//  4. Orchestration: [pipeline]
//
// # Architecture
//
// The typical data flow:
//
//	schedule file or URL
//	         ↓
//	    [source] package (load, retry, cache the body)
//	         ↓
//	    [schedule] package (group by date and room)
//	         ↓
//	    [render] package (rows and sheet, geometry from [style])
//	         ↓
//	    [markup] package (tree → SVG text or JSON)
//	         ↓
//	    [pipeline] package (cache, write sheets and meta.json)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/schedsvg/pkg/pipeline"
//	    "github.com/matzehuels/schedsvg/pkg/source"
//	    "github.com/matzehuels/schedsvg/pkg/style"
//	)
//
//	cfg, _ := style.Load("style.yaml")
//	loaded, _ := source.Open("schedule.json", source.Options{}).Load(ctx)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Execute(ctx, loaded.Document, cfg, pipeline.Options{})
//	res.Schedule = loaded.Raw
//	files, _ := pipeline.Write(ctx, res, "dist")
//
// # Main Packages
//
// [schedule] - Session and speaker types, document decoding and the
// (date, room) grouping with its derived date and room lists.
//
// [timefmt] - Date and time formatting pinned to an IANA zone.
//
// [style] - The style configuration, its validation and its JSON, TOML and
// YAML encodings.
//
// [render] - Row and sheet composition. Pure functions of the session, its
// index, the roster and the style.
//
// [markup] - The element tree shared by layout and output, with SVG and JSON
// serializers.
//
// [pipeline] - Grouping, concurrent sheet composition with caching, and the
// output directory layout.
//
// [cache] - File, Redis and null caches plus key derivation.
//
// [source] - File and HTTP schedule providers.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [schedule]: https://pkg.go.dev/github.com/matzehuels/schedsvg/pkg/schedule
// [timefmt]: https://pkg.go.dev/github.com/matzehuels/schedsvg/pkg/timefmt
// [style]: https://pkg.go.dev/github.com/matzehuels/schedsvg/pkg/style
// [render]: https://pkg.go.dev/github.com/matzehuels/schedsvg/pkg/render
// [markup]: https://pkg.go.dev/github.com/matzehuels/schedsvg/pkg/markup
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/schedsvg/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/schedsvg/pkg/cache
// [source]: https://pkg.go.dev/github.com/matzehuels/schedsvg/pkg/source
// [errors]: https://pkg.go.dev/github.com/matzehuels/schedsvg/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/schedsvg/pkg/observability
package pkg
