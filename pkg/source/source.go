// Package source loads the normalized schedule document.
//
// Two providers exist. [File] reads a local JSON file. [HTTP] fetches a URL,
// retrying transient failures with exponential backoff and keeping the body
// in a [cache.Cache] for a TTL so repeated builds do not hit the origin.
// [Open] picks one from the reference:
//
//	p := source.Open("https://example.com/schedule.json", source.Options{Cache: c})
//	res, err := p.Load(ctx)
//
// [cache.Cache]: github.com/matzehuels/schedsvg/pkg/cache.Cache
package source

import (
	"context"
	"time"

	"github.com/matzehuels/schedsvg/pkg/cache"
	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/schedule"
)

// DefaultTTL is how long a fetched schedule stays fresh in the cache.
const DefaultTTL = cache.TTLHTTP

// Result is a loaded schedule.
type Result struct {
	Document *schedule.Document
	Raw      []byte // body as read, written through to the output for the viewer
	Origin   string // path or URL
	Cached   bool   // served from the cache
}

// Provider loads a schedule document.
type Provider interface {
	Load(ctx context.Context) (*Result, error)
}

// Options configure [Open]. Zero values select defaults; File ignores all
// of them.
type Options struct {
	Cache      cache.Cache
	Keyer      cache.Keyer
	TTL        time.Duration
	Refresh    bool // bypass cached bodies, still store the fresh one
	Attempts   int
	RetryDelay time.Duration
	Headers    map[string]string
}

// Open returns an HTTP provider for http(s) references and a File provider
// for everything else.
func Open(ref string, opts Options) Provider {
	if errors.IsURL(ref) {
		return NewHTTP(ref, opts)
	}
	return File(ref)
}
