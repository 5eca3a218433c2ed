package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/schedsvg/pkg/cache"
	"github.com/matzehuels/schedsvg/pkg/errors"
	"github.com/matzehuels/schedsvg/pkg/observability"
	"github.com/matzehuels/schedsvg/pkg/schedule"
)

const (
	httpTimeout = 10 * time.Second

	// maxBody caps the size of a fetched schedule.
	maxBody = 32 << 20
)

// HTTP loads a schedule from a URL.
type HTTP struct {
	url     string
	client  *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	refresh bool
	backoff cache.Backoff
	headers map[string]string
}

// NewHTTP creates an HTTP provider for rawURL.
func NewHTTP(rawURL string, opts Options) *HTTP {
	h := &HTTP{
		url:     rawURL,
		client:  &http.Client{Timeout: httpTimeout},
		cache:   opts.Cache,
		keyer:   opts.Keyer,
		ttl:     opts.TTL,
		refresh: opts.Refresh,
		backoff: cache.Backoff{Attempts: opts.Attempts, Delay: opts.RetryDelay}.WithDefaults(),
		headers: opts.Headers,
	}
	if h.cache == nil {
		h.cache = cache.NewNullCache()
	}
	if h.keyer == nil {
		h.keyer = cache.NewDefaultKeyer()
	}
	if h.ttl <= 0 {
		h.ttl = DefaultTTL
	}
	return h
}

// Load returns the cached body when fresh, otherwise fetches it.
// A body that fails to parse is never cached.
func (h *HTTP) Load(ctx context.Context) (*Result, error) {
	key := h.keyer.HTTPKey("schedule", h.url)

	if !h.refresh {
		if data, ok, err := h.cache.Get(ctx, key); err == nil && ok {
			if doc, err := schedule.Parse(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "http")
				return &Result{Document: doc, Raw: data, Origin: h.url, Cached: true}, nil
			}
			_ = h.cache.Delete(ctx, key)
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}

	var data []byte
	err := h.backoff.Do(ctx, func() error {
		var err error
		data, err = h.fetch(ctx)
		return err
	})
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch schedule %s", h.url)
	}

	doc, err := schedule.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := h.cache.Set(ctx, key, data, h.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "http", len(data))
	}
	return &Result{Document: doc, Raw: data, Origin: h.url}, nil
}

func (h *HTTP) fetch(ctx context.Context) ([]byte, error) {
	host, path := splitURL(h.url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "schedule url")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Transient(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, cache.Transient(fmt.Errorf("%w: read body: %v", cache.ErrNetwork, err))
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.Wrap(errors.ErrCodeNotFound, cache.ErrNotFound, "schedule")
	case code == http.StatusTooManyRequests, code >= 500:
		return cache.Transient(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", raw
	}
	return u.Host, u.Path
}
