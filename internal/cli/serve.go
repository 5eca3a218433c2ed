package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

const (
	defaultAddr     = ":3000"
	shutdownTimeout = 5 * time.Second
)

// mimeTypes covers what build writes and what the viewer ships with.
var mimeTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".svg":  "image/svg+xml",
	".js":   "text/javascript; charset=utf-8",
}

type serveOpts struct {
	addr    string
	rebuild string // cron spec; empty serves the directory as is
	build   buildOpts
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: defaultAddr, build: defaultBuildOpts()}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the output directory for local preview",
		Long: `Serve the output directory over HTTP for local preview.

"/" serves index.html from the output directory. Paths that resolve outside
the directory are rejected with 403.

With --rebuild the schedule is built once at startup and then again on the
given cron schedule (for example "*/5 * * * *"), using the same flags as
'build'. Overlapping rebuilds are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.rebuild, "rebuild", "", `cron schedule for rebuilding, e.g. "*/5 * * * *"`)
	opts.build.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	dir := opts.build.output

	if opts.rebuild != "" {
		if _, _, err := c.build(ctx, opts.build); err != nil {
			return err
		}
		sched, err := c.startRebuild(ctx, opts.rebuild, opts.build)
		if err != nil {
			return err
		}
		defer func() { <-sched.Stop().Done() }()
		logger.Info("rebuild scheduled", "spec", opts.rebuild)
	}

	if _, err := os.Stat(dir); err != nil {
		printWarning("%s does not exist yet, run '%s build' first", dir, appName)
	}

	handler, err := newServer(dir, logger)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	printSuccess("Serving %s", dir)
	printKeyValue("URL", StyleLink.Render(displayURL(opts.addr)))

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serve %s: %w", opts.addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "err", err)
	}
	logger.Info("server stopped")
	return nil
}

// startRebuild runs build on spec until the returned scheduler is stopped.
func (c *CLI) startRebuild(ctx context.Context, spec string, opts buildOpts) (*cron.Cron, error) {
	logger := loggerFromContext(ctx)
	cl := cronLogger{logger}

	sched := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	_, err := sched.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		res, _, err := c.build(ctx, opts)
		if err != nil {
			logger.Error("rebuild failed", "err", err)
			return
		}
		logger.Info("rebuilt",
			"groups", len(res.Sheets),
			"cached", res.CacheInfo.Hits,
			"duration", time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid --rebuild schedule %q: %w", spec, err)
	}
	sched.Start()
	return sched, nil
}

// cronLogger adapts a charm logger to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}

// =============================================================================
// HTTP
// =============================================================================

// newServer returns the router serving dir.
func newServer(dir string, logger *log.Logger) (http.Handler, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	static := &staticHandler{root: root, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		send(w, http.StatusOK, "ok")
	})
	r.Get("/*", static.ServeHTTP)

	return r, nil
}

// staticHandler serves files under root.
type staticHandler struct {
	root   string
	logger *log.Logger
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path
	if name == "/" {
		name = "/index.html"
	}

	full := filepath.Join(h.root, filepath.FromSlash(name))
	if !strings.HasPrefix(full, h.root+string(filepath.Separator)) {
		send(w, http.StatusForbidden, "Forbidden")
		return
	}

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		err = fs.ErrNotExist
	}
	var data []byte
	if err == nil {
		data, err = os.ReadFile(full)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			send(w, http.StatusNotFound, "Not Found")
			return
		}
		h.logger.Error("read file", "path", full, "err", err)
		send(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ct, ok := mimeTypes[strings.ToLower(filepath.Ext(full))]
	if !ok {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func send(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// requestLogger logs each request at debug level.
func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"id", middleware.GetReqID(r.Context()))
		})
	}
}

func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}
