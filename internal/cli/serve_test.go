package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func testSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "dist")
	files := map[string]string{
		"index.html":                "<html></html>",
		"data/meta.json":            `{"groups":[]}`,
		"data/svg/2025-08-01-A.svg": "<svg/>",
		"app.js":                    "console.log(1)",
		"blob.bin":                  "\x00\x01",
	}
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Outside the served directory.
	if err := os.WriteFile(filepath.Join(root, "secret.txt"), []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestServer(t *testing.T) {
	handler, err := newServer(testSite(t), log.New(io.Discard))
	if err != nil {
		t.Fatalf("newServer() error: %v", err)
	}

	tests := []struct {
		path        string
		status      int
		contentType string
		body        string
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8", "<html></html>"},
		{"/index.html", http.StatusOK, "text/html; charset=utf-8", "<html></html>"},
		{"/data/meta.json", http.StatusOK, "application/json; charset=utf-8", `{"groups":[]}`},
		{"/data/svg/2025-08-01-A.svg", http.StatusOK, "image/svg+xml", "<svg/>"},
		{"/app.js", http.StatusOK, "text/javascript; charset=utf-8", "console.log(1)"},
		{"/blob.bin", http.StatusOK, "application/octet-stream", "\x00\x01"},
		{"/missing.svg", http.StatusNotFound, "text/plain; charset=utf-8", "Not Found"},
		{"/data", http.StatusNotFound, "text/plain; charset=utf-8", "Not Found"},
		{"/../secret.txt", http.StatusForbidden, "text/plain; charset=utf-8", "Forbidden"},
		{"/data/../../secret.txt", http.StatusForbidden, "text/plain; charset=utf-8", "Forbidden"},
		{"/healthz", http.StatusOK, "text/plain; charset=utf-8", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://localhost"+tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if got := rec.Body.String(); got != tt.body {
				t.Errorf("body = %q, want %q", got, tt.body)
			}
		})
	}
}

func TestServerMissingIndex(t *testing.T) {
	handler, err := newServer(t.TempDir(), log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStartRebuild(t *testing.T) {
	c := New(io.Discard, LogInfo)

	if _, err := c.startRebuild(testContext(), "every tuesday", defaultBuildOpts()); err == nil {
		t.Error("startRebuild() should reject an invalid cron spec")
	}

	sched, err := c.startRebuild(testContext(), "*/5 * * * *", defaultBuildOpts())
	if err != nil {
		t.Fatalf("startRebuild() error: %v", err)
	}
	if n := len(sched.Entries()); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
	<-sched.Stop().Done()
}

func TestDisplayURL(t *testing.T) {
	tests := []struct{ addr, want string }{
		{":3000", "http://localhost:3000/"},
		{"127.0.0.1:8080", "http://127.0.0.1:8080/"},
	}
	for _, tt := range tests {
		if got := displayURL(tt.addr); got != tt.want {
			t.Errorf("displayURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
