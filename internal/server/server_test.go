package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/squaremap/pkg/observability"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, size := range map[string]int{
		"big.bin":        800,
		"logs/app.log":   150,
		"logs/error.log": 50,
	} {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, bytes.Repeat([]byte("-"), size), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestServer(t *testing.T, scan bool) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	s, err := New(pipeline.NewRunner(nil, nil, logger), pipeline.Options{
		Root:     writeTree(t),
		RootName: "srv",
	}, WithLogger(logger))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if scan {
		if err := s.Rescan(context.Background(), false); err != nil {
			t.Fatalf("Rescan() = %v", err)
		}
	}
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewRequiresRoot(t *testing.T) {
	if _, err := New(nil, pipeline.Options{}); err == nil {
		t.Error("New() without a root should fail")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, true)
	rec := get(t, s.Handler(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Root != "srv" || resp.Bytes != 1000 {
		t.Errorf("health = %+v", resp)
	}
	if resp.Nodes != 5 {
		t.Errorf("nodes = %d, want 5", resp.Nodes)
	}
	if !strings.HasPrefix(rec.Header().Get("Server"), "squaremap/") {
		t.Errorf("Server header = %q", rec.Header().Get("Server"))
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Error("missing request ID")
	}
}

func TestRequestIDEcho(t *testing.T) {
	s := newTestServer(t, true)
	const id = "0b8f0e3c-62a4-4c4b-9d39-2f6f3b0f2c51"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got != id {
		t.Errorf("request ID = %q, want %q", got, id)
	}

	req.Header.Set(headerRequestID, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got == "not-a-uuid" || got == "" {
		t.Errorf("invalid request ID should be replaced, got %q", got)
	}
}

func TestNoSnapshot(t *testing.T) {
	s := newTestServer(t, false)
	rec := get(t, s.Handler(), "/treemap.svg")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	rec = get(t, s.Handler(), "/healthz")
	if !strings.Contains(rec.Body.String(), `"starting"`) {
		t.Errorf("health before scan = %s", rec.Body.String())
	}
}

func TestTree(t *testing.T) {
	s := newTestServer(t, true)
	rec := get(t, s.Handler(), "/tree")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var doc struct {
		Root       string `json:"root"`
		Aggregated bool   `json:"aggregated"`
		Nodes      []any  `json:"nodes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Root != "srv" || !doc.Aggregated || len(doc.Nodes) != 5 {
		t.Errorf("tree = %+v", doc)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
}

func TestTreemapSVG(t *testing.T) {
	s := newTestServer(t, true)
	rec := get(t, s.Handler(), "/treemap.svg?width=200&height=100&titles=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `viewBox="0 0 200.0 100.0"`) {
		t.Errorf("svg header = %.120s", body)
	}
	if !strings.Contains(body, "<title>") {
		t.Error("titles requested but missing")
	}
}

func TestTreemapJSON(t *testing.T) {
	s := newTestServer(t, true)
	tests := []struct {
		query string
		cells int
	}{
		{"", 2},                 // big.bin and logs
		{"?depth=0", 3},         // every file
		{"?focus=logs", 2},      // app.log and error.log
		{"?min_area=1000000", 0}, // everything filtered
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := get(t, s.Handler(), "/treemap.json"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			var doc struct {
				Cells []any `json:"cells"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
				t.Fatal(err)
			}
			if len(doc.Cells) != tt.cells {
				t.Errorf("cells = %d, want %d", len(doc.Cells), tt.cells)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	s := newTestServer(t, true)
	tests := []struct {
		target string
		status int
		code   string
	}{
		{"/treemap.gif", http.StatusBadRequest, "INVALID_FORMAT"},
		{"/treemap.svg?width=-5", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"/treemap.svg?width=wide", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"/treemap.svg?depth=1.5", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"/treemap.svg?labels=maybe", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"/treemap.svg?palette=sepia", http.StatusBadRequest, "INVALID_PALETTE"},
		{"/treemap.svg?style=neon", http.StatusBadRequest, "INVALID_STYLE"},
		{"/treemap.svg?focus=../etc", http.StatusBadRequest, "INVALID_PATH"},
		{"/treemap.svg?focus=missing", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, s.Handler(), tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Error != tt.code {
				t.Errorf("error = %q, want %q", resp.Error, tt.code)
			}
			if resp.RequestID == "" {
				t.Error("error response without request ID")
			}
		})
	}
}

func TestNodelinkJSON(t *testing.T) {
	s := newTestServer(t, true)
	rec := get(t, s.Handler(), "/nodelink.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"nodes"`) {
		t.Errorf("nodelink json = %.80s", rec.Body.String())
	}
}

func TestRescan(t *testing.T) {
	s := newTestServer(t, true)
	before := s.snap.Load()

	if err := os.WriteFile(filepath.Join(s.defaults.Root, "new.txt"), make([]byte, 24), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rescan", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	after := s.snap.Load()
	if after == before || after.hash == before.hash {
		t.Error("rescan did not replace the snapshot")
	}
	if got := after.tree.Size(after.tree.Root()); got != 1024 {
		t.Errorf("root size = %g, want 1024", got)
	}
}

// gatedScan holds the first scan at its start until release is closed.
type gatedScan struct {
	observability.NoopPipelineHooks
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (g *gatedScan) OnScanStart(context.Context, string) {
	g.once.Do(func() {
		close(g.started)
		<-g.release
	})
}

func TestRescanSurvivesCanceledCaller(t *testing.T) {
	s := newTestServer(t, false)
	gate := &gatedScan{started: make(chan struct{}), release: make(chan struct{})}
	observability.SetPipelineHooks(gate)
	t.Cleanup(observability.Reset)
	h := s.Handler()

	ctxA, cancelA := context.WithCancel(context.Background())
	recA, recB := httptest.NewRecorder(), httptest.NewRecorder()
	doneA, doneB := make(chan struct{}), make(chan struct{})

	go func() {
		h.ServeHTTP(recA, httptest.NewRequest(http.MethodPost, "/rescan", nil).WithContext(ctxA))
		close(doneA)
	}()
	<-gate.started
	go func() {
		h.ServeHTTP(recB, httptest.NewRequest(http.MethodPost, "/rescan", nil))
		close(doneB)
	}()
	// Give the second request time to join the scan in flight.
	time.Sleep(50 * time.Millisecond)

	cancelA()
	<-doneA
	if recA.Code != http.StatusGatewayTimeout {
		t.Errorf("canceled caller status = %d, want %d", recA.Code, http.StatusGatewayTimeout)
	}

	close(gate.release)
	<-doneB
	if recB.Code != http.StatusOK {
		t.Fatalf("second caller status = %d: %s", recB.Code, recB.Body.String())
	}
	snap := s.snap.Load()
	if snap == nil {
		t.Fatal("no snapshot stored after the shared scan")
	}
	if got := snap.tree.Size(snap.tree.Root()); got != 1000 {
		t.Errorf("root size = %g, want 1000", got)
	}
}

func TestHealthReportsScanErrors(t *testing.T) {
	s := newTestServer(t, true)
	s.snap.Load().scanErrors = 2
	var resp healthResponse
	if err := json.Unmarshal(get(t, s.Handler(), "/healthz").Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ScanErrors != 2 {
		t.Errorf("scan_errors = %d, want 2", resp.ScanErrors)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(io.EOF); got != http.StatusInternalServerError {
		t.Errorf("statusFor(plain) = %d", got)
	}
}
