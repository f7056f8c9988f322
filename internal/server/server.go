// Package server exposes treemaps of a scanned directory over HTTP.
//
// The server scans its root once at startup and keeps the aggregated tree
// in memory. Every request lays out and renders that snapshot through the
// shared [pipeline.Runner], so concurrent identical requests and repeated
// frames are served from the cache. POST /rescan replaces the snapshot.
//
// # Routes
//
//	GET  /healthz              build info and snapshot summary
//	GET  /tree                 the aggregated tree as a JSON snapshot
//	GET  /treemap.{format}     svg, json, png or pdf treemap
//	GET  /nodelink.{format}    node-link diagram of the hierarchy
//	POST /rescan               rescan the root and swap the snapshot
//
// Treemap and nodelink routes accept width, height, depth, focus,
// min_area, palette, style, labels, titles and scale query parameters.
package server

import (
	"context"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

const (
	// DefaultReadTimeout bounds reading a request.
	DefaultReadTimeout = 10 * time.Second
	// DefaultWriteTimeout bounds writing a response, which includes rendering.
	DefaultWriteTimeout = 60 * time.Second

	shutdownTimeout = 5 * time.Second
)

// snapshot is one scanned, verified tree.
type snapshot struct {
	tree       *hierarchy.Tree
	hash       string
	report     hierarchy.Report
	scannedAt  time.Time
	scanErrors int
}

// Server serves treemaps of a single scan root.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults pipeline.Options

	readTimeout  time.Duration
	writeTimeout time.Duration

	snap  atomic.Pointer[snapshot]
	group singleflight.Group
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithTimeouts sets the HTTP read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
	}
}

// New creates a server for the scan described by defaults. Layout and
// render fields of defaults apply to every request unless overridden by
// query parameters.
func New(runner *pipeline.Runner, defaults pipeline.Options, opts ...Option) (*Server, error) {
	check := defaults
	if err := check.ValidateForScan(); err != nil {
		return nil, err
	}
	s := &Server{
		runner:       runner,
		logger:       log.Default(),
		defaults:     defaults,
		readTimeout:  DefaultReadTimeout,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	return s, nil
}

// Rescan scans the root and swaps in the new snapshot. Concurrent calls
// share one scan, which keeps running when the caller that started it goes
// away. With refresh set the tree cache is bypassed.
func (s *Server) Rescan(ctx context.Context, refresh bool) error {
	_, _, err := s.shared(ctx, "rescan", 0, func(ctx context.Context) (any, error) {
		opts := s.requestOptions()
		opts.Refresh = refresh
		opts.Logger = s.logger

		start := time.Now()
		t, scanErrs, _, err := s.runner.ScanWithCacheInfo(ctx, opts)
		if err != nil {
			return nil, err
		}
		report, err := pipeline.Verify(t)
		if err != nil {
			return nil, err
		}
		s.snap.Store(&snapshot{
			tree:       t,
			hash:       pipeline.TreeHash(t),
			report:     report,
			scannedAt:  time.Now(),
			scanErrors: len(scanErrs),
		})
		s.logger.Info("snapshot ready", "nodes", t.Len(), "scan_errors", len(scanErrs), "duration", time.Since(start))
		return nil, nil
	})
	return err
}

// shared runs fn once per key for all concurrent callers. fn gets a context
// detached from the caller's cancellation, bounded by timeout when it is
// positive. A caller whose own context ends stops waiting with CANCELED
// while the others still receive the result.
func (s *Server) shared(ctx context.Context, key string, timeout time.Duration, fn func(context.Context) (any, error)) (any, bool, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		work := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			work, cancel = context.WithTimeout(work, timeout)
			defer cancel()
		}
		return fn(work)
	})
	select {
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "request canceled")
	}
}

// current returns the active snapshot or an error when none exists yet.
func (s *Server) current() (*snapshot, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, errors.New(errors.ErrCodeUnavailable, "no snapshot yet")
	}
	return snap, nil
}

// requestOptions returns a copy of the defaults that can be modified freely.
func (s *Server) requestOptions() pipeline.Options {
	opts := s.defaults
	opts.Exclude = slices.Clone(s.defaults.Exclude)
	opts.Formats = slices.Clone(s.defaults.Formats)
	return opts
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
