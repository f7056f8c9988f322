package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/squaremap/pkg/buildinfo"
	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/io"
	"github.com/matzehuels/squaremap/pkg/observability"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(serverHeader)
	r.Use(observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/tree", s.handleTree)
	r.Get("/treemap.{format}", s.handleRender(pipeline.VizTypeTreemap))
	r.Get("/nodelink.{format}", s.handleRender(pipeline.VizTypeNodelink))
	r.Post("/rescan", s.handleRescan)
	return r
}

type healthResponse struct {
	Status     string         `json:"status"`
	Build      buildinfo.Info `json:"build"`
	Root       string         `json:"root,omitempty"`
	Nodes      int            `json:"nodes"`
	Bytes      float64        `json:"bytes"`
	ScanErrors int            `json:"scan_errors"`
	Disparity  float64        `json:"disparity"`
	TreeHash   string         `json:"tree_hash,omitempty"`
	ScannedAt  *time.Time     `json:"scanned_at,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "starting", Build: buildinfo.Get()}
	if snap := s.snap.Load(); snap != nil {
		t := snap.tree
		resp.Status = "ok"
		resp.Root = t.Name(t.Root())
		resp.Nodes = t.Len()
		resp.Bytes = t.Size(t.Root())
		resp.ScanErrors = snap.scanErrors
		resp.Disparity = snap.report.Disparity
		resp.TreeHash = snap.hash
		resp.ScannedAt = &snap.scannedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := io.WriteJSON(snap.tree, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", `"`+snap.hash+`"`)
	w.Write(buf.Bytes())
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	if err := s.Rescan(r.Context(), true); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleHealth(w, r)
}

// renderResult is shared between requests collapsed by singleflight.
type renderResult struct {
	data      []byte
	layoutHit bool
	renderHit bool
}

func (s *Server) handleRender(vizType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := chi.URLParam(r, "format")
		if err := pipeline.ValidateFormat(format); err != nil {
			s.writeError(w, r, err)
			return
		}
		snap, err := s.current()
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		opts := s.requestOptions()
		if err := applyQuery(&opts, r.URL.Query()); err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.VizType = vizType
		opts.Formats = []string{format}
		opts.Logger = s.logger

		key := snap.hash + "|" + vizType + "|" + format + "|" + r.URL.RawQuery
		v, shared, err := s.shared(r.Context(), key, s.writeTimeout, func(ctx context.Context) (any, error) {
			return s.render(ctx, snap, opts, format)
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		res := v.(renderResult)
		if shared {
			s.logger.Debug("shared render", "key", key)
		}

		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("X-Cache-Layout", hitHeader(res.layoutHit))
		w.Header().Set("X-Cache-Render", hitHeader(res.renderHit))
		w.Write(res.data)
	}
}

func (s *Server) render(ctx context.Context, snap *snapshot, opts pipeline.Options, format string) (renderResult, error) {
	l, layoutHit, err := s.runner.GenerateLayoutWithCacheInfo(ctx, snap.tree, opts)
	if err != nil {
		return renderResult{}, err
	}
	artifacts, renderHit, err := s.runner.RenderWithCacheInfo(ctx, l, snap.tree, opts)
	if err != nil {
		return renderResult{}, err
	}
	return renderResult{data: artifacts[format], layoutHit: layoutHit, renderHit: renderHit}, nil
}

func hitHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	if errors.IsValidation(err) {
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeTimeout, errors.ErrCodeCanceled:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{
		Error:     string(code),
		Message:   errors.UserMessage(err),
		RequestID: w.Header().Get(headerRequestID),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
