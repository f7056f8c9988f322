package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogPipelineHooks writes pipeline events to a logger at debug level, and
// failures at error level.
type LogPipelineHooks struct {
	Logger *log.Logger
}

func (h LogPipelineHooks) OnScanStart(_ context.Context, root string) {
	h.Logger.Debug("scan started", "root", root)
}

func (h LogPipelineHooks) OnScanComplete(_ context.Context, root string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("scan failed", "root", root, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("scan complete", "root", root, "nodes", nodeCount, "duration", d)
}

func (h LogPipelineHooks) OnLayoutStart(_ context.Context, focus string, nodeCount int) {
	h.Logger.Debug("layout started", "focus", focus, "nodes", nodeCount)
}

func (h LogPipelineHooks) OnLayoutComplete(_ context.Context, focus string, cellCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("layout failed", "focus", focus, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("layout complete", "focus", focus, "cells", cellCount, "duration", d)
}

func (h LogPipelineHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render started", "formats", formats)
}

func (h LogPipelineHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("render failed", "formats", formats, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("render complete", "formats", formats, "duration", d)
}

// LogCacheHooks writes cache events to a logger at debug level.
type LogCacheHooks struct {
	Logger *log.Logger
}

func (h LogCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

// LogHTTPHooks writes one line per served request.
type LogHTTPHooks struct {
	Logger *log.Logger
}

func (h LogHTTPHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h LogHTTPHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h LogHTTPHooks) OnError(_ context.Context, method, path string, err error) {
	h.Logger.Error("handler failed", "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = LogPipelineHooks{}
	_ CacheHooks    = LogCacheHooks{}
	_ HTTPHooks     = LogHTTPHooks{}
)
