package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// logger. The CLI registers it when --verbose is set.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to l.
func NewLogHooks(l *log.Logger) *LogHooks { return &LogHooks{Logger: l} }

// Register installs h for all hook categories.
func (h *LogHooks) Register() {
	SetSubmitHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnExportStart(_ context.Context, region string) {
	h.Logger.Debug("export started", "region", region)
}

func (h *LogHooks) OnExportComplete(_ context.Context, region string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("export failed", "region", region, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("export complete", "region", region, "bytes", size, "duration", d)
}

func (h *LogHooks) OnMockupComplete(_ context.Context, color string, d time.Duration, err error) {
	h.Logger.Debug("mockup", "color", color, "duration", d, "err", err)
}

func (h *LogHooks) OnSubmitComplete(_ context.Context, mode string, variants int, d time.Duration, err error) {
	h.Logger.Debug("submit", "mode", mode, "variants", variants, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ SubmitHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ HTTPHooks   = (*LogHooks)(nil)
)
