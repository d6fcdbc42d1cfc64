package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes layout, pipeline and cache events to a logger at debug
// level. Requests are left to the HTTP host's own request log.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to l under the "obs" prefix.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("obs")}
}

func (h *LogHooks) OnRecompute(binCount, itemCount int, d time.Duration) {
	h.logger.Debug("layout", "bins", binCount, "items", itemCount, "took", d)
}

func (h *LogHooks) OnZoom(direction string, from, to int) {
	h.logger.Debug("zoom", "direction", direction, "from", from, "to", to)
}

func (h *LogHooks) OnScanStart(_ context.Context, root string) {
	h.logger.Debug("scan start", "root", root)
}

func (h *LogHooks) OnScanComplete(_ context.Context, root string, itemCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("scan failed", "root", root, "took", d, "err", err)
		return
	}
	h.logger.Debug("scan done", "root", root, "items", itemCount, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "formats", formats, "took", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

var (
	_ LayoutHooks   = (*LogHooks)(nil)
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)
