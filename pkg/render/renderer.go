// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-strut/pkg/logging"
)

// NullSurface discards drawing, logging each primitive at debug level and
// counting calls. It backs headless runs and tests.
type NullSurface struct {
	state
	logger *logging.Logger

	Circles int
	Lines   int
	Rects   int
	Texts   int
}

// NewNullSurface creates a NullSurface with structured logging
func NewNullSurface(logger *logging.Logger) *NullSurface {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullSurface{
		state:  newState(),
		logger: logger.Component("null_surface"),
	}
}

// Clear resets the counters and the depth
func (d *NullSurface) Clear() {
	d.Circles, d.Lines, d.Rects, d.Texts = 0, 0, 0, 0
	d.resetDepth()
}

// Circle implements Surface
func (d *NullSurface) Circle(x, y, r float32) {
	d.Circles++
	d.logger.Debug(context.Background(), "circle",
		"x", x, "y", y, "r", r, "depth", d.nextDepth())
}

// Line implements Surface
func (d *NullSurface) Line(x1, y1, x2, y2, width float32) {
	d.Lines++
	d.logger.Debug(context.Background(), "line",
		"x1", x1, "y1", y1, "x2", x2, "y2", y2, "width", width, "depth", d.nextDepth())
}

// Rect implements Surface
func (d *NullSurface) Rect(x, y, w, h float32) {
	d.Rects++
	d.logger.Debug(context.Background(), "rect",
		"x", x, "y", y, "w", w, "h", h, "depth", d.nextDepth())
}

// Text implements Surface
func (d *NullSurface) Text(s string, x, y, size float32) {
	d.Texts++
	d.logger.Debug(context.Background(), "text",
		"text", s, "x", x, "y", y, "size", size, "depth", d.nextDepth())
}

// Total returns the number of primitives drawn since the last Clear
func (d *NullSurface) Total() int {
	return d.Circles + d.Lines + d.Rects + d.Texts
}
