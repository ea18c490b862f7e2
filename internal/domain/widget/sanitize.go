package widget

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/ari-dashboard/backend/internal/shared/types"
)

var svgElements = []string{
	"svg", "g", "defs", "title", "desc", "symbol",
	"path", "circle", "ellipse", "line", "polyline", "polygon", "rect",
	"text", "tspan", "lineargradient", "radialgradient", "stop", "clippath",
}

var svgAttrs = []string{
	"viewbox", "xmlns", "width", "height", "preserveaspectratio",
	"x", "y", "x1", "y1", "x2", "y2", "cx", "cy", "r", "rx", "ry",
	"d", "points", "transform", "offset", "gradientunits", "clip-path",
	"fill", "fill-opacity", "fill-rule", "stroke", "stroke-width", "stroke-opacity",
	"stroke-linecap", "stroke-linejoin", "stroke-dasharray", "opacity",
	"font-size", "font-family", "font-weight", "text-anchor", "dominant-baseline",
	"stop-color", "stop-opacity", "id", "class",
}

// Sanitizer strips scripts and event handlers from SVG markup that the
// display injects into the page without a sandbox.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the SVG-aware policy.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowElements(svgElements...)
	p.AllowAttrs(svgAttrs...).OnElements(svgElements...)
	p.AllowNoAttrs().OnElements(svgElements...)
	return &Sanitizer{policy: p}
}

// SVG sanitizes a fragment of SVG markup.
func (s *Sanitizer) SVG(markup string) string {
	return s.policy.Sanitize(markup)
}

// Data returns d with unsandboxed markup sanitized. Payloads other than
// HTML are returned unchanged.
func (s *Sanitizer) Data(d types.WidgetData) types.WidgetData {
	h, ok := d.(*types.HTMLData)
	if !ok || h.SVGContent == "" {
		return d
	}
	clean := *h
	clean.SVGContent = s.SVG(h.SVGContent)
	return &clean
}
