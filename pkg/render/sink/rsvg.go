package sink

import (
	"context"

	"github.com/matzehuels/branchdeck/pkg/render"
)

// PNGOption configures PNG rendering through rsvg-convert.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG renders the surface as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, s *Surface, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: DefaultScale}
	for _, opt := range opts {
		opt(&r)
	}
	return render.ToPNG(ctx, RenderSVG(s, r.svgOpts...), r.scale)
}

// RenderPDF renders the surface as PDF via SVG conversion. The font is
// embedded so the PDF matches the raster output.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, s *Surface, opts ...SVGOption) ([]byte, error) {
	opts = append([]SVGOption{WithEmbeddedFont()}, opts...)
	return render.ToPDF(ctx, RenderSVG(s, opts...))
}

// RsvgCapturer captures surfaces by rendering SVG and converting it with
// rsvg-convert. PDF is produced when PDF is set, PNG otherwise.
type RsvgCapturer struct {
	Scale float64
	PDF   bool
}

// Format returns "pdf" or "png".
func (c RsvgCapturer) Format() string {
	if c.PDF {
		return "pdf"
	}
	return "png"
}

// Capture renders s through rsvg-convert.
func (c RsvgCapturer) Capture(ctx context.Context, s *Surface) ([]byte, error) {
	if s == nil {
		return nil, ErrNoSurface
	}
	if c.PDF {
		return RenderPDF(ctx, s)
	}
	scale := c.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	return RenderPNG(ctx, s, WithScale(scale), WithPNGSVGOptions(WithEmbeddedFont()))
}
