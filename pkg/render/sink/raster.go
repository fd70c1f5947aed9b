package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"

	"github.com/matzehuels/branchdeck/pkg/fonts"
)

// ErrNoSurface is returned by capturers asked to capture before anything
// was composed.
var ErrNoSurface = errors.New("no composed surface")

// DefaultScale is the pixel density used when a capturer has no scale set.
const DefaultScale = 2.0

// RasterCapturer draws surfaces with fogleman/gg and encodes PNG. It needs
// no external tools.
type RasterCapturer struct {
	Scale float64
}

// Format returns "png".
func (RasterCapturer) Format() string { return "png" }

// Capture renders s to PNG bytes.
func (c RasterCapturer) Capture(ctx context.Context, s *Surface) ([]byte, error) {
	if s == nil {
		return nil, ErrNoSurface
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scale := c.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	return RenderRaster(s, scale)
}

// RenderRaster draws s at the given scale and returns PNG bytes. Text uses
// the embedded Go Regular face sized for the scaled canvas so glyphs stay
// sharp instead of being resampled.
func RenderRaster(s *Surface, scale float64) ([]byte, error) {
	t := s.Style.Theme()
	w := int(math.Ceil(s.Width * scale))
	h := int(math.Ceil(s.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: empty canvas %dx%d", w, h)
	}

	rowFace, err := fonts.Face(s.FontSize() * scale)
	if err != nil {
		return nil, err
	}
	defer rowFace.Close()

	dc := gg.NewContext(w, h)
	p := func(v float64) float64 { return v * scale }

	dc.SetColor(namedColor(t.Background, color.White))
	dc.Clear()

	ink := namedColor(t.Ink, color.Black)
	dc.SetLineWidth(p(t.StrokeWidth))
	for _, e := range s.Edges() {
		setAlpha(dc, ink, t.EdgeOpacity)
		c := e.Curve
		dc.MoveTo(p(c[0]), p(c[1]))
		if e.Curved {
			dc.CubicTo(p(c[2]), p(c[3]), p(c[4]), p(c[5]), p(c[6]), p(c[7]))
		} else {
			dc.LineTo(p(c[6]), p(c[7]))
		}
		dc.Stroke()

		a := e.Arrow
		dc.MoveTo(p(a[0]), p(a[1]))
		dc.LineTo(p(a[2]), p(a[3]))
		dc.LineTo(p(a[4]), p(a[5]))
		dc.ClosePath()
		dc.Fill()
	}

	dc.SetColor(ink)
	for _, n := range s.Nodes() {
		dc.DrawCircle(p(n.CX), p(n.CY), p(n.R))
		dc.Fill()
	}

	dc.SetFontFace(rowFace)
	chip := namedColor(t.Chip, colornames.Lightblue)
	for _, r := range s.Rows() {
		for _, c := range r.Chips {
			dc.SetColor(chip)
			dc.DrawRoundedRectangle(p(c.X), p(c.Y), p(c.W), p(c.H), p(t.ChipRadius))
			dc.Fill()
			dc.SetColor(ink)
			dc.DrawStringAnchored(c.Text, p(c.X+t.ChipPadding), p(r.Y), 0, 0.35)
		}
		if r.Description != "" {
			dc.SetColor(ink)
			dc.DrawStringAnchored(r.Description, p(r.TextX), p(r.Y), 0, 0.35)
		}
	}

	if notes := s.Notes(); len(notes) > 0 {
		noteFace, err := fonts.Face(t.FontSize * scale)
		if err != nil {
			return nil, err
		}
		defer noteFace.Close()
		dc.SetFontFace(noteFace)
		dc.SetColor(ink)
		for _, n := range notes {
			dc.DrawString("• "+n.Text, p(n.X), p(n.Y))
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// namedColor resolves an SVG color keyword or #rrggbb value.
func namedColor(name string, fallback color.Color) color.Color {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := colornames.Map[name]; ok {
		return c
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		var r, g, b uint8
		if _, err := fmt.Sscanf(name, "#%02x%02x%02x", &r, &g, &b); err == nil {
			return color.RGBA{r, g, b, 0xff}
		}
	}
	return fallback
}

func setAlpha(dc *gg.Context, c color.Color, alpha float64) {
	r, g, b, _ := c.RGBA()
	dc.SetRGBA(float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff, alpha)
}
