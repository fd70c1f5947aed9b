// Package fonts provides the embedded Go Regular typeface for page text.
//
// The font ships with golang.org/x/image, so raster captures render the
// same glyphs on every machine without a system font lookup. SVG output can
// embed the same bytes as a data URL so that rsvg-convert and browsers agree
// with the raster capturer on metrics.
package fonts

import (
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family name used when the font is embedded.
const FontFamily = "Go Regular"

// FallbackFontFamily lists fallbacks for viewers that ignore @font-face.
const FallbackFontFamily = `'Go Regular', 'Helvetica Neue', Arial, sans-serif`

// RegularTTF returns the TTF font data.
func RegularTTF() []byte {
	return goregular.TTF
}

var (
	regular     *opentype.Font
	regularErr  error
	regularOnce sync.Once

	ttfBase64     string
	ttfBase64Once sync.Once
)

// Regular returns the parsed font. Parsing happens once.
func Regular() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = opentype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// Face returns a face of the given size in points at 72 DPI, so one point
// equals one user unit of the page.
func Face(size float64) (font.Face, error) {
	f, err := Regular()
	if err != nil {
		return nil, fmt.Errorf("parse go regular: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face %.1fpt: %w", size, err)
	}
	return face, nil
}

// RegularTTFBase64 returns the TTF data as a base64 string.
// The result is cached after first computation.
func RegularTTFBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}
