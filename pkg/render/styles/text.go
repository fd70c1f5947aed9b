package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"unicode/utf8"
)

const (
	fontHeightRatio = 0.7
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
)

// TextWidth estimates the rendered width of s at the given font size.
// SVG output has no font metrics available, so the estimate uses an average
// glyph width; raster surfaces measure real glyphs instead.
func TextWidth(s string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(s)) * fontSize * fontCharWidth
}

// ChipWidth returns the width of a chip holding label.
func (t Theme) ChipWidth(label string, fontSize float64) float64 {
	return TextWidth(label, fontSize) + 2*t.ChipPadding
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// WrapGroup writes fn's output inside a <g> with the given attributes.
func WrapGroup(buf *bytes.Buffer, attrs string, fn func()) {
	fmt.Fprintf(buf, "  <g %s>\n", attrs)
	fn()
	buf.WriteString("  </g>\n")
}
