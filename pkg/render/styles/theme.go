package styles

// Theme holds the constant visual parameters shared by every surface.
// None of these depend on snapshot data.
type Theme struct {
	Background  string
	Ink         string  // Dots, connectors and text
	Chip        string  // Label chip fill
	EdgeOpacity float64 // Connector and arrowhead opacity
	StrokeWidth float64
	FontSize    float64 // Chip and description text
	FontFamily  string
	ChipRadius  float64
	ChipPadding float64 // Horizontal padding inside a chip
	ChipGap     float64 // Space after each chip
}

// DefaultTheme returns the plain light theme.
func DefaultTheme() Theme {
	return Theme{
		Background:  "white",
		Ink:         "black",
		Chip:        "lightblue",
		EdgeOpacity: 0.3,
		StrokeWidth: 2,
		FontSize:    14,
		FontFamily:  "sans-serif",
		ChipRadius:  6,
		ChipPadding: 4,
		ChipGap:     8,
	}
}

// RowFontSize returns the text size for rows of the given height, capped so
// chips never overflow their row.
func (t Theme) RowFontSize(rowHeight float64) float64 {
	return max(fontSizeMin, min(t.FontSize, rowHeight*fontHeightRatio))
}

// NoteLineHeight returns the line advance for annotation prose.
func (t Theme) NoteLineHeight() float64 { return t.FontSize * 1.4 }
