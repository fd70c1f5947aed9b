package styles

import "bytes"

// Style defines the visual appearance of a commit graph page.
// Implementations control how commits, connectors, label rows and notes are
// drawn into SVG. Raster surfaces read the same [Theme] so both outputs agree.
type Style interface {
	// RenderDefs writes SVG <defs> content.
	RenderDefs(buf *bytes.Buffer)
	// RenderEdge writes one connector and its arrowhead.
	RenderEdge(buf *bytes.Buffer, e Edge)
	// RenderNode writes the dot for one commit.
	RenderNode(buf *bytes.Buffer, n Node)
	// RenderRow writes one label panel row: chips then description.
	RenderRow(buf *bytes.Buffer, r Row)
	// RenderNote writes one line of the snapshot annotation.
	RenderNote(buf *bytes.Buffer, n Note)
	// Theme returns the colors and sizes used by this style.
	Theme() Theme
}

// Node contains the data needed to draw one commit dot.
type Node struct {
	ID     string  // Commit key
	CX, CY float64 // Center
	R      float64 // Radius
}

// Edge contains the data needed to draw one connector.
type Edge struct {
	FromID, ToID string
	D            string     // Path data of the line
	ArrowD       string     // Path data of the arrowhead
	Arrow        [6]float64 // Arrowhead corners as x,y pairs, tip first
	Curve        [8]float64 // Start, control 1, control 2, end as x,y pairs
	Curved       bool
}

// Chip is one label badge in a row.
type Chip struct {
	Text       string
	X, Y, W, H float64 // Top-left corner and size
}

// Row contains one line of the label panel in absolute coordinates.
type Row struct {
	ID          string
	Y           float64 // Vertical center, aligned with the commit dot
	Chips       []Chip
	TextX       float64
	Description string
}

// Note is one line of annotation prose.
type Note struct {
	Text string
	X, Y float64 // Baseline start
}
