package styles

import (
	"bytes"
	"fmt"
)

// Simple draws solid dots, translucent connectors and light blue chips, the
// look of a whiteboard branch diagram.
type Simple struct {
	T Theme
}

// NewSimple returns a Simple style with the default theme.
func NewSimple() Simple { return Simple{T: DefaultTheme()} }

func (s Simple) theme() Theme {
	if s.T == (Theme{}) {
		return DefaultTheme()
	}
	return s.T
}

func (s Simple) Theme() Theme { return s.theme() }

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (s Simple) RenderEdge(buf *bytes.Buffer, e Edge) {
	t := s.theme()
	id := EscapeXML(e.FromID + "-" + e.ToID)
	fmt.Fprintf(buf, `    <path id="edge-%s" class="edge" d="%s" fill="none" stroke="%s" stroke-width="%.2f" opacity="%.2f"/>`+"\n",
		id, e.D, t.Ink, t.StrokeWidth, t.EdgeOpacity)
	fmt.Fprintf(buf, `    <path class="arrow" d="%s" fill="%s" opacity="%.2f"/>`+"\n",
		e.ArrowD, t.Ink, t.EdgeOpacity)
}

func (s Simple) RenderNode(buf *bytes.Buffer, n Node) {
	fmt.Fprintf(buf, `    <circle id="commit-%s" class="commit" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="none"/>`+"\n",
		EscapeXML(n.ID), n.CX, n.CY, n.R, s.theme().Ink)
}

func (s Simple) RenderRow(buf *bytes.Buffer, r Row) {
	t := s.theme()
	fmt.Fprintf(buf, `    <g class="row" data-commit="%s">`+"\n", EscapeXML(r.ID))
	for _, c := range r.Chips {
		fmt.Fprintf(buf, `      <rect class="chip" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s"/>`+"\n",
			c.X, c.Y, c.W, c.H, t.ChipRadius, t.Chip)
		fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" dominant-baseline="central" fill="%s">%s</text>`+"\n",
			c.X+t.ChipPadding, r.Y, t.Ink, EscapeXML(c.Text))
	}
	if r.Description != "" {
		fmt.Fprintf(buf, `      <text class="description" x="%.2f" y="%.2f" dominant-baseline="central" fill="%s">%s</text>`+"\n",
			r.TextX, r.Y, t.Ink, EscapeXML(r.Description))
	}
	buf.WriteString("    </g>\n")
}

func (s Simple) RenderNote(buf *bytes.Buffer, n Note) {
	fmt.Fprintf(buf, `    <text class="note" x="%.2f" y="%.2f" fill="%s">• %s</text>`+"\n",
		n.X, n.Y, s.theme().Ink, EscapeXML(n.Text))
}
