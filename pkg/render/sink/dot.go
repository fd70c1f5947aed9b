package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

const pointsPerInch = 72.0

// ToDOT converts a surface to Graphviz DOT. Every commit is pinned at its
// surface position (pos="x,y!" in inches, y flipped for Graphviz), so neato
// reproduces the lane layout instead of computing its own. Labels and the
// description become an external label beside the dot.
func ToDOT(s *Surface) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  forcelabels=true;\n")
	if s == nil {
		buf.WriteString("}\n")
		return buf.String()
	}
	t := s.Style.Theme()

	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fillcolor=%q, color=%q, label=\"\", fixedsize=true, width=%.3f];\n",
		t.Ink, t.Ink, 2*s.Scene.NodeRadius()/pointsPerInch)
	fmt.Fprintf(&buf, "  edge [color=\"%s%02x\", penwidth=%.1f, arrowsize=0.4];\n",
		hexColor(t.Ink), int(t.EdgeOpacity*255), t.StrokeWidth)
	buf.WriteString("\n")

	xlabels := make(map[string]string, len(s.Rows()))
	for _, r := range s.Rows() {
		parts := make([]string, 0, len(r.Chips)+1)
		for _, c := range r.Chips {
			parts = append(parts, "["+c.Text+"]")
		}
		if r.Description != "" {
			parts = append(parts, r.Description)
		}
		xlabels[r.ID] = strings.Join(parts, " ")
	}

	for _, n := range s.Nodes() {
		x := n.CX / pointsPerInch
		y := (s.Height - n.CY) / pointsPerInch
		attrs := []string{fmt.Sprintf("pos=\"%.3f,%.3f!\"", x, y)}
		if xl := xlabels[n.ID]; xl != "" {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", xl))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.FromID, e.ToID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOT renders DOT source with Graphviz's neato engine in the given
// output format.
func RenderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// GraphvizCapturer captures surfaces by rendering their DOT form to PNG
// with the embedded Graphviz engine.
type GraphvizCapturer struct{}

// Format returns "png".
func (GraphvizCapturer) Format() string { return "png" }

// Capture renders s through Graphviz.
func (GraphvizCapturer) Capture(ctx context.Context, s *Surface) ([]byte, error) {
	if s == nil {
		return nil, ErrNoSurface
	}
	return RenderDOT(ctx, ToDOT(s), graphviz.PNG)
}

func hexColor(name string) string {
	c := namedColor(name, nil)
	if c == nil {
		return "#000000"
	}
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
