package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/branchdeck/pkg/commitgraph"
	"github.com/matzehuels/branchdeck/pkg/render/edge"
	"github.com/matzehuels/branchdeck/pkg/render/layout"
	"github.com/matzehuels/branchdeck/pkg/render/scene"
)

func testSurface(t *testing.T, opts ...SurfaceOption) *Surface {
	t.Helper()
	m := layout.NewMapper()
	sc, err := scene.ComposeSnapshot(commitgraph.Snapshot{
		Title: "Merge F2",
		Commits: []commitgraph.Commit{
			{Key: "c0", Labels: []string{"cl1-UAT", "cl1-Prod"}, Description: "initial"},
			{Key: "f1_0", Parent: "c0", Labels: []string{"cl1-F1"}},
			{Key: "f2_0", Lane: 1, Parent: "c0", Labels: []string{"cl1-F2"}},
			{Key: "q2", Parent: "f2_0", Parent2: "f1_0", Labels: []string{"cl1-QA"}, Description: "Merged F2 into QA"},
		},
		Annotation: commitgraph.Annotation{Notes: []string{"F2 is merged after F1"}},
	}, m, edge.DefaultGeometry(m.Spacing))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	return NewSurface(sc, opts...)
}

func TestNewSurfaceGeometry(t *testing.T) {
	s := testSurface(t)

	if len(s.Nodes()) != 4 || len(s.Edges()) != 4 || len(s.Rows()) != 4 {
		t.Fatalf("nodes=%d edges=%d rows=%d, want 4/4/4", len(s.Nodes()), len(s.Edges()), len(s.Rows()))
	}

	// Rows are newest first and share the y of their commit.
	for i, r := range s.Rows() {
		n := s.Nodes()[len(s.Nodes())-1-i]
		if r.ID != n.ID || r.Y != n.CY {
			t.Errorf("row %d = %s@%g, want %s@%g", i, r.ID, r.Y, n.ID, n.CY)
		}
	}

	// The graph is offset by half the margin.
	if c0 := s.Nodes()[0]; c0.CX != 20 || c0.CY != 80 {
		t.Errorf("c0 at (%g,%g), want (20,80)", c0.CX, c0.CY)
	}

	// The label panel starts right of the graph extent.
	if x := s.Rows()[0].Chips[0].X; x != s.Scene.Extent.Width {
		t.Errorf("panel x = %g, want %g", x, s.Scene.Extent.Width)
	}
	if s.Width <= s.Scene.Extent.Width {
		t.Errorf("Width = %g, want wider than graph %g", s.Width, s.Scene.Extent.Width)
	}
	if s.Height != s.Scene.Extent.Height {
		t.Errorf("Height = %g, want %g without notes", s.Height, s.Scene.Extent.Height)
	}
	if len(s.Notes()) != 0 {
		t.Error("notes drawn without WithNotes")
	}
}

func TestNewSurfaceNotes(t *testing.T) {
	s := testSurface(t, WithNotes())
	if len(s.Notes()) != 1 {
		t.Fatalf("Notes() = %d, want 1", len(s.Notes()))
	}
	if s.Height <= s.Scene.Extent.Height {
		t.Errorf("Height = %g, want room for notes", s.Height)
	}
}

func TestNewSurfaceNil(t *testing.T) {
	if NewSurface(nil) != nil {
		t.Error("NewSurface(nil) != nil")
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testSurface(t, WithNotes()), WithInteraction()))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`<title>Merge F2</title>`,
		`id="commit-q2"`,
		`id="edge-f2_0-q2"`,
		`id="edge-f1_0-q2"`,
		`data-commit="c0"`,
		`>cl1-Prod</text>`,
		`>Merged F2 into QA</text>`,
		`class="note"`,
		`<script type="text/javascript">`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("RenderSVG() not closed")
	}

	// Curved connector from lane 0 to lane 1: control points at (to.X, from.Y).
	if !strings.Contains(svg, `d="M 20 80 C 40 80 40 80 40 40"`) {
		t.Errorf("RenderSVG() missing curved c0->f2_0 path\n%s", svg)
	}
}

func TestRenderSVGEmbeddedFont(t *testing.T) {
	svg := string(RenderSVG(testSurface(t), WithEmbeddedFont()))
	if !strings.Contains(svg, "@font-face") || !strings.Contains(svg, "data:font/ttf;base64,") {
		t.Error("RenderSVG() did not embed the font")
	}
}

func TestRenderSVGNil(t *testing.T) {
	if svg := string(RenderSVG(nil)); !strings.Contains(svg, `width="0"`) {
		t.Errorf("RenderSVG(nil) = %q", svg)
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testSurface(t))
	if err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Title != "Merge F2" || len(out.Nodes) != 4 || len(out.Edges) != 4 || len(out.Rows) != 4 {
		t.Errorf("got title=%q nodes=%d edges=%d rows=%d", out.Title, len(out.Nodes), len(out.Edges), len(out.Rows))
	}
	if out.Rows[0].Key != "q2" || out.Nodes[3].Kind != "merge" {
		t.Errorf("row 0 = %s, node 3 kind = %s", out.Rows[0].Key, out.Nodes[3].Kind)
	}
	if out.Edges[1].Shape != "curved" {
		t.Errorf("edge c0->f2_0 shape = %s, want curved", out.Edges[1].Shape)
	}
}

func TestRenderJSONNil(t *testing.T) {
	data, err := RenderJSON(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"nodes": []`)) {
		t.Errorf("RenderJSON(nil) = %s", data)
	}
}

func TestRasterCapturer(t *testing.T) {
	s := testSurface(t, WithNotes())
	data, err := RasterCapturer{Scale: 1.5}.Capture(context.Background(), s)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if wantW := int(math.Ceil(s.Width * 1.5)); b.Dx() != wantW {
		t.Errorf("width = %d, want %d", b.Dx(), wantW)
	}
}

func TestCapturersRejectNilSurface(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]interface {
		Capture(context.Context, *Surface) ([]byte, error)
	}{
		"raster":   RasterCapturer{},
		"rsvg":     RsvgCapturer{},
		"graphviz": GraphvizCapturer{},
	} {
		if _, err := c.Capture(ctx, nil); !errors.Is(err, ErrNoSurface) {
			t.Errorf("%s: Capture(nil) error = %v, want ErrNoSurface", name, err)
		}
	}
}

func TestRasterCapturerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (RasterCapturer{}).Capture(ctx, testSurface(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Capture() error = %v, want context.Canceled", err)
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testSurface(t))

	for _, want := range []string{
		"digraph G {",
		"layout=neato;",
		`"c0" [pos=`,
		`!"`,
		`xlabel="[cl1-UAT] [cl1-Prod] initial"`,
		`"f2_0" -> "q2";`,
		`"f1_0" -> "q2";`,
		`color="#0000004c"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
}

func TestGraphvizCapturer(t *testing.T) {
	data, err := GraphvizCapturer{}.Capture(context.Background(), testSurface(t))
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("Capture() output is not a PNG")
	}
}

func TestNamedColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"black", "#000000"},
		{"LightBlue", "#add8e6"},
		{"#1565c0", "#1565c0"},
		{"no-such-color", "#000000"},
	}
	for _, tt := range tests {
		if got := hexColor(tt.in); got != tt.want {
			t.Errorf("hexColor(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFreeTextKeysAreEscaped(t *testing.T) {
	m := layout.NewMapper()
	sc, err := scene.ComposeSnapshot(commitgraph.Snapshot{
		Commits: []commitgraph.Commit{
			{Key: "feature one", Labels: []string{"release candidate"}},
			{Key: `<a&"b">`, Lane: 1, Parent: "feature one"},
		},
	}, m, edge.DefaultGeometry(m.Spacing))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	s := NewSurface(sc)

	svg := string(RenderSVG(s))
	if !strings.Contains(svg, `data-commit="&lt;a&amp;&#34;b&#34;&gt;"`) {
		t.Errorf("SVG does not carry the escaped key\n%s", svg)
	}
	if strings.Contains(svg, `<a&`) {
		t.Error("SVG contains the raw key")
	}

	dot := ToDOT(s)
	if !strings.Contains(dot, `"feature one" -> "<a&\"b\">";`) {
		t.Errorf("DOT edge not quoted\n%s", dot)
	}
}
