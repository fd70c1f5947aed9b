package styles

import (
	"bytes"
	"strings"
	"testing"
)

func TestSimpleRenderDefs(t *testing.T) {
	var buf bytes.Buffer
	NewSimple().RenderDefs(&buf)

	if buf.Len() != 0 {
		t.Errorf("RenderDefs() wrote %d bytes, want 0", buf.Len())
	}
}

func TestSimpleRenderNode(t *testing.T) {
	var buf bytes.Buffer
	NewSimple().RenderNode(&buf, Node{ID: "c<0>", CX: 10, CY: 30, R: 20.0 / 6})
	out := buf.String()

	for _, want := range []string{
		`<circle`,
		`id="commit-c&lt;0&gt;"`,
		`cx="10.00"`,
		`cy="30.00"`,
		`r="3.33"`,
		`fill="black"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderNode() output missing %q\nGot: %s", want, out)
		}
	}
}

func TestSimpleRenderEdge(t *testing.T) {
	var buf bytes.Buffer
	NewSimple().RenderEdge(&buf, Edge{
		FromID: "c0", ToID: "c1",
		D:      "M 0 40 L 0 20",
		ArrowD: "M 0 20 L -2.08 23.33 L 2.08 23.33 Z",
	})
	out := buf.String()

	for _, want := range []string{
		`id="edge-c0-c1"`,
		`d="M 0 40 L 0 20"`,
		`fill="none"`,
		`stroke-width="2.00"`,
		`opacity="0.30"`,
		`class="arrow"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderEdge() output missing %q\nGot: %s", want, out)
		}
	}
}

func TestSimpleRenderRow(t *testing.T) {
	tests := []struct {
		name     string
		row      Row
		contains []string
		absent   []string
	}{
		{
			name: "chips and description",
			row: Row{
				ID: "c0", Y: 50,
				Chips: []Chip{
					{Text: "cl1-QA", X: 100, Y: 41, W: 54.2, H: 18},
					{Text: "cl1-UAT", X: 162.2, Y: 41, W: 61.9, H: 18},
				},
				TextX: 232.1, Description: "initial",
			},
			contains: []string{
				`data-commit="c0"`,
				`fill="lightblue"`,
				`rx="6.00"`,
				`>cl1-QA</text>`,
				`>cl1-UAT</text>`,
				`class="description"`,
				`>initial</text>`,
			},
		},
		{
			name:     "no description",
			row:      Row{ID: "f1_0", Y: 10, Chips: []Chip{{Text: "F1"}}},
			contains: []string{`>F1</text>`},
			absent:   []string{`class="description"`},
		},
		{
			name:     "escaped text",
			row:      Row{ID: "q", Description: "merge <F1> & <F2>"},
			contains: []string{`merge &lt;F1&gt; &amp; &lt;F2&gt;`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewSimple().RenderRow(&buf, tt.row)
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("RenderRow() output missing %q\nGot: %s", want, out)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(out, bad) {
					t.Errorf("RenderRow() output has unexpected %q", bad)
				}
			}
		})
	}
}

func TestSimpleZeroValueUsesDefaultTheme(t *testing.T) {
	if got := (Simple{}).Theme(); got != DefaultTheme() {
		t.Errorf("Theme() = %+v, want default", got)
	}
}
