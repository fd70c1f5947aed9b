package sink

import (
	"encoding/json"
)

type jsonOutput struct {
	Title   string     `json:"title,omitempty"`
	Notes   []string   `json:"notes,omitempty"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Spacing float64    `json:"spacing"`
	Margin  float64    `json:"margin"`
	Nodes   []jsonNode `json:"nodes"`
	Edges   []jsonEdge `json:"edges"`
	Rows    []jsonRow  `json:"rows"`
}

type jsonNode struct {
	Key  string  `json:"key"`
	Lane int     `json:"lane"`
	Seq  int     `json:"seq"`
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type jsonEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Shape string `json:"shape"`
	Path  string `json:"path"`
	Arrow string `json:"arrow"`
}

type jsonRow struct {
	Key         string   `json:"key"`
	Y           float64  `json:"y"`
	Labels      []string `json:"labels"`
	Description string   `json:"description,omitempty"`
}

// RenderJSON exports the scene behind the surface as a pretty-printed JSON
// document. Coordinates are scene coordinates (before the canvas offset), so
// external tools see exactly what the composer produced:
//
//   - one node per commit in sequence order, with lane, seq and position
//   - one edge per parent link, with its shape and SVG path data
//   - the label rows newest first, with their aligned y
//
// RenderJSON returns an error only if marshaling fails. It is safe to call
// concurrently.
func RenderJSON(s *Surface) ([]byte, error) {
	out := jsonOutput{Nodes: []jsonNode{}, Edges: []jsonEdge{}, Rows: []jsonRow{}}
	if s != nil {
		sc := s.Scene
		out.Title, out.Notes = sc.Title, sc.Notes
		out.Width, out.Height = sc.Extent.Width, sc.Extent.Height
		out.Spacing, out.Margin = sc.Spacing, sc.Margin

		for _, m := range sc.Marks {
			out.Nodes = append(out.Nodes, jsonNode{
				Key: m.Key, Lane: m.Lane, Seq: m.Seq, Kind: m.Kind.String(),
				X: m.Point.X, Y: m.Point.Y,
			})
		}
		for _, e := range sc.Edges() {
			out.Edges = append(out.Edges, jsonEdge{
				From: e.From, To: e.To, Shape: e.Path.Shape.String(),
				Path: e.Path.D(), Arrow: e.Arrow.D(),
			})
		}
		for _, r := range sc.Rows {
			labels := r.Labels
			if labels == nil {
				labels = []string{}
			}
			out.Rows = append(out.Rows, jsonRow{Key: r.Key, Y: r.Y, Labels: labels, Description: r.Description})
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
