// Package scene composes a validated commit graph into drawable geometry.
//
// [Compose] walks the graph once in sequence order. For each commit it emits
// a [Mark] at the mapped position together with the connectors feeding into
// it (first parent before second). It then emits one [LabelRow] per commit in
// reverse order, newest first, so that row i read from the top sits at the
// same y as the commit with sequence index n-1-i. Row height equals the
// mapper spacing, which keeps the label panel and the graph in lockstep as
// the snapshot grows.
//
// Scenes are recomputed wholesale on every snapshot change. Composition is
// a pure function: the same graph and mapper always produce an identical
// scene.
package scene

import (
	"github.com/matzehuels/branchdeck/pkg/commitgraph"
	"github.com/matzehuels/branchdeck/pkg/render/edge"
	"github.com/matzehuels/branchdeck/pkg/render/layout"
)

// Mark is the drawing for one commit: its point and the zero, one or two
// connectors arriving at it.
type Mark struct {
	Key      string
	Lane     int
	Seq      int
	Kind     commitgraph.AncestryKind
	Point    layout.Point
	Incoming []edge.Edge
}

// LabelRow is one line of the label panel. Labels keep their declared order
// and are not deduplicated; they are drawn as chips before Description.
type LabelRow struct {
	Key         string
	Y           float64
	Labels      []string
	Description string
}

// Scene is the complete, ready-to-draw result for one snapshot.
type Scene struct {
	Title   string
	Notes   []string
	Marks   []Mark     // Sequence order, oldest first
	Rows    []LabelRow // Newest first
	Extent  layout.Extent
	Spacing float64
	Margin  float64
}

// Compose lays out g with m and builds its connectors with geo.
func Compose(g *commitgraph.Graph, m layout.Mapper, geo edge.Geometry) *Scene {
	nodes := g.Nodes()
	maxSeq := g.MaxSeq()

	s := &Scene{
		Title:   g.Title(),
		Notes:   append([]string(nil), g.Annotation().Notes...),
		Marks:   make([]Mark, 0, len(nodes)),
		Rows:    make([]LabelRow, len(nodes)),
		Extent:  m.Extent(g.MaxLane(), len(nodes)),
		Spacing: m.Spacing,
		Margin:  m.Margin,
	}

	points := make(map[string]layout.Point, len(nodes))
	for _, n := range nodes {
		pt := m.Position(n.Lane, n.Seq, maxSeq)
		points[n.Key] = pt

		mark := Mark{Key: n.Key, Lane: n.Lane, Seq: n.Seq, Kind: n.Ancestry.Kind, Point: pt}
		for _, parent := range n.Ancestry.Keys() {
			path, arrow := edge.Build(points[parent], pt, geo)
			mark.Incoming = append(mark.Incoming, edge.Edge{From: parent, To: n.Key, Path: path, Arrow: arrow})
		}
		s.Marks = append(s.Marks, mark)
	}

	for i, n := range nodes {
		row := len(nodes) - 1 - i
		s.Rows[row] = LabelRow{
			Key:         n.Key,
			Y:           m.RowY(row),
			Labels:      append([]string(nil), n.Labels...),
			Description: n.Description,
		}
	}
	return s
}

// ComposeSnapshot validates s and composes it. On validation failure it
// returns the error and no scene; a partial scene is never produced.
func ComposeSnapshot(s commitgraph.Snapshot, m layout.Mapper, geo edge.Geometry) (*Scene, error) {
	g, err := commitgraph.Build(s)
	if err != nil {
		return nil, err
	}
	return Compose(g, m, geo), nil
}

// Edges returns every connector in drawing order.
func (s *Scene) Edges() []edge.Edge {
	var out []edge.Edge
	for _, m := range s.Marks {
		out = append(out, m.Incoming...)
	}
	return out
}

// NodeCount returns the number of commit marks.
func (s *Scene) NodeCount() int { return len(s.Marks) }

// EdgeCount returns the number of connectors.
func (s *Scene) EdgeCount() int {
	n := 0
	for _, m := range s.Marks {
		n += len(m.Incoming)
	}
	return n
}

// NodeRadius returns the radius of a commit dot.
func (s *Scene) NodeRadius() float64 { return s.Spacing / 6 }

// Mark returns the mark for key.
func (s *Scene) Mark(key string) (Mark, bool) {
	for _, m := range s.Marks {
		if m.Key == key {
			return m, true
		}
	}
	return Mark{}, false
}
