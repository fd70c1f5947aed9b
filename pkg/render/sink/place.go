package sink

import (
	"github.com/matzehuels/branchdeck/pkg/render/edge"
	"github.com/matzehuels/branchdeck/pkg/render/layout"
	"github.com/matzehuels/branchdeck/pkg/render/styles"
)

// placeEdge shifts a scene connector by the canvas offset o.
func placeEdge(from, to string, p edge.Path, a edge.Arrowhead, o float64) styles.Edge {
	shift := func(pt layout.Point) layout.Point { return layout.Point{X: pt.X + o, Y: pt.Y + o} }

	p.From, p.To, p.C1, p.C2 = shift(p.From), shift(p.To), shift(p.C1), shift(p.C2)
	a.Tip, a.Left, a.Right = shift(a.Tip), shift(a.Left), shift(a.Right)

	e := styles.Edge{
		FromID: from, ToID: to,
		D:      p.D(),
		ArrowD: a.D(),
		Curved: p.Shape == edge.Curved,
		Curve:  [8]float64{p.From.X, p.From.Y, p.C1.X, p.C1.Y, p.C2.X, p.C2.Y, p.To.X, p.To.Y},
	}
	for i, pt := range a.Points() {
		e.Arrow[2*i], e.Arrow[2*i+1] = pt.X, pt.Y
	}
	return e
}
