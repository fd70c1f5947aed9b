// Package edge builds the connector drawn from a parent commit to a child.
//
// A connector is straight when both ends share a lane (same x) or, in the
// degenerate case, a row (same y). Otherwise it is a single cubic Bézier whose
// two control points both sit at (to.X, from.Y): the line leaves the parent
// heading across to the child's lane and then rises vertically into the
// child. The arrowhead never follows the curve. It is a fixed triangle with
// its tip on the child and its base below, pointing toward newer commits.
//
// A merge commit gets two connectors, both produced by [Build].
package edge

import (
	"strconv"
	"strings"

	"github.com/matzehuels/branchdeck/pkg/render/layout"
)

// Shape is the kind of segment chosen for a connector.
type Shape int

const (
	Straight Shape = iota
	Curved
)

func (s Shape) String() string {
	if s == Curved {
		return "curved"
	}
	return "straight"
}

// Geometry holds the fixed arrowhead size. It comes from the style and the
// spacing, never from snapshot data.
type Geometry struct {
	ArrowLength    float64 // Tip to base, along y
	ArrowHalfWidth float64 // Half the base width, along x
}

// DefaultGeometry derives the arrowhead size from the grid spacing.
func DefaultGeometry(spacing float64) Geometry {
	return Geometry{
		ArrowLength:    spacing / 6,
		ArrowHalfWidth: spacing * 5 / 48,
	}
}

// Path is the connector line. C1 and C2 are only meaningful when Shape is
// Curved.
type Path struct {
	Shape    Shape
	From, To layout.Point
	C1, C2   layout.Point
}

// D returns the SVG path data for the connector.
func (p Path) D() string {
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, p.From)
	if p.Shape == Curved {
		b.WriteString(" C ")
		writePoint(&b, p.C1)
		b.WriteByte(' ')
		writePoint(&b, p.C2)
		b.WriteByte(' ')
	} else {
		b.WriteString(" L ")
	}
	writePoint(&b, p.To)
	return b.String()
}

// Arrowhead is a closed triangle. Tip is the destination point; Left and
// Right are the base corners.
type Arrowhead struct {
	Tip, Left, Right layout.Point
}

// Points returns the three corners tip first.
func (a Arrowhead) Points() [3]layout.Point { return [3]layout.Point{a.Tip, a.Left, a.Right} }

// D returns the SVG path data for the filled triangle.
func (a Arrowhead) D() string {
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, a.Tip)
	b.WriteString(" L ")
	writePoint(&b, a.Left)
	b.WriteString(" L ")
	writePoint(&b, a.Right)
	b.WriteString(" Z")
	return b.String()
}

// Edge is one drawable connector feeding into a commit.
type Edge struct {
	From, To string // Parent and child keys
	Path     Path
	Arrow    Arrowhead
}

// Build returns the path and arrowhead from one point to another.
func Build(from, to layout.Point, g Geometry) (Path, Arrowhead) {
	p := Path{Shape: Straight, From: from, To: to}
	if from.X != to.X && from.Y != to.Y {
		ctrl := layout.Point{X: to.X, Y: from.Y}
		p.Shape, p.C1, p.C2 = Curved, ctrl, ctrl
	}
	return p, NewArrowhead(to, g)
}

// NewArrowhead places an upward-pointing triangle with its tip at tip.
func NewArrowhead(tip layout.Point, g Geometry) Arrowhead {
	base := tip.Y + g.ArrowLength
	return Arrowhead{
		Tip:   tip,
		Left:  layout.Point{X: tip.X - g.ArrowHalfWidth, Y: base},
		Right: layout.Point{X: tip.X + g.ArrowHalfWidth, Y: base},
	}
}

func writePoint(b *strings.Builder, p layout.Point) {
	b.WriteString(num(p.X))
	b.WriteByte(' ')
	b.WriteString(num(p.Y))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
