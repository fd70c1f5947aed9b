package layout

import "fmt"

// Default geometry, in user units.
const (
	DefaultSpacing = 20.0
	DefaultMargin  = 40.0
)

// Point is a position on the drawing plane. Y grows downward as in SVG.
type Point struct {
	X, Y float64
}

func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// Extent is the canvas size needed to frame a drawing, margin included.
type Extent struct {
	Width, Height float64
}

// Mapper converts (lane, sequence index) pairs into points.
type Mapper struct {
	Spacing float64 // Distance between adjacent lanes and rows
	Margin  float64 // Total padding added to each canvas dimension
}

// NewMapper returns a Mapper with the default spacing and margin.
func NewMapper() Mapper {
	return Mapper{Spacing: DefaultSpacing, Margin: DefaultMargin}
}

// Position returns the point for a commit at lane and seq in a snapshot
// whose highest sequence index is maxSeq.
func (m Mapper) Position(lane, seq, maxSeq int) Point {
	return Point{
		X: float64(lane) * m.Spacing,
		Y: float64(maxSeq-seq) * m.Spacing,
	}
}

// RowY returns the y of the label row at index row counted from the top.
// Row 0 holds the newest commit, so RowY(i) equals the y of sequence
// index count-1-i for any snapshot of count commits.
func (m Mapper) RowY(row int) float64 {
	return float64(row) * m.Spacing
}

// Extent returns the canvas size for count commits spread over lanes
// 0..maxLane. An empty snapshot (maxLane -1, count 0) yields just the margin.
func (m Mapper) Extent(maxLane, count int) Extent {
	return Extent{
		Width:  float64(maxLane+1)*m.Spacing + m.Margin,
		Height: float64(count)*m.Spacing + m.Margin,
	}
}

// Validate reports whether the mapper can produce a non-degenerate layout.
func (m Mapper) Validate() error {
	if m.Spacing <= 0 {
		return fmt.Errorf("spacing must be positive, got %g", m.Spacing)
	}
	if m.Margin < 0 {
		return fmt.Errorf("margin must be non-negative, got %g", m.Margin)
	}
	return nil
}
