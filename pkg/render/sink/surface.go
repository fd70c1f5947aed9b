package sink

import (
	"github.com/matzehuels/branchdeck/pkg/render/scene"
	"github.com/matzehuels/branchdeck/pkg/render/styles"
)

// SurfaceOption configures a [Surface].
type SurfaceOption func(*surfaceConfig)

type surfaceConfig struct {
	style styles.Style
	notes bool
}

// WithStyle sets the visual style (default [styles.Simple]).
func WithStyle(s styles.Style) SurfaceOption { return func(c *surfaceConfig) { c.style = s } }

// WithNotes draws the snapshot annotation below the graph.
func WithNotes() SurfaceOption { return func(c *surfaceConfig) { c.notes = true } }

// Surface is a composed scene placed on a canvas: the graph on the left,
// the label panel to its right and optional notes underneath. All
// primitives are in absolute canvas coordinates so every output format
// draws the same picture.
//
// A Surface is immutable and safe to share between goroutines.
type Surface struct {
	Scene         *scene.Scene
	Style         styles.Style
	Width, Height float64

	nodes []styles.Node
	edges []styles.Edge
	rows  []styles.Row
	notes []styles.Note
}

// NewSurface places sc on a canvas. A nil scene yields a nil surface, which
// capturers treat as "nothing composed yet".
func NewSurface(sc *scene.Scene, opts ...SurfaceOption) *Surface {
	if sc == nil {
		return nil
	}
	cfg := surfaceConfig{style: styles.NewSimple()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Surface{Scene: sc, Style: cfg.style}
	t := cfg.style.Theme()
	o := sc.Margin / 2

	for _, m := range sc.Marks {
		s.nodes = append(s.nodes, styles.Node{
			ID: m.Key, CX: o + m.Point.X, CY: o + m.Point.Y, R: sc.NodeRadius(),
		})
	}
	for _, e := range sc.Edges() {
		s.edges = append(s.edges, placeEdge(e.From, e.To, e.Path, e.Arrow, o))
	}

	panelX := sc.Extent.Width
	panelW := 0.0
	fs := t.RowFontSize(sc.Spacing)
	chipH := max(fs, sc.Spacing-2)
	for _, r := range sc.Rows {
		y := o + r.Y
		row := styles.Row{ID: r.Key, Y: y, Description: r.Description}
		x := panelX
		for _, l := range r.Labels {
			w := t.ChipWidth(l, fs)
			row.Chips = append(row.Chips, styles.Chip{Text: l, X: x, Y: y - chipH/2, W: w, H: chipH})
			x += w + t.ChipGap
		}
		row.TextX = x + t.ChipPadding
		end := row.TextX
		if r.Description != "" {
			end += styles.TextWidth(r.Description, fs) + t.ChipPadding
		}
		panelW = max(panelW, end-panelX)
		s.rows = append(s.rows, row)
	}

	s.Width = panelX + panelW + o
	s.Height = sc.Extent.Height

	if cfg.notes && len(sc.Notes) > 0 {
		lh := t.NoteLineHeight()
		top := sc.Extent.Height
		for i, n := range sc.Notes {
			note := styles.Note{Text: n, X: o, Y: top + float64(i+1)*lh}
			s.notes = append(s.notes, note)
			s.Width = max(s.Width, o+styles.TextWidth("• "+n, t.FontSize)+o)
		}
		s.Height = top + float64(len(sc.Notes))*lh + o
	}
	return s
}

// Title returns the snapshot title.
func (s *Surface) Title() string { return s.Scene.Title }

// Nodes returns the commit dots in sequence order.
func (s *Surface) Nodes() []styles.Node { return s.nodes }

// Edges returns the connectors in drawing order.
func (s *Surface) Edges() []styles.Edge { return s.edges }

// Rows returns the label rows, newest first.
func (s *Surface) Rows() []styles.Row { return s.rows }

// Notes returns the annotation lines, empty unless [WithNotes] was given.
func (s *Surface) Notes() []styles.Note { return s.notes }

// FontSize returns the row text size used for this surface.
func (s *Surface) FontSize() float64 { return s.Style.Theme().RowFontSize(s.Scene.Spacing) }
