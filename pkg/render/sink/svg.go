package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/branchdeck/pkg/fonts"
	"github.com/matzehuels/branchdeck/pkg/render/styles"
)

const rowInteractionCSS = `
    .commit { transition: r 0.2s ease; }
    .commit.highlight { stroke: black; stroke-width: 2; }
    .row.highlight text { font-weight: bold; }`

const rowInteractionJS = `
    function highlight(key) {
      document.querySelectorAll('.commit').forEach(c => c.classList.toggle('highlight', c.id === 'commit-' + key));
      document.querySelectorAll('.row').forEach(r => r.classList.toggle('highlight', r.dataset.commit === key));
    }
    function clearHighlight() {
      document.querySelectorAll('.commit, .row').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.row').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.commit));
      el.addEventListener('mouseleave', clearHighlight);
    });
    document.querySelectorAll('.commit').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('commit-', '')));
      el.addEventListener('mouseleave', clearHighlight);
    });`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	interactive bool
	embedFont   bool
}

// WithInteraction links each label row to its commit dot on hover.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithEmbeddedFont embeds Go Regular as a data URL so every viewer uses the
// same glyphs as the raster capturer.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// RenderSVG draws the surface as a standalone SVG document. A nil surface
// renders an empty canvas.
func RenderSVG(s *Surface, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	if s == nil {
		buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 0 0" width="0" height="0"></svg>` + "\n")
		return buf.Bytes()
	}

	t := s.Style.Theme()
	family := t.FontFamily
	if r.embedFont {
		family = fonts.FallbackFontFamily
	}

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s" font-size="%.1f">`+"\n",
		s.Width, s.Height, s.Width, s.Height, styles.EscapeXML(family), s.FontSize())
	if title := s.Title(); title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", styles.EscapeXML(title))
	}
	if r.embedFont {
		renderFontFace(&buf)
	}
	s.Style.RenderDefs(&buf)
	fmt.Fprintf(&buf, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", t.Background)

	renderContent(&buf, s)
	if r.interactive {
		renderRowInteraction(&buf)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderContent(buf *bytes.Buffer, s *Surface) {
	styles.WrapGroup(buf, `class="graph"`, func() {
		for _, e := range s.Edges() {
			s.Style.RenderEdge(buf, e)
		}
		for _, n := range s.Nodes() {
			s.Style.RenderNode(buf, n)
		}
	})
	styles.WrapGroup(buf, `class="labels"`, func() {
		for _, r := range s.Rows() {
			s.Style.RenderRow(buf, r)
		}
	})
	if notes := s.Notes(); len(notes) > 0 {
		styles.WrapGroup(buf, `class="notes"`, func() {
			for _, n := range notes {
				s.Style.RenderNote(buf, n)
			}
		})
	}
}

func renderFontFace(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>@font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }</style>\n",
		fonts.FontFamily, fonts.RegularTTFBase64())
}

func renderRowInteraction(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", rowInteractionCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", rowInteractionJS)
}
