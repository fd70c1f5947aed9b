// Package sink provides output surfaces and capturers for composed scenes.
//
// # Overview
//
// A [Surface] places a [scene.Scene] on a canvas: commit dots and connectors
// on the left, the label panel to their right, optional notes below. Every
// renderer in this package draws from the same surface, so all formats show
// the same picture:
//
//   - SVG: [RenderSVG], the primary vector output
//   - JSON: [RenderJSON], the composed scene as data
//   - DOT: [ToDOT], Graphviz source with pinned positions
//   - PNG: [RenderRaster] (pure Go) or [RenderPNG] (rsvg-convert)
//   - PDF: [RenderPDF] (rsvg-convert)
//
// Basic usage:
//
//	surface := sink.NewSurface(sc, sink.WithNotes())
//	svg := sink.RenderSVG(surface, sink.WithInteraction())
//
// # Capturers
//
// A capturer turns a surface into encoded image bytes. Capturers are what
// the export bridge hands surfaces to:
//
//   - [RasterCapturer]: fogleman/gg with the embedded Go Regular face
//   - [RsvgCapturer]: SVG through rsvg-convert, PNG or PDF
//   - [GraphvizCapturer]: DOT through the embedded Graphviz engine
//
// All capturers return [ErrNoSurface] for a nil surface.
//
// The rsvg-based outputs require librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [scene.Scene]: github.com/matzehuels/branchdeck/pkg/render/scene.Scene
package sink
