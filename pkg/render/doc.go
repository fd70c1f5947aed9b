// Package render provides page rendering for commit graph decks.
//
// # Overview
//
// This package contains the geometry and drawing pipeline that turns one
// snapshot into pictures. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Coordinate mapping (in [layout] subpackage)
//   - Connector geometry (in [edge] subpackage)
//   - Scene composition (in [scene] subpackage)
//   - Output surfaces and capturers (in [sink] subpackage)
//   - Visual styles (in [styles] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(surface)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// The pure Go raster capturer in [sink] does not need librsvg and is the
// default for PNG export.
//
// [layout]: github.com/matzehuels/branchdeck/pkg/render/layout
// [edge]: github.com/matzehuels/branchdeck/pkg/render/edge
// [scene]: github.com/matzehuels/branchdeck/pkg/render/scene
// [sink]: github.com/matzehuels/branchdeck/pkg/render/sink
// [styles]: github.com/matzehuels/branchdeck/pkg/render/styles
package render
