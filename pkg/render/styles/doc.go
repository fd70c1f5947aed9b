// Package styles provides visual styles for commit graph pages.
//
// A [Style] turns positioned primitives ([Node], [Edge], [Row], [Note]) into
// SVG fragments. Positions are already final when they reach a style; styles
// only decide colors, strokes and markup. The constant visual parameters
// live in a [Theme] so raster surfaces can draw the same picture without
// going through SVG.
//
// [Simple] is the only built-in style: black dots, connectors at 30%
// opacity with a stroke width of 2, and rounded light blue label chips set
// in 14px type.
package styles
