// Package pipeline provides the load → compose → render pipeline for
// branchdeck.
//
// The CLI, the terminal viewer and the preview server all go through this
// package so that a page looks the same wherever it is shown.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode a deck file (JSON, TOML or YAML) into snapshots
//  2. Compose: Validate one snapshot and map it to a scene
//  3. Render: Place the scene on a surface and encode it (SVG, PNG, PDF, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Render every page of a deck:
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{Formats: []string{"svg", "png"}}
//	result, err := runner.Execute(ctx, "release-flow.yaml", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, page := range result.Pages {
//	    svg := page.Artifacts["svg"]
//	}
//
// Run individual stages:
//
//	d, err := runner.Load(ctx, path)
//	sc, err := runner.Compose(ctx, 0, d.Snapshots[0], opts)
//	artifacts, err := runner.Render(ctx, 0, runner.Surface(sc, opts), opts)
//
// Composition is synchronous and pure. Only PNG capture goes through an
// [export.Bridge]; pages are rendered in parallel with one bridge each.
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/export"
	"github.com/matzehuels/branchdeck/pkg/render/edge"
	"github.com/matzehuels/branchdeck/pkg/render/layout"
	"github.com/matzehuels/branchdeck/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Viewer and Server
// =============================================================================

const (
	// DefaultSpacing is the distance between lanes and between sequence rows.
	DefaultSpacing = layout.DefaultSpacing

	// DefaultMargin is the padding added around the graph extent.
	DefaultMargin = layout.DefaultMargin

	// DefaultScale is the raster scale factor for PNG capture.
	DefaultScale = sink.DefaultScale

	// DefaultCapturer is the capturer used for PNG output.
	DefaultCapturer = CapturerRaster

	// DefaultConcurrency bounds how many pages render at once.
	DefaultConcurrency = 4
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Capturer names.
const (
	CapturerRaster   = "raster"
	CapturerRsvg     = "rsvg"
	CapturerGraphviz = "graphviz"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidCapturers is the set of supported PNG capturers.
var ValidCapturers = map[string]bool{
	CapturerRaster:   true,
	CapturerRsvg:     true,
	CapturerGraphviz: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Compose options. Margin is nil until set; a zero margin is valid.
	Spacing float64  `json:"spacing,omitempty"`
	Margin  *float64 `json:"margin,omitempty"`

	// Page selection; nil means every page.
	Pages []int `json:"pages,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Capturer    string   `json:"capturer,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Notes       bool     `json:"notes,omitempty"`       // draw snapshot notes under the graph
	Interactive bool     `json:"interactive,omitempty"` // row/commit hover highlighting in SVG
	EmbedFont   bool     `json:"embed_font,omitempty"`  // embed the label font in SVG
	Concurrency int      `json:"concurrency,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// PageResult is the outcome of rendering one page. A page whose snapshot is
// invalid carries Err and no artifacts; the rest of the deck still renders.
type PageResult struct {
	Index     int
	Title     string
	NodeCount int
	EdgeCount int
	Artifacts map[string][]byte
	Err       error
	Duration  time.Duration
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Title is the deck title.
	Title string

	// Pages holds one entry per selected page, in page order.
	Pages []PageResult

	// Stats contains timing and count information.
	Stats Stats
}

// Failed returns the pages that could not be rendered.
func (r *Result) Failed() []PageResult {
	var out []PageResult
	for _, p := range r.Pages {
		if p.Err != nil {
			out = append(out, p)
		}
	}
	return out
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PageCount  int
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCapturer checks that a capturer name is valid.
func ValidateCapturer(name string) error {
	if !ValidCapturers[name] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid capturer: %q (must be one of: raster, rsvg, graphviz)", name)
	}
	return nil
}

// ParseFormats splits a comma-separated format list. Empty means svg.
func ParseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetComposeDefaults sets default values for composition.
func (o *Options) SetComposeDefaults() {
	if o.Spacing == 0 {
		o.Spacing = DefaultSpacing
	}
	if o.Margin == nil {
		o.Margin = Float(DefaultMargin)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForCompose validates and sets defaults for composition.
func (o *Options) ValidateForCompose() error {
	o.SetComposeDefaults()
	return o.Mapper().Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Capturer == "" {
		o.Capturer = DefaultCapturer
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateCapturer(o.Capturer); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return nil
}

// ValidatePages checks the page selection against a deck of n pages.
func (o *Options) ValidatePages(n int) error {
	for _, p := range o.Pages {
		if p < 0 || p >= n {
			return errs.New(errs.ErrCodeInvalidInput, "page %d out of range (deck has %d pages)", p+1, n)
		}
	}
	return nil
}

// SelectedPages returns the page indices to render for a deck of n pages.
func (o *Options) SelectedPages(n int) []int {
	if len(o.Pages) == 0 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := slices.Clone(o.Pages)
	slices.Sort(out)
	return slices.Compact(out)
}

// Mapper returns the coordinate mapper for these options.
func (o *Options) Mapper() layout.Mapper {
	m := layout.Mapper{Spacing: o.Spacing, Margin: DefaultMargin}
	if o.Margin != nil {
		m.Margin = *o.Margin
	}
	return m
}

// Float returns a pointer to v, for optional fields such as Options.Margin.
func Float(v float64) *float64 { return &v }

// Geometry returns the arrowhead geometry for these options.
func (o *Options) Geometry() edge.Geometry {
	return edge.DefaultGeometry(o.Spacing)
}

// SurfaceOptions returns the surface options for these options.
func (o *Options) SurfaceOptions() []sink.SurfaceOption {
	var out []sink.SurfaceOption
	if o.Notes {
		out = append(out, sink.WithNotes())
	}
	return out
}

// SVGOptions returns the SVG rendering options for these options.
func (o *Options) SVGOptions() []sink.SVGOption {
	var out []sink.SVGOption
	if o.Interactive {
		out = append(out, sink.WithInteraction())
	}
	if o.EmbedFont {
		out = append(out, sink.WithEmbeddedFont())
	}
	return out
}

// NewCapturer returns the PNG capturer named by name.
func NewCapturer(name string, scale float64) (export.Capturer, error) {
	switch name {
	case CapturerRaster, "":
		return sink.RasterCapturer{Scale: scale}, nil
	case CapturerRsvg:
		return sink.RsvgCapturer{Scale: scale}, nil
	case CapturerGraphviz:
		return sink.GraphvizCapturer{}, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown capturer %q", name)
}
