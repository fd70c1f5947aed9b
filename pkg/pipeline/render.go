package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/branchdeck/pkg/export"
	"github.com/matzehuels/branchdeck/pkg/observability"
	"github.com/matzehuels/branchdeck/pkg/render/sink"
)

// Render generates output artifacts for one placed page in the requested
// formats. PNG goes through an [export.Bridge] with the configured capturer;
// the other formats are encoded directly.
func Render(ctx context.Context, page int, s *sink.Surface, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, sink.ErrNoSurface
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, page, opts.Formats)
	artifacts, err := renderFormats(ctx, s, opts)
	observability.Pipeline().OnRenderComplete(ctx, page, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormats(ctx context.Context, s *sink.Surface, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(s, opts.SVGOptions()...)
		case FormatPNG:
			data, err = capturePNG(ctx, s, opts)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, s, opts.SVGOptions()...)
		case FormatDOT:
			data = []byte(sink.ToDOT(s))
		case FormatJSON:
			data, err = sink.RenderJSON(s)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// capturePNG runs one capture through a fresh bridge. Each page gets its
// own bridge so parallel pages never trip the single in-flight rule.
func capturePNG(ctx context.Context, s *sink.Surface, opts Options) ([]byte, error) {
	c, err := NewCapturer(opts.Capturer, opts.Scale)
	if err != nil {
		return nil, err
	}
	res, err := export.New(c, export.WithLogger(opts.Logger)).Capture(ctx, s)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}
