package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
// Zero values mean "use the config file, then the pipeline default".
type renderOpts struct {
	output      string  // output directory (default: next to the deck)
	pages       string  // 1-based page list, e.g. "1,3-5"
	formats     string  // comma-separated output formats
	capturer    string  // png capturer: raster, rsvg, graphviz
	scale       float64 // png scale factor
	spacing     float64 // lane and row spacing
	margin      float64 // padding around the graph
	marginSet   bool    // --margin was given, so 0 is a real value
	notes       bool    // draw snapshot notes under the graph
	interactive bool    // hover highlighting in SVG
	embedFont   bool    // embed the label font in SVG
	concurrency int     // pages rendered at once
}

// renderCommand creates the render command for writing every page of a deck
// to files.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [deck]",
		Short: "Render deck pages to SVG, PNG, PDF, DOT or JSON",
		Long: `Render every page (or the selected pages) of a deck file.

One file is written per page and format, named <deck>-<page>.<format>.
Pages whose snapshot is invalid are reported and skipped; the rest of the
deck is still rendered.`,
		Example: `  branchdeck render release-flow.yaml
  branchdeck render release-flow.yaml -f svg,png -o out/
  branchdeck render release-flow.yaml -p 2-4 -f png --capturer rsvg --scale 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.marginSet = cmd.Flags().Changed("margin")
			popts, err := c.renderPipelineOpts(opts)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts.output, popts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default: next to the deck)")
	cmd.Flags().StringVarP(&opts.pages, "pages", "p", "", "pages to render, 1-based (e.g. 1,3-5; default: all)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.capturer, "capturer", "", "png capturer: raster (default), rsvg, graphviz")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "png scale factor (default 2)")
	cmd.Flags().Float64Var(&opts.spacing, "spacing", 0, "distance between lanes and rows (default 20)")
	cmd.Flags().Float64Var(&opts.margin, "margin", 0, "padding around the graph (default 40)")
	cmd.Flags().BoolVar(&opts.notes, "notes", false, "draw snapshot notes under the graph")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "add hover highlighting to SVG output")
	cmd.Flags().BoolVar(&opts.embedFont, "embed-font", false, "embed the label font in SVG output")
	cmd.Flags().IntVarP(&opts.concurrency, "jobs", "j", 0, "pages rendered in parallel (default 4)")

	return cmd
}

// renderPipelineOpts turns flags into validated pipeline options.
func (c *CLI) renderPipelineOpts(opts renderOpts) (pipeline.Options, error) {
	pages, err := parsePages(opts.pages)
	if err != nil {
		return pipeline.Options{}, err
	}
	popts := pipeline.Options{
		Spacing:     opts.spacing,
		Pages:       pages,
		Capturer:    opts.capturer,
		Scale:       opts.scale,
		Notes:       opts.notes,
		Interactive: opts.interactive,
		EmbedFont:   opts.embedFont,
		Concurrency: opts.concurrency,
	}
	if opts.formats != "" {
		popts.Formats = pipeline.ParseFormats(opts.formats)
	}
	if opts.marginSet {
		popts.Margin = pipeline.Float(opts.margin)
	}
	c.applyConfig(&popts)
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return popts, nil
}

// runRender renders the deck at input and writes one file per page and
// format.
func (c *CLI) runRender(ctx context.Context, input, outDir string, opts pipeline.Options) error {
	prog := newProgress(c.Logger)

	spin := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(input))
	spin.Start()
	result, err := c.newRunner().Execute(ctx, input, opts)
	spin.Stop()
	if err != nil {
		return err
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
	}
	base := basePath(outDir, input)

	written := 0
	for _, page := range result.Pages {
		if page.Err != nil {
			printError("page %d %s: %s", page.Index+1, pageTitle(page.Title), errs.UserMessage(page.Err))
			continue
		}
		for _, format := range opts.Formats {
			path := pagePath(base, page.Index, format)
			if err := os.WriteFile(path, page.Artifacts[format], 0o644); err != nil {
				return err
			}
			printFile(path)
		}
		written++
	}

	prog.done(fmt.Sprintf("Rendered %d of %d pages", written, len(result.Pages)))
	if skipped := len(result.Failed()); skipped > 0 {
		printWarning("%d page(s) skipped", skipped)
		printNextStep("Inspect them with", fmt.Sprintf("%s validate %s", appName, input))
	}
	return nil
}

// basePath derives the output path prefix from the deck file name: the
// deck's own directory unless outDir is given.
func basePath(outDir, input string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), name)
	}
	return filepath.Join(outDir, name)
}

// pagePath is base-NN.format with a 1-based page number.
func pagePath(base string, index int, format string) string {
	return fmt.Sprintf("%s-%02d.%s", base, index+1, format)
}

func pageTitle(title string) string {
	if title == "" {
		return "(untitled)"
	}
	return fmt.Sprintf("%q", title)
}
