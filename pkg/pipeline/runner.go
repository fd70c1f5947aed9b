package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/branchdeck/pkg/commitgraph"
	"github.com/matzehuels/branchdeck/pkg/deck"
	"github.com/matzehuels/branchdeck/pkg/render/scene"
	"github.com/matzehuels/branchdeck/pkg/render/sink"
)

// Runner encapsulates pipeline execution with a shared logger.
// The CLI, viewer and server use it to avoid duplicating stage wiring.
//
// The Runner is stateless except for the logger - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete load → compose → render pipeline for the deck
// at path. Invalid pages are reported in their PageResult and do not fail
// the run; invalid options, an unreadable deck or a cancelled context do.
func (r *Runner) Execute(ctx context.Context, path string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	d, err := r.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	r.Logger.Info("loaded deck",
		"title", d.Title,
		"pages", d.Len(),
		"duration", loadTime)

	result, err := r.RenderDeck(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Load decodes the deck at path.
func (r *Runner) Load(ctx context.Context, path string) (*deck.Deck, error) {
	return Load(ctx, path)
}

// Compose validates a snapshot and maps it to a scene.
func (r *Runner) Compose(ctx context.Context, page int, s commitgraph.Snapshot, opts Options) (*scene.Scene, error) {
	r.applyLogger(&opts)
	return Compose(ctx, page, s, opts)
}

// Surface places a scene on a canvas.
func (r *Runner) Surface(sc *scene.Scene, opts Options) *sink.Surface {
	opts.SetComposeDefaults()
	return Surface(sc, opts)
}

// Render encodes a placed page in every requested format.
func (r *Runner) Render(ctx context.Context, page int, s *sink.Surface, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	return Render(ctx, page, s, opts)
}

// RenderDeck renders the selected pages of d in parallel, at most
// opts.Concurrency at a time. Results come back in page order.
func (r *Runner) RenderDeck(ctx context.Context, d *deck.Deck, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.ValidatePages(d.Len()); err != nil {
		return nil, err
	}

	pages := opts.SelectedPages(d.Len())
	result := &Result{
		Title: d.Title,
		Pages: make([]PageResult, len(pages)),
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, idx := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Pages[i] = r.RenderPage(gctx, idx, d.Snapshots[idx], opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Stats.RenderTime = time.Since(start)

	for _, p := range result.Pages {
		result.Stats.PageCount++
		result.Stats.NodeCount += p.NodeCount
		result.Stats.EdgeCount += p.EdgeCount
	}

	r.Logger.Info("rendered deck",
		"pages", len(pages),
		"failed", len(result.Failed()),
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RenderPage composes and renders one page. Failures are recorded in the
// returned PageResult rather than returned, so one bad page does not stop
// the others.
func (r *Runner) RenderPage(ctx context.Context, idx int, s commitgraph.Snapshot, opts Options) PageResult {
	r.applyLogger(&opts)
	start := time.Now()
	res := PageResult{Index: idx, Title: s.Title}

	sc, err := Compose(ctx, idx, s, opts)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		opts.Logger.Warn("skipping page", "page", idx, "err", err)
		return res
	}
	res.NodeCount = sc.NodeCount()
	res.EdgeCount = sc.EdgeCount()

	res.Artifacts, res.Err = Render(ctx, idx, Surface(sc, opts), opts)
	res.Duration = time.Since(start)
	if res.Err != nil {
		opts.Logger.Warn("render failed", "page", idx, "err", res.Err)
	}
	return res
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
