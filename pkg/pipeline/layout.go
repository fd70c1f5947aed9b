package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/branchdeck/pkg/commitgraph"
	"github.com/matzehuels/branchdeck/pkg/observability"
	"github.com/matzehuels/branchdeck/pkg/render/scene"
	"github.com/matzehuels/branchdeck/pkg/render/sink"
)

// =============================================================================
// Composition
// =============================================================================

// Compose validates one snapshot and maps it to a scene. page is only used
// for hooks and log lines. An invalid snapshot yields no scene.
func Compose(ctx context.Context, page int, s commitgraph.Snapshot, opts Options) (*scene.Scene, error) {
	if err := opts.ValidateForCompose(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnComposeStart(ctx, page, len(s.Commits))
	sc, err := scene.ComposeSnapshot(s, opts.Mapper(), opts.Geometry())
	observability.Pipeline().OnComposeComplete(ctx, page, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("composed page",
		"page", page,
		"nodes", sc.NodeCount(),
		"edges", sc.EdgeCount())
	return sc, nil
}

// Surface places a composed scene on a canvas. A nil scene yields a nil
// surface.
func Surface(sc *scene.Scene, opts Options) *sink.Surface {
	return sink.NewSurface(sc, opts.SurfaceOptions()...)
}
