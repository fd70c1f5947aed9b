package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/branchdeck/pkg/deck"
	"github.com/matzehuels/branchdeck/pkg/observability"
)

// Load decodes the deck file at path. The format is picked from the file
// extension.
func Load(ctx context.Context, path string) (*deck.Deck, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, path)

	d, err := deck.Load(path)

	pages := 0
	if d != nil {
		pages = d.Len()
	}
	observability.Pipeline().OnLoadComplete(ctx, path, pages, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if d.Len() == 0 {
		return nil, deck.ErrEmptyDeck
	}
	return d, nil
}
