package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/branchdeck/pkg/commitgraph"
	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/pipeline"
)

// validateCommand creates the validate command, which checks every page of
// a deck without rendering it.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [deck]",
		Short: "Check every page of a deck",
		Long: `Load a deck and validate every snapshot: unique keys, non-negative
lanes and parent links that point at earlier commits. Valid pages are listed
with their commit and edge counts, invalid ones with the reason.

Exits non-zero when any page is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runValidate(ctx context.Context, input string) error {
	d, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	if d.Title != "" {
		printKeyValue("Deck", d.Title)
	}
	printKeyValue("Pages", strconv.Itoa(d.Len()))
	printNewline()

	invalid := 0
	for i, s := range d.Snapshots {
		g, err := commitgraph.Build(s)
		if err != nil {
			invalid++
			printError("page %d %s", i+1, pageTitle(s.Title))
			printDetail("%s", errs.UserMessage(err))
			continue
		}
		printSuccess("page %d %s", i+1, pageTitle(s.Title))
		printStats(g.Len(), g.EdgeCount())
	}

	if invalid > 0 {
		return errs.New(errs.ErrCodeInvalidSnapshot, "%d of %d pages are invalid", invalid, d.Len())
	}
	return nil
}
