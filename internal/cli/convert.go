package cli

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/branchdeck/pkg/deck"
	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/pipeline"
)

type convertOpts struct {
	output string
	to     string
}

// convertCommand creates the convert command for re-encoding a deck.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [deck]",
		Short: "Re-encode a deck as JSON, TOML or YAML",
		Long: `Read a deck and write it back in another encoding.

The target format comes from --to, or from the extension of --output.
Without --output the deck is written to stdout. Commit order is kept;
explicit seq values are dropped since the order carries them.`,
		Example: `  branchdeck convert release-flow.yaml -o release-flow.toml
  branchdeck convert release-flow.json --to yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.to, "to", "", "target format: json, toml, yaml")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, input string, opts convertOpts, stdout io.Writer) error {
	format, err := convertFormat(opts)
	if err != nil {
		return err
	}

	d, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := deck.Encode(&buf, d, format); err != nil {
		return err
	}

	if opts.output == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return err
	}
	printSuccess("Converted %d pages to %s", d.Len(), format)
	printFile(opts.output)
	return nil
}

// convertFormat resolves the target encoding. --to wins over the output
// extension.
func convertFormat(opts convertOpts) (deck.Format, error) {
	switch {
	case opts.to != "":
		switch f := deck.Format(opts.to); f {
		case deck.FormatJSON, deck.FormatTOML, deck.FormatYAML:
			return f, nil
		case "yml":
			return deck.FormatYAML, nil
		}
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported target format %q (want json, toml or yaml)", opts.to)
	case opts.output != "":
		return deck.FormatFromPath(opts.output)
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "nothing to convert to: pass --to or an --output file")
}
