// Package cli implements the branchdeck command-line interface.
//
// This package provides commands for rendering commit-graph snapshot decks
// to files, validating decks, stepping through them in the terminal and
// previewing them in a browser. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Generate SVG, PNG, PDF, DOT or JSON for every page
//   - validate: Check every page and report node and edge counts
//   - view: Step through a deck in the terminal and export pages
//   - serve: Preview a deck over HTTP
//   - convert: Re-encode a deck as JSON, TOML or YAML
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/branchdeck/config.toml when present;
// flags override them.
package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/branchdeck/pkg/buildinfo"
	"github.com/matzehuels/branchdeck/pkg/config"
	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "branchdeck"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config holds file defaults. It is loaded lazily by config().
	Config *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "branchdeck renders commit-graph snapshot decks",
		Long:         `branchdeck turns a deck of commit-history snapshots into annotated diagrams: one page per snapshot, lanes as columns, newest commit on top, with branch and tag labels beside each row.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// config returns the file defaults, loading them on first use. A broken
// config file is reported once and then ignored.
func (c *CLI) config() *config.Config {
	if c.Config != nil {
		return c.Config
	}
	cfg, err := config.LoadDefault()
	if err != nil {
		c.Logger.Warn("ignoring config file", "err", err)
		cfg = &config.Config{}
	}
	c.Config = cfg
	return cfg
}

// =============================================================================
// Options Helpers
// =============================================================================

// applyConfig fills unset pipeline options from the config file and the
// pipeline defaults.
func (c *CLI) applyConfig(opts *pipeline.Options) {
	c.config().Apply(opts)
	opts.Logger = c.Logger
	opts.SetComposeDefaults()
	opts.SetRenderDefaults()
}

// parsePages parses a comma-separated list of 1-based page numbers and
// ranges ("1,3-5") into 0-based indices. Empty means every page.
func parsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(lo)
		if err != nil || from < 1 {
			return nil, errInvalidPage(part)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(hi); err != nil || to < from {
				return nil, errInvalidPage(part)
			}
		}
		for p := from; p <= to; p++ {
			pages = append(pages, p-1)
		}
	}
	return pages, nil
}

func errInvalidPage(s string) error {
	return errs.New(errs.ErrCodeInvalidInput, "invalid page %q (use 1-based numbers or ranges like 2-4)", s)
}
