package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/branchdeck/pkg/commitgraph"
	"github.com/matzehuels/branchdeck/pkg/deck"
	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/export"
	"github.com/matzehuels/branchdeck/pkg/pipeline"
	"github.com/matzehuels/branchdeck/pkg/render/scene"
	"github.com/matzehuels/branchdeck/pkg/render/sink"
)

// Viewer styles
var (
	viewPageStyle  = lipgloss.NewStyle().Foreground(colorGray)
	viewKeyStyle   = lipgloss.NewStyle().Foreground(colorDim).Width(8)
	viewNoteStyle  = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
	viewFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

type viewOpts struct {
	output   string
	capturer string
	scale    float64
}

// viewCommand creates the interactive deck viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [deck]",
		Short: "Step through a deck in the terminal",
		Long: `Open a deck in an interactive terminal viewer.

Keys:
  ←/h  previous page      →/l  next page
  s    save current page as PNG (in the background)
  q    quit

Stepping stops at the first and last page. Invalid pages show their error
and can be stepped past.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "directory for exported pages (default: next to the deck)")
	cmd.Flags().StringVar(&opts.capturer, "capturer", "", "png capturer: raster (default), rsvg, graphviz")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "png scale factor (default 2)")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, vopts viewOpts) error {
	d, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}

	opts := pipeline.Options{Capturer: vopts.capturer, Scale: vopts.scale}
	c.applyConfig(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	capturer, err := pipeline.NewCapturer(opts.Capturer, opts.Scale)
	if err != nil {
		return err
	}
	if vopts.output != "" {
		if err := os.MkdirAll(vopts.output, 0o755); err != nil {
			return err
		}
	}

	// The viewer owns the terminal; keep log lines out of it.
	opts.Logger = log.New(io.Discard)

	m, err := newViewerModel(ctx, d, opts, export.New(capturer, export.WithLogger(opts.Logger)), basePath(vopts.output, input))
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if vm, ok := final.(viewerModel); ok && len(vm.exported) > 0 {
		printSuccess("Exported %d page(s)", len(vm.exported))
		for _, path := range vm.exported {
			printFile(path)
		}
	}
	return nil
}

// =============================================================================
// viewerModel - Interactive deck stepping
// =============================================================================

// exportDoneMsg is delivered when a background capture has finished and its
// bytes have been written (or failed to be).
type exportDoneMsg struct {
	page int
	path string
	err  error
}

// viewerModel is the bubbletea model for the deck viewer. The sequence is
// shared between model copies; everything else is recomputed on each step.
type viewerModel struct {
	ctx    context.Context
	title  string
	seq    *deck.Sequence
	opts   pipeline.Options
	bridge *export.Bridge
	base   string

	scene   *scene.Scene
	surface *sink.Surface
	err     error

	status    string
	statusErr bool
	exported  []string
	width     int
}

func newViewerModel(ctx context.Context, d *deck.Deck, opts pipeline.Options, bridge *export.Bridge, base string) (viewerModel, error) {
	seq, err := d.Sequence()
	if err != nil {
		return viewerModel{}, err
	}
	m := viewerModel{
		ctx:    ctx,
		title:  d.Title,
		seq:    seq,
		opts:   opts,
		bridge: bridge,
		base:   base,
	}
	m.compose()
	return m, nil
}

// compose rebuilds the scene for the current page. An invalid page leaves
// no surface, so an export request reports a capture failure.
func (m *viewerModel) compose() {
	m.scene, m.err = pipeline.Compose(m.ctx, m.seq.Index(), m.seq.Current(), m.opts)
	m.surface = pipeline.Surface(m.scene, m.opts)
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if prev := m.seq.Index(); m.seq.StepBackward() != prev {
				m.compose()
			}
		case "right", "l":
			if prev := m.seq.Index(); m.seq.StepForward() != prev {
				m.compose()
			}
		case "s":
			return m.requestExport()
		}
	case exportDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("export of page %d failed: %s", msg.page+1, errs.UserMessage(msg.err))
			m.statusErr = true
		} else {
			m.status = fmt.Sprintf("saved page %d to %s", msg.page+1, msg.path)
			m.statusErr = false
			m.exported = append(m.exported, msg.path)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// requestExport hands the current surface to the bridge and returns a
// command that waits for the result and writes it.
func (m viewerModel) requestExport() (tea.Model, tea.Cmd) {
	page := m.seq.Index()
	ch, err := m.bridge.Request(m.ctx, m.surface)
	if err != nil {
		m.status = errs.UserMessage(err)
		m.statusErr = true
		return m, nil
	}
	m.status = fmt.Sprintf("exporting page %d…", page+1)
	m.statusErr = false
	return m, waitForExport(ch, page, pagePath(m.base, page, m.bridge.Format()))
}

func waitForExport(ch <-chan export.Result, page int, path string) tea.Cmd {
	return func() tea.Msg {
		res := <-ch
		msg := exportDoneMsg{page: page, path: path, err: res.Err}
		if res.Err == nil {
			msg.err = os.WriteFile(path, res.Data, 0o644)
		}
		return msg
	}
}

func (m viewerModel) View() string {
	var b strings.Builder

	header := StyleTitle.Render(m.title)
	if m.title == "" {
		header = StyleTitle.Render(appName)
	}
	header += viewPageStyle.Render(fmt.Sprintf("  page %d/%d", m.seq.Index()+1, m.seq.Len()))
	if t := m.seq.Current().Title; t != "" {
		header += StyleDim.Render("  ·  ") + StyleValue.Render(t)
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(StyleError.Render("invalid page: " + errs.UserMessage(m.err)))
		b.WriteString("\n")
	} else {
		frame := viewFrameStyle
		if m.width > 0 {
			frame = frame.MaxWidth(m.width)
		}
		b.WriteString(frame.Render(renderSceneText(m.scene)))
		b.WriteString("\n")
	}

	for _, n := range m.seq.Current().Annotation.Notes {
		b.WriteString(viewNoteStyle.Render("  • " + n))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.status != "" {
		style := StyleSuccess
		if m.statusErr {
			style = StyleWarning
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render(navHelp(m.seq)))
	return b.String()
}

// navHelp blanks the arrows that would not move.
func navHelp(seq *deck.Sequence) string {
	prev, next := "←/h prev", "→/l next"
	if seq.AtStart() {
		prev = strings.Repeat(" ", len([]rune(prev)))
	}
	if seq.AtEnd() {
		next = strings.Repeat(" ", len([]rune(next)))
	}
	return prev + "  " + next + "  s save png  q quit"
}

// renderSceneText draws the scene as text: one line per label row, newest
// first, with the commit dot in its lane column followed by the key, the
// parent keys of merges, the label chips and the description.
func renderSceneText(sc *scene.Scene) string {
	if sc == nil || len(sc.Marks) == 0 {
		return StyleDim.Render("(no commits)")
	}

	maxLane := 0
	marks := make(map[string]scene.Mark, len(sc.Marks))
	for _, mk := range sc.Marks {
		marks[mk.Key] = mk
		maxLane = max(maxLane, mk.Lane)
	}

	lines := make([]string, 0, len(sc.Rows))
	for _, row := range sc.Rows {
		mk := marks[row.Key]

		var lanes strings.Builder
		for lane := 0; lane <= maxLane; lane++ {
			if lane == mk.Lane {
				lanes.WriteString(StyleHighlight.Render(iconCommit))
			} else {
				lanes.WriteString(StyleDim.Render("│"))
			}
			lanes.WriteString(" ")
		}

		line := lanes.String() + viewKeyStyle.Render(row.Key)
		if mk.Kind == commitgraph.Merge {
			parents := make([]string, len(mk.Incoming))
			for i, e := range mk.Incoming {
				parents[i] = e.From
			}
			line += StyleDim.Render("⇐ "+strings.Join(parents, " + ")) + " "
		}
		if len(row.Labels) > 0 {
			line += renderChips(row.Labels) + " "
		}
		if row.Description != "" {
			line += StyleValue.Render(row.Description)
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return strings.Join(lines, "\n")
}
