package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/branchdeck/pkg/commitgraph"
	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/observability"
	"github.com/matzehuels/branchdeck/pkg/render/sink"
)

const testDeck = `title: Scenario
snapshots:
  - title: Two children
    notes: ["c1 continues lane 0"]
    commits:
      - {key: c0, lane: 0, labels: [A]}
      - {key: c1, lane: 0, parent: c0, labels: [B]}
      - {key: c2, lane: 1, parent: c0}
  - title: Broken
    commits:
      - {key: c0, lane: 0, parent: c1}
      - {key: c1, lane: 0}
  - title: Merge
    commits:
      - {key: c0, lane: 0}
      - {key: f1, lane: 1, parent: c0}
      - {key: m, lane: 0, parent: c0, parent2: f1}
`

func writeDeck(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.yaml")
	if err := os.WriteFile(path, []byte(testDeck), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q, want INVALID_FORMAT", tt.format, errs.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateCapturer(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"raster", false},
		{"rsvg", false},
		{"graphviz", false},
		{"chrome", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateCapturer(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCapturer(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and duplicates", " svg, png ,svg,", []string{"svg", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("ParseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options should validate: %v", err)
	}

	if opts.Spacing != DefaultSpacing || opts.Margin == nil || *opts.Margin != DefaultMargin {
		t.Errorf("spacing/margin = %g/%v, want %g/%g", opts.Spacing, opts.Margin, DefaultSpacing, DefaultMargin)
	}
	if !slices.Equal(opts.Formats, []string{FormatSVG}) {
		t.Errorf("formats = %v, want [svg]", opts.Formats)
	}
	if opts.Capturer != DefaultCapturer || opts.Scale != DefaultScale || opts.Concurrency != DefaultConcurrency {
		t.Errorf("capturer/scale/concurrency = %s/%g/%d", opts.Capturer, opts.Scale, opts.Concurrency)
	}
	if opts.Logger == nil {
		t.Error("logger should default to a discard logger")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"bad format", Options{Formats: []string{"gif"}}},
		{"bad capturer", Options{Capturer: "chrome"}},
		{"negative scale", Options{Scale: -1}},
		{"negative spacing", Options{Spacing: -5}},
		{"negative margin", Options{Margin: Float(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSelectedPages(t *testing.T) {
	all := Options{}
	if got := all.SelectedPages(3); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("all pages = %v", got)
	}

	some := Options{Pages: []int{2, 0, 2}}
	if got := some.SelectedPages(3); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("selected pages = %v, want [0 2]", got)
	}

	err := some.ValidatePages(2)
	if err == nil {
		t.Fatal("index 2 of a 2-page deck should be out of range")
	}
	if want := "page 3 out of range"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want it to name %q", err, want)
	}
	if err := some.ValidatePages(3); err != nil {
		t.Errorf("ValidatePages(3): %v", err)
	}
}

func TestNewCapturer(t *testing.T) {
	tests := []struct {
		name    string
		want    any
		wantErr bool
	}{
		{"", sink.RasterCapturer{Scale: 3}, false},
		{"raster", sink.RasterCapturer{Scale: 3}, false},
		{"rsvg", sink.RsvgCapturer{Scale: 3}, false},
		{"graphviz", sink.GraphvizCapturer{}, false},
		{"chrome", nil, true},
	}

	for _, tt := range tests {
		c, err := NewCapturer(tt.name, 3)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewCapturer(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && c != tt.want {
			t.Errorf("NewCapturer(%q) = %#v, want %#v", tt.name, c, tt.want)
		}
	}
}

func TestExecute(t *testing.T) {
	path := writeDeck(t)
	var buf bytes.Buffer
	runner := NewRunner(log.New(&buf))

	result, err := runner.Execute(context.Background(), path, Options{
		Formats: []string{FormatSVG, FormatJSON, FormatDOT, FormatPNG},
		Notes:   true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Title != "Scenario" || len(result.Pages) != 3 {
		t.Fatalf("title=%q pages=%d, want Scenario/3", result.Title, len(result.Pages))
	}

	// Pages come back in order and the broken page does not stop the others.
	for i, p := range result.Pages {
		if p.Index != i {
			t.Errorf("page %d has index %d", i, p.Index)
		}
	}
	failed := result.Failed()
	if len(failed) != 1 || failed[0].Index != 1 {
		t.Fatalf("failed pages = %+v, want only page 1", failed)
	}
	if !errs.Is(failed[0].Err, errs.ErrCodeDanglingReference) {
		t.Errorf("page 1 error = %v, want DANGLING_REFERENCE", failed[0].Err)
	}
	if failed[0].Artifacts != nil {
		t.Error("a failed page should have no artifacts")
	}

	first := result.Pages[0]
	if first.NodeCount != 3 || first.EdgeCount != 2 {
		t.Errorf("page 0 nodes/edges = %d/%d, want 3/2", first.NodeCount, first.EdgeCount)
	}
	if !strings.HasPrefix(string(first.Artifacts[FormatSVG]), "<svg") {
		t.Errorf("svg artifact does not start with <svg")
	}
	if !bytes.HasPrefix(first.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Errorf("png artifact is not a PNG")
	}
	if !strings.Contains(string(first.Artifacts[FormatDOT]), "digraph") {
		t.Errorf("dot artifact is not a digraph")
	}
	var doc map[string]any
	if err := json.Unmarshal(first.Artifacts[FormatJSON], &doc); err != nil {
		t.Errorf("json artifact: %v", err)
	}

	if merge := result.Pages[2]; merge.EdgeCount != 3 {
		t.Errorf("merge page edges = %d, want 3", merge.EdgeCount)
	}
	if result.Stats.PageCount != 3 || result.Stats.NodeCount != 6 {
		t.Errorf("stats = %+v", result.Stats)
	}

	if !strings.Contains(buf.String(), "rendered deck") {
		t.Errorf("runner logger not used, got %q", buf.String())
	}
}

func TestExecuteSelectedPages(t *testing.T) {
	result, err := NewRunner(nil).Execute(context.Background(), writeDeck(t), Options{Pages: []int{2}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Pages) != 1 || result.Pages[0].Title != "Merge" {
		t.Errorf("pages = %+v, want only Merge", result.Pages)
	}
}

func TestExecuteErrors(t *testing.T) {
	path := writeDeck(t)
	runner := NewRunner(log.New(&bytes.Buffer{}))

	if _, err := runner.Execute(context.Background(), path, Options{Pages: []int{7}}); err == nil {
		t.Error("out of range page should fail")
	}
	if _, err := runner.Execute(context.Background(), path, Options{Formats: []string{"gif"}}); err == nil {
		t.Error("invalid format should fail")
	}

	_, err := runner.Execute(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), Options{})
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing deck error = %v, want FILE_NOT_FOUND", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runner.Execute(ctx, path, Options{}); err == nil {
		t.Error("cancelled context should fail")
	}
}

func TestRenderNilSurface(t *testing.T) {
	if _, err := Render(context.Background(), 0, nil, Options{}); err != sink.ErrNoSurface {
		t.Errorf("Render(nil) error = %v, want ErrNoSurface", err)
	}
}

func TestComposeInvalid(t *testing.T) {
	sc, err := Compose(context.Background(), 0, commitgraph.Snapshot{
		Commits: []commitgraph.Commit{{Key: "a"}, {Key: "a"}},
	}, Options{})
	if err == nil || sc != nil {
		t.Errorf("duplicate keys: scene=%v err=%v, want no scene and an error", sc, err)
	}
	if Surface(sc, Options{}) != nil {
		t.Error("nil scene should give a nil surface")
	}
}

func TestComposeMargin(t *testing.T) {
	snap := commitgraph.Snapshot{
		Commits: []commitgraph.Commit{{Key: "c0"}, {Key: "c1", Parent: "c0"}},
	}
	tests := []struct {
		name   string
		margin *float64
		want   float64
	}{
		{"unset", nil, DefaultMargin},
		{"zero", Float(0), 0},
		{"custom", Float(12), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Compose(context.Background(), 0, snap, Options{Margin: tt.margin})
			if err != nil {
				t.Fatalf("Compose: %v", err)
			}
			if sc.Margin != tt.want {
				t.Errorf("margin = %g, want %g", sc.Margin, tt.want)
			}
			if want := DefaultSpacing + tt.want; sc.Extent.Width != want {
				t.Errorf("width = %g, want %g", sc.Extent.Width, want)
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu       sync.Mutex
	loads    int
	composed []int
	rendered []int
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, _ string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads++
}

func (h *recordingHooks) OnComposeComplete(_ context.Context, page int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.composed = append(h.composed, page)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, page int, _ []string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rendered = append(h.rendered, page)
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	if _, err := NewRunner(log.New(&bytes.Buffer{})).Execute(context.Background(), writeDeck(t), Options{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	slices.Sort(hooks.composed)
	slices.Sort(hooks.rendered)
	if hooks.loads != 1 {
		t.Errorf("loads = %d, want 1", hooks.loads)
	}
	if !slices.Equal(hooks.composed, []int{0, 1, 2}) {
		t.Errorf("composed = %v, want [0 1 2]", hooks.composed)
	}
	// The broken page never reaches the render stage.
	if !slices.Equal(hooks.rendered, []int{0, 2}) {
		t.Errorf("rendered = %v, want [0 2]", hooks.rendered)
	}
}
