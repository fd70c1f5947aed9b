package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/pipeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[render]
spacing = 24
formats = ["svg", "png"]
capturer = "rsvg"
notes = true

[serve]
addr = ":9000"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Render.Spacing != 24 || c.Render.Capturer != "rsvg" || !c.Render.Notes {
		t.Errorf("render = %+v", c.Render)
	}
	if !slices.Equal(c.Render.Formats, []string{"svg", "png"}) {
		t.Errorf("formats = %v", c.Render.Formats)
	}
	if c.Addr() != ":9000" {
		t.Errorf("Addr() = %q, want :9000", c.Addr())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errs.Code
	}{
		{"unknown key", "[render]\nspacin = 3\n", errs.ErrCodeInvalidInput},
		{"bad format", "[render]\nformats = [\"gif\"]\n", errs.ErrCodeInvalidInput},
		{"bad capturer", "[render]\ncapturer = \"chrome\"\n", errs.ErrCodeInvalidInput},
		{"negative scale", "[render]\nscale = -1.0\n", errs.ErrCodeInvalidInput},
		{"negative margin", "[render]\nmargin = -4.0\n", errs.ErrCodeInvalidInput},
		{"syntax", "[render\n", errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errs.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("missing default config should not fail: %v", err)
	}
	if c.Addr() != DefaultAddr {
		t.Errorf("Addr() = %q, want %q", c.Addr(), DefaultAddr)
	}

	if err := os.MkdirAll(filepath.Join(dir, "branchdeck"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "branchdeck", "config.toml"), []byte("[render]\nscale = 4.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err = LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if c.Render.Scale != 4 {
		t.Errorf("scale = %g, want 4", c.Render.Scale)
	}
}

func TestLoadZeroMargin(t *testing.T) {
	c, err := Load(writeConfig(t, "[render]\nmargin = 0.0\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Render.Margin == nil || *c.Render.Margin != 0 {
		t.Fatalf("margin = %v, want 0", c.Render.Margin)
	}

	var opts pipeline.Options
	c.Apply(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := opts.Mapper().Margin; got != 0 {
		t.Errorf("configured zero margin became %g", got)
	}

	// A flag value still wins over the config.
	opts = pipeline.Options{Margin: pipeline.Float(8)}
	c.Apply(&opts)
	if *opts.Margin != 8 {
		t.Errorf("flag margin overwritten: %g", *opts.Margin)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "branchdeck", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestApplyFlagsWin(t *testing.T) {
	c := &Config{Render: Render{
		Spacing:  30,
		Margin:   pipeline.Float(10),
		Formats:  []string{"png"},
		Capturer: "graphviz",
		Scale:    3,
		Notes:    true,
	}}

	opts := pipeline.Options{Spacing: 12, Formats: []string{"svg"}}
	c.Apply(&opts)

	if opts.Spacing != 12 {
		t.Errorf("flag spacing overwritten: %g", opts.Spacing)
	}
	if !slices.Equal(opts.Formats, []string{"svg"}) {
		t.Errorf("flag formats overwritten: %v", opts.Formats)
	}
	if opts.Margin == nil || *opts.Margin != 10 || opts.Capturer != "graphviz" || opts.Scale != 3 || !opts.Notes {
		t.Errorf("config defaults not applied: %+v", opts)
	}
}
