// Package config reads the optional branchdeck configuration file.
//
// The file lives at $XDG_CONFIG_HOME/branchdeck/config.toml (falling back to
// ~/.config/branchdeck/config.toml) and only supplies defaults: command-line
// flags always win.
//
//	[render]
//	spacing = 24
//	formats = ["svg", "png"]
//	capturer = "rsvg"
//	scale = 3
//
//	[serve]
//	addr = ":8080"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/branchdeck/pkg/errors"
	"github.com/matzehuels/branchdeck/pkg/pipeline"
)

const (
	appName  = "branchdeck"
	fileName = "config.toml"

	// DefaultAddr is the preview server listen address.
	DefaultAddr = "localhost:7070"
)

// Config is the decoded configuration file.
type Config struct {
	Render Render `toml:"render"`
	Serve  Serve  `toml:"serve"`
}

// Render holds pipeline defaults. Zero values mean "not set", except
// Margin, which is nil when unset so that 0 can be configured.
type Render struct {
	Spacing     float64  `toml:"spacing"`
	Margin      *float64 `toml:"margin"`
	Formats     []string `toml:"formats"`
	Capturer    string   `toml:"capturer"`
	Scale       float64  `toml:"scale"`
	Notes       bool     `toml:"notes"`
	Interactive bool     `toml:"interactive"`
	Concurrency int      `toml:"concurrency"`
}

// Serve holds preview server defaults.
type Serve struct {
	Addr string `toml:"addr"`
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// LoadDefault reads the file at [Path]. A missing file is not an error and
// yields an empty Config.
func LoadDefault() (*Config, error) {
	path, err := Path()
	if err != nil {
		return &Config{}, nil
	}
	c, err := Load(path)
	if errs.Is(err, errs.ErrCodeFileNotFound) {
		return &Config{}, nil
	}
	return c, err
}

// Load reads and validates the config file at path. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidInput, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "config %s", path)
	}
	return &c, nil
}

// Validate checks the values that are set.
func (c *Config) Validate() error {
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	if c.Render.Capturer != "" {
		if err := pipeline.ValidateCapturer(c.Render.Capturer); err != nil {
			return err
		}
	}
	negMargin := c.Render.Margin != nil && *c.Render.Margin < 0
	if c.Render.Spacing < 0 || negMargin || c.Render.Scale < 0 || c.Render.Concurrency < 0 {
		return errors.New("spacing, margin, scale and concurrency must not be negative")
	}
	return nil
}

// Apply copies configured values into opts wherever opts is still unset.
func (c *Config) Apply(opts *pipeline.Options) {
	r := c.Render
	if opts.Spacing == 0 {
		opts.Spacing = r.Spacing
	}
	if opts.Margin == nil && r.Margin != nil {
		opts.Margin = pipeline.Float(*r.Margin)
	}
	if len(opts.Formats) == 0 {
		opts.Formats = r.Formats
	}
	if opts.Capturer == "" {
		opts.Capturer = r.Capturer
	}
	if opts.Scale == 0 {
		opts.Scale = r.Scale
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = r.Concurrency
	}
	opts.Notes = opts.Notes || r.Notes
	opts.Interactive = opts.Interactive || r.Interactive
}

// Addr returns the configured server address or [DefaultAddr].
func (c *Config) Addr() string {
	if c.Serve.Addr != "" {
		return c.Serve.Addr
	}
	return DefaultAddr
}
