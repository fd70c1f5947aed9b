package deck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/branchdeck/pkg/commitgraph"
	errs "github.com/matzehuels/branchdeck/pkg/errors"
)

// Format is a deck file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported deck extension %q (want .json, .toml, .yaml or .yml)", filepath.Ext(path))
}

// file mirrors the on-disk layout. Commits are a list so declaration order
// survives every encoding.
type file struct {
	Title     string         `json:"title" yaml:"title" toml:"title"`
	Snapshots []fileSnapshot `json:"snapshots" yaml:"snapshots" toml:"snapshots"`
}

type fileSnapshot struct {
	Title   string       `json:"title" yaml:"title" toml:"title"`
	Notes   []string     `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
	Commits []fileCommit `json:"commits" yaml:"commits" toml:"commits"`
}

type fileCommit struct {
	Key         string   `json:"key" yaml:"key" toml:"key"`
	Seq         *int     `json:"seq,omitempty" yaml:"seq,omitempty" toml:"seq,omitempty"`
	Lane        int      `json:"lane" yaml:"lane" toml:"lane"`
	Parent      string   `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"`
	Parent2     string   `json:"parent2,omitempty" yaml:"parent2,omitempty" toml:"parent2,omitempty"`
	Labels      []string `json:"labels,omitempty" yaml:"labels,omitempty" toml:"labels,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// Load reads a deck file, choosing the decoder from its extension.
//
// Load checks the file structure only: unknown fields and a seq that does
// not match the commit's position are rejected, but parent references are
// left for [commitgraph.Build] so one broken page does not take down the
// whole deck.
func Load(path string) (*Deck, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "deck %s", path)
		}
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer f.Close()

	d, err := Decode(f, format)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDeck, err, "decode %s", filepath.Base(path))
	}
	return d, nil
}

// Decode reads a deck in the given format from r. Decode does not close r.
func Decode(r io.Reader, format Format) (*Deck, error) {
	var raw file
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && err != io.EOF {
			return nil, err
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&raw)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown field %q", undecoded[0].String())
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported deck format %q", format)
	}
	return raw.toDeck()
}

func (f file) toDeck() (*Deck, error) {
	d := &Deck{Title: f.Title, Snapshots: make([]commitgraph.Snapshot, 0, len(f.Snapshots))}
	for i, fs := range f.Snapshots {
		s := commitgraph.Snapshot{
			Title:      fs.Title,
			Commits:    make([]commitgraph.Commit, 0, len(fs.Commits)),
			Annotation: commitgraph.Annotation{Notes: fs.Notes},
		}
		for pos, c := range fs.Commits {
			if c.Seq != nil && *c.Seq != pos {
				return nil, fmt.Errorf("snapshot %d: commit %q has seq %d but is declared at position %d", i, c.Key, *c.Seq, pos)
			}
			s.Commits = append(s.Commits, commitgraph.Commit{
				Key:         c.Key,
				Lane:        c.Lane,
				Parent:      c.Parent,
				Parent2:     c.Parent2,
				Labels:      c.Labels,
				Description: c.Description,
			})
		}
		d.Snapshots = append(d.Snapshots, s)
	}
	return d, nil
}

// Encode writes d in the given format. Commits are written without seq;
// their order carries the sequence.
func Encode(w io.Writer, d *Deck, format Format) error {
	raw := fromDeck(d)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(raw)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(raw); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unsupported deck format %q", format)
}

func fromDeck(d *Deck) file {
	f := file{Title: d.Title, Snapshots: make([]fileSnapshot, 0, len(d.Snapshots))}
	for _, s := range d.Snapshots {
		fs := fileSnapshot{Title: s.Title, Notes: s.Annotation.Notes, Commits: make([]fileCommit, 0, len(s.Commits))}
		for _, c := range s.Commits {
			fs.Commits = append(fs.Commits, fileCommit{
				Key: c.Key, Lane: c.Lane, Parent: c.Parent, Parent2: c.Parent2,
				Labels: c.Labels, Description: c.Description,
			})
		}
		f.Snapshots = append(f.Snapshots, fs)
	}
	return f
}
