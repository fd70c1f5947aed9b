package deck

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/branchdeck/pkg/commitgraph"
	errs "github.com/matzehuels/branchdeck/pkg/errors"
)

func TestLoadFormats(t *testing.T) {
	want := &Deck{
		Title: "Scenario",
		Snapshots: []commitgraph.Snapshot{
			{
				Title: "Two children",
				Commits: []commitgraph.Commit{
					{Key: "c0", Lane: 0, Labels: []string{"A"}},
					{Key: "c1", Lane: 0, Parent: "c0", Labels: []string{"B"}},
					{Key: "c2", Lane: 1, Parent: "c0"},
				},
				Annotation: commitgraph.Annotation{Notes: []string{"c1 continues lane 0", "c2 branches to lane 1"}},
			},
			{
				Title: "Broken",
				Commits: []commitgraph.Commit{
					{Key: "c0", Lane: 0, Parent: "c1"},
					{Key: "c1", Lane: 0},
				},
			},
		},
	}

	for _, name := range []string{"scenario.yaml", "scenario.json", "scenario.toml"} {
		t.Run(name, func(t *testing.T) {
			got, err := Load(filepath.Join("testdata", name))
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		code errs.Code
	}{
		{"missing file", "testdata/nope.yaml", errs.ErrCodeFileNotFound},
		{"unknown extension", "testdata/scenario.txt", errs.ErrCodeInvalidFormat},
		{"unknown json field", "testdata/unknown-field.json", errs.ErrCodeInvalidDeck},
		{"unknown toml field", "testdata/unknown-field.toml", errs.ErrCodeInvalidDeck},
		{"seq mismatch", "testdata/bad-seq.yaml", errs.ErrCodeInvalidDeck},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.code, errs.GetCode(err), "error: %v", err)
		})
	}
}

func TestLoadedBrokenSnapshotFailsOnlyOnBuild(t *testing.T) {
	d, err := Load("testdata/scenario.yaml")
	require.NoError(t, err)

	_, err = commitgraph.Build(d.Snapshots[0])
	assert.NoError(t, err)
	_, err = commitgraph.Build(d.Snapshots[1])
	assert.True(t, errs.Is(err, errs.ErrCodeDanglingReference))
}

func TestEncodeRoundTrip(t *testing.T) {
	d, err := Load("testdata/scenario.yaml")
	require.NoError(t, err)

	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, d, f))

			got, err := Decode(&buf, f)
			require.NoError(t, err)
			if diff := cmp.Diff(d, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"deck.json":    FormatJSON,
		"deck.TOML":    FormatTOML,
		"a/b/deck.yml": FormatYAML,
		"deck.yaml":    FormatYAML,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
}

func TestLoadReleaseFlowExample(t *testing.T) {
	d, err := Load("../../examples/decks/release-flow.yaml")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Len())

	for i, s := range d.Snapshots {
		_, err := commitgraph.Build(s)
		assert.NoError(t, err, "snapshot %d (%s)", i, s.Title)
	}
}
