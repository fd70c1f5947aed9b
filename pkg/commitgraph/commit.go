package commitgraph

import (
	errs "github.com/matzehuels/branchdeck/pkg/errors"
)

// Commit is one node of a snapshot as authored. Parent and Parent2 are keys
// of commits declared earlier in the same snapshot; empty means absent.
type Commit struct {
	Key         string
	Lane        int
	Parent      string
	Parent2     string
	Labels      []string
	Description string
}

// Annotation is prose shown beside the graph. It never affects geometry.
type Annotation struct {
	Notes []string
}

// IsEmpty reports whether the annotation carries no notes.
func (a Annotation) IsEmpty() bool { return len(a.Notes) == 0 }

// Snapshot is one page of the deck: the commits in declaration order plus
// the accompanying annotation.
type Snapshot struct {
	Title      string
	Commits    []Commit
	Annotation Annotation
}

// AncestryKind tags the shape of a commit's parent set.
type AncestryKind int

const (
	// Root commits have no parent and draw no incoming edge.
	Root AncestryKind = iota
	// Single commits have exactly one parent.
	Single
	// Merge commits have two distinct parents.
	Merge
)

func (k AncestryKind) String() string {
	switch k {
	case Root:
		return "root"
	case Single:
		return "single"
	case Merge:
		return "merge"
	}
	return "unknown"
}

// Ancestry is the resolved parent variant of a commit. First is set for
// Single and Merge, Second only for Merge.
type Ancestry struct {
	Kind   AncestryKind
	First  string
	Second string
}

// Keys returns the parent keys in drawing order (first parent first).
func (a Ancestry) Keys() []string {
	switch a.Kind {
	case Single:
		return []string{a.First}
	case Merge:
		return []string{a.First, a.Second}
	}
	return nil
}

// Ancestry classifies the commit's parent fields. It rejects a second parent
// without a first and a merge naming the same parent twice. It does not
// check that the parents exist; that is [Build]'s job.
func (c Commit) Ancestry() (Ancestry, error) {
	switch {
	case c.Parent == "" && c.Parent2 == "":
		return Ancestry{Kind: Root}, nil
	case c.Parent == "":
		return Ancestry{}, errs.New(errs.ErrCodeInvalidSnapshot,
			"commit %q: parent2 %q set without parent", c.Key, c.Parent2)
	case c.Parent2 == "":
		return Ancestry{Kind: Single, First: c.Parent}, nil
	case c.Parent == c.Parent2:
		return Ancestry{}, errs.New(errs.ErrCodeInvalidSnapshot,
			"commit %q: merge names parent %q twice", c.Key, c.Parent)
	}
	return Ancestry{Kind: Merge, First: c.Parent, Second: c.Parent2}, nil
}
