package commitgraph

import (
	errs "github.com/matzehuels/branchdeck/pkg/errors"
)

// Node is a validated commit with its sequence index and resolved ancestry.
type Node struct {
	Commit
	Seq      int
	Ancestry Ancestry
}

// Graph is the validated form of a [Snapshot]. It is immutable after
// [Build] and safe for concurrent reads.
//
// The zero value is not usable; use Build.
type Graph struct {
	title      string
	annotation Annotation
	nodes      []*Node
	byKey      map[string]*Node
	maxLane    int
	edges      int
}

// Build validates s and returns its graph. Commits are checked in
// declaration order, so the first violation reported is the earliest one.
//
// Build fails with [*DanglingReferenceError] when a parent names the commit
// itself, a later commit or a missing key, and with an INVALID_SNAPSHOT
// error for empty or duplicate keys, negative lanes or a malformed parent
// pair. Keys and labels are otherwise free text. An empty snapshot is valid.
func Build(s Snapshot) (*Graph, error) {
	declared := make(map[string]int, len(s.Commits))
	for i, c := range s.Commits {
		if _, dup := declared[c.Key]; !dup {
			declared[c.Key] = i
		}
	}

	g := &Graph{
		title:      s.Title,
		annotation: s.Annotation,
		nodes:      make([]*Node, 0, len(s.Commits)),
		byKey:      make(map[string]*Node, len(s.Commits)),
		maxLane:    -1,
	}

	for seq, c := range s.Commits {
		if err := errs.ValidateKey(c.Key); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidSnapshot, err, "commit #%d", seq)
		}
		if _, dup := g.byKey[c.Key]; dup {
			return nil, errs.New(errs.ErrCodeInvalidSnapshot, "duplicate commit key %q", c.Key)
		}
		if err := errs.ValidateLane(c.Lane); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidSnapshot, err, "commit %q", c.Key)
		}

		anc, err := c.Ancestry()
		if err != nil {
			return nil, err
		}
		if err := checkRef(c.Key, "parent", anc.First, seq, declared); err != nil {
			return nil, err
		}
		if err := checkRef(c.Key, "parent2", anc.Second, seq, declared); err != nil {
			return nil, err
		}

		n := &Node{Commit: c, Seq: seq, Ancestry: anc}
		n.Labels = append([]string(nil), c.Labels...)
		g.nodes = append(g.nodes, n)
		g.byKey[c.Key] = n
		g.maxLane = max(g.maxLane, c.Lane)
		g.edges += len(anc.Keys())
	}
	return g, nil
}

func checkRef(key, field, ref string, seq int, declared map[string]int) error {
	if ref == "" {
		return nil
	}
	at, ok := declared[ref]
	switch {
	case !ok:
		return &DanglingReferenceError{Key: key, Ref: ref, Field: field, Reason: ReasonUnknown}
	case ref == key:
		return &DanglingReferenceError{Key: key, Ref: ref, Field: field, Reason: ReasonSelf}
	case at >= seq:
		return &DanglingReferenceError{Key: key, Ref: ref, Field: field, Reason: ReasonForward}
	}
	return nil
}

// Title returns the snapshot title.
func (g *Graph) Title() string { return g.title }

// Annotation returns the snapshot annotation.
func (g *Graph) Annotation() Annotation { return g.annotation }

// Nodes returns all nodes in sequence order. The slice must not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node returns the node with the given key.
func (g *Graph) Node(key string) (*Node, bool) {
	n, ok := g.byKey[key]
	return n, ok
}

// Parents returns the resolved parents of key, first parent first.
// Root commits and unknown keys yield nil.
func (g *Graph) Parents(key string) []*Node {
	n, ok := g.byKey[key]
	if !ok {
		return nil
	}
	keys := n.Ancestry.Keys()
	if len(keys) == 0 {
		return nil
	}
	parents := make([]*Node, len(keys))
	for i, k := range keys {
		parents[i] = g.byKey[k]
	}
	return parents
}

// Seq returns the sequence index of key.
func (g *Graph) Seq(key string) (int, bool) {
	n, ok := g.byKey[key]
	if !ok {
		return 0, false
	}
	return n.Seq, true
}

// Len returns the number of commits.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of parent links.
func (g *Graph) EdgeCount() int { return g.edges }

// MaxLane returns the highest lane in use, or -1 for an empty graph.
func (g *Graph) MaxLane() int { return g.maxLane }

// MaxSeq returns the highest sequence index, or -1 for an empty graph.
func (g *Graph) MaxSeq() int { return len(g.nodes) - 1 }
