// Package deck holds an ordered deck of snapshots and the cursor that
// steps through it.
//
// A [Sequence] starts at the first snapshot. [Sequence.StepForward] and
// [Sequence.StepBackward] move one page and clamp silently at either end;
// stepping past a boundary is a normal user action, not an error. Snapshots
// are not validated here: an invalid page stays in the deck so a viewer can
// step past it, and only its render fails.
//
// Decks are read from JSON, TOML or YAML files with [Load]; see file.go for
// the format.
package deck

import (
	"errors"

	"github.com/matzehuels/branchdeck/pkg/commitgraph"
)

// ErrEmptyDeck is returned when a sequence is built from zero snapshots.
var ErrEmptyDeck = errors.New("deck has no snapshots")

// Deck is a titled, ordered list of snapshots.
type Deck struct {
	Title     string
	Snapshots []commitgraph.Snapshot
}

// Len returns the number of snapshots.
func (d *Deck) Len() int { return len(d.Snapshots) }

// Sequence returns a cursor over the deck's snapshots.
func (d *Deck) Sequence() (*Sequence, error) { return NewSequence(d.Snapshots) }

// Sequence is an ordered list of snapshots and a current index kept in
// [0, Len()-1]. It is not safe for concurrent mutation; hosts that serve
// several clients should keep an index per client and use [Clamp].
type Sequence struct {
	snapshots []commitgraph.Snapshot
	index     int
}

// NewSequence returns a sequence positioned on the first snapshot.
func NewSequence(snapshots []commitgraph.Snapshot) (*Sequence, error) {
	if len(snapshots) == 0 {
		return nil, ErrEmptyDeck
	}
	return &Sequence{snapshots: snapshots}, nil
}

// StepForward moves to the next snapshot, staying on the last one at the end.
// It returns the new index.
func (s *Sequence) StepForward() int {
	s.index = Clamp(s.index+1, len(s.snapshots))
	return s.index
}

// StepBackward moves to the previous snapshot, staying on the first one at
// the start. It returns the new index.
func (s *Sequence) StepBackward() int {
	s.index = Clamp(s.index-1, len(s.snapshots))
	return s.index
}

// Index returns the current position.
func (s *Sequence) Index() int { return s.index }

// Len returns the number of snapshots.
func (s *Sequence) Len() int { return len(s.snapshots) }

// Current returns the snapshot at the current position.
func (s *Sequence) Current() commitgraph.Snapshot { return s.snapshots[s.index] }

// AtStart reports whether the cursor is on the first snapshot.
func (s *Sequence) AtStart() bool { return s.index == 0 }

// AtEnd reports whether the cursor is on the last snapshot.
func (s *Sequence) AtEnd() bool { return s.index == len(s.snapshots)-1 }

// Clamp limits i to [0, n-1]. For n <= 0 it returns 0.
func Clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	return max(i, 0)
}
