// Package layout maps commit coordinates onto the drawing plane.
//
// A commit is placed by its lane (horizontal track) and its sequence index
// (declaration order). The first-declared commit sits at the bottom and
// later commits stack upward, the usual orientation for commit history:
//
//	x = lane * spacing
//	y = (maxSeq - seq) * spacing
//
// The canvas extent adds a fixed margin so marks on the outer lanes and rows
// are not clipped; surfaces translate the drawing by half the margin.
//
// Everything here is a pure function of its inputs. There is no solver and
// no randomness, so the same snapshot always lands on the same points.
package layout
